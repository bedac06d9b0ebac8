package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/moderation"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
)

type IGroupService interface {
	Create(ctx context.Context, cmd domain.CreateGroupCommand) (domain.Reply, []event.DomainEvent, error)
	List(ctx context.Context, cmd domain.ListGroupsCommand) (domain.Reply, []event.DomainEvent, error)
	Disband(ctx context.Context, cmd domain.DisbandGroupCommand) (domain.Reply, []event.DomainEvent, error)
}

// GroupService owns the group registry: creation, listing and disbanding.
// Disbanding also clears any ballot or fractal round left behind, so a
// re-created group starts from a clean slate.
type GroupService struct {
	groups    repositories.IGroupRepository
	votes     repositories.IVoteRepository
	fractals  repositories.IFractalRepository
	moderator *moderation.Moderator
	owner     domain.UserID
	clock     clockwork.Clock
	log       *slog.Logger
}

func NewGroupService(
	groups repositories.IGroupRepository,
	votes repositories.IVoteRepository,
	fractals repositories.IFractalRepository,
	moderator *moderation.Moderator,
	owner domain.UserID,
	clock clockwork.Clock,
	log *slog.Logger,
) IGroupService {
	return &GroupService{
		groups:    groups,
		votes:     votes,
		fractals:  fractals,
		moderator: moderator,
		owner:     owner,
		clock:     clock,
		log:       log,
	}
}

func (s *GroupService) Create(_ context.Context, cmd domain.CreateGroupCommand) (domain.Reply, []event.DomainEvent, error) {
	// 1. A group name carrying a flagged phrase is refused outright,
	// masking it would leave an unpronounceable registry key.
	if _, hits := s.moderator.Mask(cmd.Name); len(hits) > 0 {
		return domain.Reply{}, nil, fmt.Errorf("%w: %s", errors.ErrBadName, cmd.Name)
	}

	// 2. The creator facilitates the group and is always its first member.
	members := append([]domain.UserID{cmd.Origin.User}, cmd.Members...)
	for _, member := range members {
		if taken, err := s.groups.GroupOf(member); err == nil {
			return domain.Reply{}, nil, fmt.Errorf("%w: %s is in %s", errors.ErrMemberBusy, member, taken.Name)
		}
	}

	now := s.clock.Now()
	group, err := domain.NewGroup(cmd.Name, cmd.Origin.User, members, cmd.Thread, now)
	if err != nil {
		return domain.Reply{}, nil, err
	}

	if err := s.groups.Create(*group); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("group created",
		slog.String("group", group.Name),
		slog.Int("members", len(group.Members)))

	events := []event.DomainEvent{event.GroupCreated{
		Group:   group.Name,
		Thread:  group.Thread,
		Members: group.Members,
		At:      now,
	}}
	reply := domain.Reply{Text: fmt.Sprintf("✅ Fractal group **%s** created with %d members: %s",
		group.Name, len(group.Members), joinMembers(group.Members))}
	return reply, events, nil
}

func (s *GroupService) List(_ context.Context, _ domain.ListGroupsCommand) (domain.Reply, []event.DomainEvent, error) {
	groups, err := s.groups.All()
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if len(groups) == 0 {
		return domain.Reply{Text: "No fractal groups registered yet. Create one with /fractalgroup.", Private: true}, nil, nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Fractal groups (%d)**\n", len(groups)))
	for _, g := range groups {
		b.WriteString(fmt.Sprintf("• **%s** (%d/%d) — %s\n", g.Name, len(g.Members), domain.MaxGroupSize, joinMembers(g.Members)))
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, nil, nil
}

func (s *GroupService) Disband(_ context.Context, cmd domain.DisbandGroupCommand) (domain.Reply, []event.DomainEvent, error) {
	group, err := s.groups.Get(cmd.Name)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	// The facilitator disbands their own group; the bot owner can disband any.
	if group.Owner != cmd.Origin.User && cmd.Origin.User != s.owner {
		return domain.Reply{}, nil, errors.ErrNotGroupOwner
	}

	if err := s.groups.Delete(group.Name); err != nil {
		return domain.Reply{}, nil, err
	}
	// Stale rounds must not survive the group they belong to.
	if err := s.votes.Clear(group.Name); err != nil {
		s.log.Warn("ballot cleanup failed", slog.String("group", group.Name), slog.Any("error", err))
	}
	if err := s.fractals.Clear(group.Name); err != nil {
		s.log.Warn("fractal cleanup failed", slog.String("group", group.Name), slog.Any("error", err))
	}
	s.log.Info("group disbanded", slog.String("group", group.Name))

	events := []event.DomainEvent{event.GroupDisbanded{
		Group:  group.Name,
		Thread: group.Thread,
		Owner:  group.Owner,
		Cause:  "owner",
		At:     s.clock.Now(),
	}}
	return domain.Reply{Text: fmt.Sprintf("✅ Group **%s** disbanded.", group.Name)}, events, nil
}

func joinMembers(members []domain.UserID) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
