package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"fractal-bot/chain"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/moderation"
	"fractal-bot/projection"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
)

type IMemberService interface {
	Join(ctx context.Context, cmd domain.JoinCommunityCommand) (domain.Reply, []event.DomainEvent, error)
	Leave(ctx context.Context, cmd domain.LeaveCommunityCommand) (domain.Reply, []event.DomainEvent, error)
	Stats(ctx context.Context, cmd domain.CommunityStatsCommand) (domain.Reply, []event.DomainEvent, error)
	Members(ctx context.Context, cmd domain.CommunityMembersCommand) (domain.Reply, []event.DomainEvent, error)
}

// MemberService manages community membership and its directory views.
type MemberService struct {
	members   repositories.IMemberRepository
	feed      *projection.ActivityFeed
	moderator *moderation.Moderator
	clock     clockwork.Clock
	log       *slog.Logger
}

func NewMemberService(
	members repositories.IMemberRepository,
	feed *projection.ActivityFeed,
	moderator *moderation.Moderator,
	clock clockwork.Clock,
	log *slog.Logger,
) IMemberService {
	return &MemberService{members: members, feed: feed, moderator: moderator, clock: clock, log: log}
}

func (s *MemberService) Join(_ context.Context, cmd domain.JoinCommunityCommand) (domain.Reply, []event.DomainEvent, error) {
	if _, hits := s.moderator.Mask(cmd.Name); len(hits) > 0 {
		return domain.Reply{}, nil, fmt.Errorf("%w: %s", errors.ErrBadName, cmd.Name)
	}

	wallet := ""
	if cmd.Wallet != "" {
		if !chain.IsAddress(cmd.Wallet) {
			return domain.Reply{}, nil, fmt.Errorf("%w: %s", errors.ErrBadAddress, cmd.Wallet)
		}
		wallet = chain.Checksum(cmd.Wallet)
	}

	member := domain.Member{
		ID:       cmd.Origin.User,
		Name:     cmd.Name,
		Wallet:   wallet,
		JoinedAt: s.clock.Now(),
	}
	if err := s.members.Create(member); err != nil {
		return domain.Reply{}, nil, err
	}
	// The wallet keyspace is what balance lookups read, keep it in step.
	if wallet != "" {
		if err := s.members.SaveWallet(member.ID, wallet); err != nil {
			return domain.Reply{}, nil, err
		}
	}
	s.log.Info("member joined", slog.String("member", string(member.ID)))

	text := fmt.Sprintf("✅ Welcome to the ZAO, %s!", member.Name)
	if wallet != "" {
		text += fmt.Sprintf(" Wallet `%s` registered.", wallet)
	}
	return domain.Reply{Text: text}, nil, nil
}

func (s *MemberService) Leave(_ context.Context, cmd domain.LeaveCommunityCommand) (domain.Reply, []event.DomainEvent, error) {
	if err := s.members.Delete(cmd.Origin.User); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("member left", slog.String("member", string(cmd.Origin.User)))
	return domain.Reply{Text: "👋 You have left the ZAO. Sorry to see you go!"}, nil, nil
}

func (s *MemberService) Stats(_ context.Context, _ domain.CommunityStatsCommand) (domain.Reply, []event.DomainEvent, error) {
	members, err := s.members.All()
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if len(members) == 0 {
		return domain.Reply{Text: "No members yet. Be the first with /zaojoin!", Private: true}, nil, nil
	}

	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	oldest, newest := members[0], members[len(members)-1]
	withWallet := 0
	for _, m := range members {
		if m.Wallet != "" {
			withWallet++
		}
	}

	var b strings.Builder
	b.WriteString("**ZAO community**\n")
	b.WriteString(fmt.Sprintf("Members: %d (%d with a wallet)\n", len(members), withWallet))
	b.WriteString(fmt.Sprintf("First member: %s (%s)\n", oldest.Name, oldest.JoinedAt.Format("Jan 2 2006")))
	b.WriteString(fmt.Sprintf("Newest member: %s (%s)\n", newest.Name, newest.JoinedAt.Format("Jan 2 2006")))

	if recent := s.feed.Recent(5); len(recent) > 0 {
		b.WriteString("Recent activity:\n")
		for _, entry := range recent {
			b.WriteString(fmt.Sprintf("• %s\n", entry.Text))
		}
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, nil, nil
}

func (s *MemberService) Members(_ context.Context, _ domain.CommunityMembersCommand) (domain.Reply, []event.DomainEvent, error) {
	members, err := s.members.All()
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if len(members) == 0 {
		return domain.Reply{Text: "No members yet. Be the first with /zaojoin!", Private: true}, nil, nil
	}

	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**ZAO members (%d)**\n", len(members)))
	for _, m := range members {
		line := fmt.Sprintf("• %s — joined %s", m.Name, m.JoinedAt.Format("Jan 2 2006"))
		if m.Wallet != "" {
			line += " 💼"
		}
		b.WriteString(line + "\n")
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, nil, nil
}
