// Package runtime moves commands and events through the system. It owns
// dispatch, session supervision and the event pipeline, without containing
// business logic or domain rules.
package runtime

import (
	"context"
	"fmt"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/services"
)

// Engine routes one parsed command to the service owning its rules.
// It holds no state of its own; every mutation happens behind a service.
type Engine struct {
	groups    services.IGroupService
	votes     services.IVoteService
	fractals  services.IFractalService
	timers    services.ITimerService
	respect   services.IRespectService
	members   services.IMemberService
	treasury  services.ITreasuryService
	summaries services.ISummaryService
	presence  services.IPresenceService
	admin     services.IAdminService
}

func NewEngine(
	groups services.IGroupService,
	votes services.IVoteService,
	fractals services.IFractalService,
	timers services.ITimerService,
	respect services.IRespectService,
	members services.IMemberService,
	treasury services.ITreasuryService,
	summaries services.ISummaryService,
	presence services.IPresenceService,
	admin services.IAdminService,
) *Engine {
	return &Engine{
		groups:    groups,
		votes:     votes,
		fractals:  fractals,
		timers:    timers,
		respect:   respect,
		members:   members,
		treasury:  treasury,
		summaries: summaries,
		presence:  presence,
		admin:     admin,
	}
}

func (e *Engine) Handle(ctx context.Context, cmd domain.Command) (domain.Reply, []event.DomainEvent, error) {
	switch c := cmd.(type) {
	case domain.CreateGroupCommand:
		return e.groups.Create(ctx, c)
	case domain.ListGroupsCommand:
		return e.groups.List(ctx, c)
	case domain.DisbandGroupCommand:
		return e.groups.Disband(ctx, c)
	case domain.StartVoteCommand:
		return e.votes.Start(ctx, c)
	case domain.CastVoteCommand:
		return e.votes.Cast(ctx, c)
	case domain.VoteResultsCommand:
		return e.votes.Results(ctx, c)
	case domain.StartFractalCommand:
		return e.fractals.Start(ctx, c)
	case domain.CastFractalVoteCommand:
		return e.fractals.Cast(ctx, c)
	case domain.FractalStandingsCommand:
		return e.fractals.Standings(ctx, c)
	case domain.StartTimerCommand:
		return e.timers.Start(ctx, c)
	case domain.ListTimersCommand:
		return e.timers.List(ctx, c)
	case domain.CancelTimerCommand:
		return e.timers.Cancel(ctx, c)
	case domain.PauseTimerCommand:
		return e.timers.Pause(ctx, c)
	case domain.ResumeTimerCommand:
		return e.timers.Resume(ctx, c)
	case domain.GiveRespectCommand:
		return e.respect.Give(ctx, c)
	case domain.RespectRankCommand:
		return e.respect.Rank(ctx, c)
	case domain.JoinCommunityCommand:
		return e.members.Join(ctx, c)
	case domain.LeaveCommunityCommand:
		return e.members.Leave(ctx, c)
	case domain.CommunityStatsCommand:
		return e.members.Stats(ctx, c)
	case domain.CommunityMembersCommand:
		return e.members.Members(ctx, c)
	case domain.ResolveNameCommand:
		return e.treasury.ResolveName(ctx, c)
	case domain.RegisterAddressCommand:
		return e.treasury.RegisterAddress(ctx, c)
	case domain.TokenBalanceCommand:
		return e.treasury.TokenBalance(ctx, c)
	case domain.TokenTopCommand:
		return e.treasury.TokenTop(ctx, c)
	case domain.SummarizeCommand:
		return e.summaries.Summarize(ctx, c)
	case domain.ExportDigestCommand:
		return e.summaries.Export(ctx, c)
	case domain.FindMessagesCommand:
		return e.summaries.Find(ctx, c)
	case domain.VoiceJoinedCommand:
		return e.presence.Joined(ctx, c)
	case domain.VoiceLeftCommand:
		return e.presence.Left(ctx, c)
	case domain.VoiceStatsCommand:
		return e.presence.Stats(ctx, c)
	case domain.VoiceTopCommand:
		return e.presence.Top(ctx, c)
	case domain.ShuffleVoiceCommand:
		return e.presence.Shuffle(ctx, c)
	case domain.SyncCommand:
		return e.admin.Sync(ctx, c)
	default:
		return domain.Reply{}, nil, fmt.Errorf("%w: %T", errors.ErrUnknownCommand, cmd)
	}
}
