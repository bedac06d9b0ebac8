package domain

import "time"

// StateKey identifies the serialization unit for command dispatch.
// Commands sharing a key are handled by the same session worker, one at a
// time. Group commands key on the group name, personal commands on the user.
type StateKey string

func GroupKey(name string) StateKey {
	return StateKey("group:" + name)
}

func UserKey(id UserID) StateKey {
	return StateKey("user:" + string(id))
}

// Origin is the reply address of a command: the platform interaction handle
// plus where and by whom it was issued.
type Origin struct {
	Interaction string
	Thread      ThreadRef
	User        UserID
}

type Command interface {
	Key() StateKey
	From() Origin
}

// Group registry and fractal game.

type CreateGroupCommand struct {
	Origin  Origin
	Name    string
	Members []UserID
	Thread  ThreadRef
}

func (c CreateGroupCommand) Key() StateKey { return GroupKey(c.Name) }
func (c CreateGroupCommand) From() Origin  { return c.Origin }

type ListGroupsCommand struct {
	Origin Origin
}

// ListGroups reads every group; it keys on the caller to stay ordered
// with their other commands.
func (c ListGroupsCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c ListGroupsCommand) From() Origin  { return c.Origin }

type DisbandGroupCommand struct {
	Origin Origin
	Name   string
}

func (c DisbandGroupCommand) Key() StateKey { return GroupKey(c.Name) }
func (c DisbandGroupCommand) From() Origin  { return c.Origin }

type StartFractalCommand struct {
	Origin Origin
	Group  string
}

func (c StartFractalCommand) Key() StateKey { return GroupKey(c.Group) }
func (c StartFractalCommand) From() Origin  { return c.Origin }

type CastFractalVoteCommand struct {
	Origin    Origin
	Group     string
	Candidate UserID
}

func (c CastFractalVoteCommand) Key() StateKey { return GroupKey(c.Group) }
func (c CastFractalVoteCommand) From() Origin  { return c.Origin }

type FractalStandingsCommand struct {
	Origin Origin
	Group  string
}

func (c FractalStandingsCommand) Key() StateKey { return GroupKey(c.Group) }
func (c FractalStandingsCommand) From() Origin  { return c.Origin }

// Sequential respect ballot.

type StartVoteCommand struct {
	Origin Origin
	Group  string
}

func (c StartVoteCommand) Key() StateKey { return GroupKey(c.Group) }
func (c StartVoteCommand) From() Origin  { return c.Origin }

type CastVoteCommand struct {
	Origin Origin
	Group  string
	Target UserID
}

func (c CastVoteCommand) Key() StateKey { return GroupKey(c.Group) }
func (c CastVoteCommand) From() Origin  { return c.Origin }

type VoteResultsCommand struct {
	Origin Origin
	Group  string
}

func (c VoteResultsCommand) Key() StateKey { return GroupKey(c.Group) }
func (c VoteResultsCommand) From() Origin  { return c.Origin }

// Timers.

type StartTimerCommand struct {
	Origin   Origin
	Duration time.Duration
	Label    string
}

func (c StartTimerCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c StartTimerCommand) From() Origin  { return c.Origin }

type ListTimersCommand struct {
	Origin Origin
}

func (c ListTimersCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c ListTimersCommand) From() Origin  { return c.Origin }

type CancelTimerCommand struct {
	Origin Origin
	ID     string
}

func (c CancelTimerCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c CancelTimerCommand) From() Origin  { return c.Origin }

type PauseTimerCommand struct {
	Origin Origin
	ID     string
}

func (c PauseTimerCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c PauseTimerCommand) From() Origin  { return c.Origin }

type ResumeTimerCommand struct {
	Origin Origin
	ID     string
}

func (c ResumeTimerCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c ResumeTimerCommand) From() Origin  { return c.Origin }

// Respect ledger.

type GiveRespectCommand struct {
	Origin   Origin
	Receiver UserID
	Reason   string
}

func (c GiveRespectCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c GiveRespectCommand) From() Origin  { return c.Origin }

type RespectRankCommand struct {
	Origin Origin
	Target UserID
}

func (c RespectRankCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c RespectRankCommand) From() Origin  { return c.Origin }

// Transcript archive.

type SummarizeCommand struct {
	Origin Origin
}

func (c SummarizeCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c SummarizeCommand) From() Origin  { return c.Origin }

type ExportDigestCommand struct {
	Origin Origin
}

func (c ExportDigestCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c ExportDigestCommand) From() Origin  { return c.Origin }

type FindMessagesCommand struct {
	Origin Origin
	Query  string
	Author UserID
	Limit  int
	Offset int
}

func (c FindMessagesCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c FindMessagesCommand) From() Origin  { return c.Origin }

// Treasury and community.

type ResolveNameCommand struct {
	Origin Origin
	Name   string
}

func (c ResolveNameCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c ResolveNameCommand) From() Origin  { return c.Origin }

type RegisterAddressCommand struct {
	Origin  Origin
	Address string
}

func (c RegisterAddressCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c RegisterAddressCommand) From() Origin  { return c.Origin }

type JoinCommunityCommand struct {
	Origin Origin
	Name   string
	Wallet string
}

func (c JoinCommunityCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c JoinCommunityCommand) From() Origin  { return c.Origin }

type LeaveCommunityCommand struct {
	Origin Origin
}

func (c LeaveCommunityCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c LeaveCommunityCommand) From() Origin  { return c.Origin }

type CommunityStatsCommand struct {
	Origin Origin
}

func (c CommunityStatsCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c CommunityStatsCommand) From() Origin  { return c.Origin }

type CommunityMembersCommand struct {
	Origin Origin
}

func (c CommunityMembersCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c CommunityMembersCommand) From() Origin  { return c.Origin }

type TokenBalanceCommand struct {
	Origin Origin
	Target UserID
}

func (c TokenBalanceCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c TokenBalanceCommand) From() Origin  { return c.Origin }

type TokenTopCommand struct {
	Origin Origin
	Count  int
}

func (c TokenTopCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c TokenTopCommand) From() Origin  { return c.Origin }

// Voice.

type VoiceJoinedCommand struct {
	Origin  Origin
	Channel string
	At      time.Time
}

func (c VoiceJoinedCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c VoiceJoinedCommand) From() Origin  { return c.Origin }

type VoiceLeftCommand struct {
	Origin  Origin
	Channel string
	At      time.Time
}

func (c VoiceLeftCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c VoiceLeftCommand) From() Origin  { return c.Origin }

type VoiceStatsCommand struct {
	Origin Origin
	Target UserID
}

func (c VoiceStatsCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c VoiceStatsCommand) From() Origin  { return c.Origin }

type VoiceTopCommand struct {
	Origin Origin
	Count  int
}

func (c VoiceTopCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c VoiceTopCommand) From() Origin  { return c.Origin }

type ShuffleVoiceCommand struct {
	Origin     Origin
	PerChannel int
}

func (c ShuffleVoiceCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c ShuffleVoiceCommand) From() Origin  { return c.Origin }

// Admin.

type SyncCommand struct {
	Origin Origin
}

func (c SyncCommand) Key() StateKey { return UserKey(c.Origin.User) }
func (c SyncCommand) From() Origin  { return c.Origin }

// Reply is what a handled command sends back through the gateway.
// Private replies are only shown to the caller.
type Reply struct {
	Text    string
	Private bool
}
