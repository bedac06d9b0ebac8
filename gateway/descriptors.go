package gateway

import (
	"context"
	"log/slog"
)

// Descriptor advertises one command of the surface so the platform can
// register it and render help text.
type Descriptor struct {
	Name        string
	Usage       string
	Description string
}

// Registrar pushes the command descriptor set to the platform. The admin
// sync command re-registers the whole set in one call.
type Registrar interface {
	Register(ctx context.Context, descriptors []Descriptor) error
}

// Descriptors lists every command the parser understands, in the order
// they are shown to users.
func Descriptors() []Descriptor {
	return []Descriptor{
		{Name: "timer", Usage: "timer <seconds> [label]", Description: "Start a countdown timer"},
		{Name: "timers", Usage: "timers", Description: "List your running timers"},
		{Name: "canceltimer", Usage: "canceltimer <id>", Description: "Cancel one of your timers"},
		{Name: "pausetimer", Usage: "pausetimer <id>", Description: "Pause a running timer"},
		{Name: "resumetimer", Usage: "resumetimer <id>", Description: "Resume a paused timer"},
		{Name: "fractalgroup", Usage: "fractalgroup <name> <member...>", Description: "Create a fractal group"},
		{Name: "listgroups", Usage: "listgroups", Description: "List registered fractal groups"},
		{Name: "disbandgroup", Usage: "disbandgroup <name>", Description: "Disband one of your groups"},
		{Name: "fractalstart", Usage: "fractalstart <group>", Description: "Start a fractal consensus round"},
		{Name: "fractalvote", Usage: "fractalvote <group> <candidate>", Description: "Vote for a level candidate"},
		{Name: "fractalresults", Usage: "fractalresults <group>", Description: "Show the fractal standings"},
		{Name: "respectvote", Usage: "respectvote <group>", Description: "Open a sequential respect ballot"},
		{Name: "vote", Usage: "vote <group> <member>", Description: "Cast your ballot vote"},
		{Name: "respectresults", Usage: "respectresults <group>", Description: "Show the ballot results"},
		{Name: "respect", Usage: "respect <member> [reason]", Description: "Grant respect to a member"},
		{Name: "respectrank", Usage: "respectrank [member]", Description: "Show a member's respect rank"},
		{Name: "summarize", Usage: "summarize", Description: "Summarize the recent discussion"},
		{Name: "export", Usage: "export", Description: "Export the latest digest to a file"},
		{Name: "find", Usage: "find <terms> [--from member] [--limit n] [--page n]", Description: "Search the message archive"},
		{Name: "ens", Usage: "ens <name>", Description: "Resolve an ENS name"},
		{Name: "address", Usage: "address [0x... | name.eth]", Description: "Register or show your wallet address"},
		{Name: "zaojoin", Usage: "zaojoin <name> [wallet]", Description: "Join the community"},
		{Name: "zaoleave", Usage: "zaoleave", Description: "Leave the community"},
		{Name: "zaostats", Usage: "zaostats", Description: "Show community statistics"},
		{Name: "zaomembers", Usage: "zaomembers", Description: "List community members"},
		{Name: "zao", Usage: "zao balance [member] | zao top [count]", Description: "Token balances and leaderboard"},
		{Name: "voicestats", Usage: "voicestats [member]", Description: "Show voice channel time"},
		{Name: "voicetop", Usage: "voicetop [count]", Description: "Voice time leaderboard"},
		{Name: "randomize", Usage: "randomize [per-channel]", Description: "Shuffle voice users across voice channels (owner only)"},
		{Name: "sync", Usage: "sync", Description: "Re-register the command set (owner only)"},
	}
}

// LogRegistrar is the no-platform registrar: it records the registration
// instead of calling out.
type LogRegistrar struct {
	log *slog.Logger
}

func NewLogRegistrar(log *slog.Logger) *LogRegistrar {
	return &LogRegistrar{log: log}
}

func (r *LogRegistrar) Register(_ context.Context, descriptors []Descriptor) error {
	for _, d := range descriptors {
		r.log.Debug("command registered", slog.String("name", d.Name), slog.String("usage", d.Usage))
	}
	r.log.Info("command set registered", slog.Int("count", len(descriptors)))
	return nil
}
