package gateway

import (
	"fmt"
	"fractal-bot/domain"
	"fractal-bot/domain/search"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTopCount   = 10
	defaultPerChannel = 6
)

// Parser turns chat lines into commands. The slash-command registration on
// the platform side mirrors this surface one to one; the text form keeps
// the bot fully driveable without a platform connection.
type Parser struct {
	prefix string
}

func NewParser(prefix string) *Parser {
	return &Parser{prefix: prefix}
}

func (p *Parser) usage(form string) error {
	return fmt.Errorf("usage: %s%s", p.prefix, form)
}

// Parse reads one message. The second return is false when the message is
// not addressed to the bot at all; true with an error means the command was
// recognized but malformed, and the error is for the user.
func (p *Parser) Parse(msg MessageEvent) (domain.Command, bool, error) {
	if !strings.HasPrefix(msg.Content, p.prefix) {
		return nil, false, nil
	}
	fields := strings.Fields(strings.TrimPrefix(msg.Content, p.prefix))
	if len(fields) == 0 {
		return nil, false, nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]
	origin := domain.Origin{Interaction: msg.ID, Thread: msg.Thread, User: msg.Author}

	switch name {
	case "timer":
		if len(args) == 0 {
			return nil, true, p.usage("timer <seconds> [label]")
		}
		seconds, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, true, p.usage("timer <seconds> [label]")
		}
		return domain.StartTimerCommand{
			Origin:   origin,
			Duration: time.Duration(seconds) * time.Second,
			Label:    strings.Join(args[1:], " "),
		}, true, nil

	case "timers":
		return domain.ListTimersCommand{Origin: origin}, true, nil

	case "canceltimer":
		if len(args) != 1 {
			return nil, true, p.usage("canceltimer <id>")
		}
		return domain.CancelTimerCommand{Origin: origin, ID: strings.ToLower(args[0])}, true, nil

	case "pausetimer":
		if len(args) != 1 {
			return nil, true, p.usage("pausetimer <id>")
		}
		return domain.PauseTimerCommand{Origin: origin, ID: strings.ToLower(args[0])}, true, nil

	case "resumetimer":
		if len(args) != 1 {
			return nil, true, p.usage("resumetimer <id>")
		}
		return domain.ResumeTimerCommand{Origin: origin, ID: strings.ToLower(args[0])}, true, nil

	case "fractalgroup":
		if len(args) < 2 {
			return nil, true, p.usage("fractalgroup <name> <member...>")
		}
		members := make([]domain.UserID, 0, len(args)-1)
		for _, arg := range args[1:] {
			member, ok := mention(arg)
			if !ok {
				return nil, true, p.usage("fractalgroup <name> <member...>")
			}
			members = append(members, member)
		}
		return domain.CreateGroupCommand{Origin: origin, Name: args[0], Members: members, Thread: msg.Thread}, true, nil

	case "listgroups":
		return domain.ListGroupsCommand{Origin: origin}, true, nil

	case "disbandgroup":
		if len(args) != 1 {
			return nil, true, p.usage("disbandgroup <name>")
		}
		return domain.DisbandGroupCommand{Origin: origin, Name: args[0]}, true, nil

	case "fractalstart":
		if len(args) != 1 {
			return nil, true, p.usage("fractalstart <group>")
		}
		return domain.StartFractalCommand{Origin: origin, Group: args[0]}, true, nil

	case "fractalvote":
		if len(args) != 2 {
			return nil, true, p.usage("fractalvote <group> <candidate>")
		}
		candidate, ok := mention(args[1])
		if !ok {
			return nil, true, p.usage("fractalvote <group> <candidate>")
		}
		return domain.CastFractalVoteCommand{Origin: origin, Group: args[0], Candidate: candidate}, true, nil

	case "fractalresults":
		if len(args) != 1 {
			return nil, true, p.usage("fractalresults <group>")
		}
		return domain.FractalStandingsCommand{Origin: origin, Group: args[0]}, true, nil

	case "respectvote":
		if len(args) != 1 {
			return nil, true, p.usage("respectvote <group>")
		}
		return domain.StartVoteCommand{Origin: origin, Group: args[0]}, true, nil

	case "vote":
		if len(args) != 2 {
			return nil, true, p.usage("vote <group> <member>")
		}
		target, ok := mention(args[1])
		if !ok {
			return nil, true, p.usage("vote <group> <member>")
		}
		return domain.CastVoteCommand{Origin: origin, Group: args[0], Target: target}, true, nil

	case "respectresults":
		if len(args) != 1 {
			return nil, true, p.usage("respectresults <group>")
		}
		return domain.VoteResultsCommand{Origin: origin, Group: args[0]}, true, nil

	case "respect":
		if len(args) == 0 {
			return nil, true, p.usage("respect <member> [reason]")
		}
		receiver, ok := mention(args[0])
		if !ok {
			return nil, true, p.usage("respect <member> [reason]")
		}
		return domain.GiveRespectCommand{Origin: origin, Receiver: receiver, Reason: strings.Join(args[1:], " ")}, true, nil

	case "respectrank":
		target := origin.User
		if len(args) > 0 {
			parsed, ok := mention(args[0])
			if !ok {
				return nil, true, p.usage("respectrank [member]")
			}
			target = parsed
		}
		return domain.RespectRankCommand{Origin: origin, Target: target}, true, nil

	case "summarize", "summary":
		return domain.SummarizeCommand{Origin: origin}, true, nil

	case "export":
		return domain.ExportDigestCommand{Origin: origin}, true, nil

	case "find":
		query := search.NewQuery(strings.Join(args, " "))
		if query.Terms == "" {
			return nil, true, p.usage("find <terms> [--from member] [--limit n] [--page n]")
		}
		var author domain.UserID
		if query.From != "" {
			author, _ = mention(query.From)
		}
		return domain.FindMessagesCommand{
			Origin: origin,
			Query:  query.Terms,
			Author: author,
			Limit:  query.Limit,
			Offset: query.Offset(),
		}, true, nil

	case "ens":
		if len(args) != 1 {
			return nil, true, p.usage("ens <name>")
		}
		return domain.ResolveNameCommand{Origin: origin, Name: args[0]}, true, nil

	case "address":
		// Without an argument the command shows the caller's stored address.
		if len(args) > 1 {
			return nil, true, p.usage("address [0x... | name.eth]")
		}
		cmd := domain.RegisterAddressCommand{Origin: origin}
		if len(args) == 1 {
			cmd.Address = args[0]
		}
		return cmd, true, nil

	case "zaojoin":
		if len(args) == 0 {
			return nil, true, p.usage("zaojoin <name> [wallet]")
		}
		wallet := ""
		nameArgs := args
		if last := args[len(args)-1]; strings.HasPrefix(last, "0x") {
			wallet = last
			nameArgs = args[:len(args)-1]
		}
		if len(nameArgs) == 0 {
			return nil, true, p.usage("zaojoin <name> [wallet]")
		}
		return domain.JoinCommunityCommand{Origin: origin, Name: strings.Join(nameArgs, " "), Wallet: wallet}, true, nil

	case "zaoleave":
		return domain.LeaveCommunityCommand{Origin: origin}, true, nil

	case "zaostats":
		return domain.CommunityStatsCommand{Origin: origin}, true, nil

	case "zaomembers":
		return domain.CommunityMembersCommand{Origin: origin}, true, nil

	case "zao":
		if len(args) == 0 {
			return nil, true, p.usage("zao <balance|top> [...]")
		}
		switch strings.ToLower(args[0]) {
		case "balance":
			target := origin.User
			if len(args) > 1 {
				parsed, ok := mention(args[1])
				if !ok {
					return nil, true, p.usage("zao balance [member]")
				}
				target = parsed
			}
			return domain.TokenBalanceCommand{Origin: origin, Target: target}, true, nil
		case "top":
			count := defaultTopCount
			if len(args) > 1 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return nil, true, p.usage("zao top [count]")
				}
				count = n
			}
			return domain.TokenTopCommand{Origin: origin, Count: count}, true, nil
		default:
			return nil, true, p.usage("zao <balance|top> [...]")
		}

	case "voicestats":
		target := origin.User
		if len(args) > 0 {
			parsed, ok := mention(args[0])
			if !ok {
				return nil, true, p.usage("voicestats [member]")
			}
			target = parsed
		}
		return domain.VoiceStatsCommand{Origin: origin, Target: target}, true, nil

	case "voicetop":
		count := defaultTopCount
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return nil, true, p.usage("voicetop [count]")
			}
			count = n
		}
		return domain.VoiceTopCommand{Origin: origin, Count: count}, true, nil

	case "randomize":
		size := defaultPerChannel
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return nil, true, p.usage("randomize [per-channel]")
			}
			size = n
		}
		return domain.ShuffleVoiceCommand{Origin: origin, PerChannel: size}, true, nil

	case "sync":
		return domain.SyncCommand{Origin: origin}, true, nil

	default:
		return nil, true, fmt.Errorf("unknown command: %s%s", p.prefix, name)
	}
}

// mention accepts <@123>, <@!123>, a raw id, or a plain name.
func mention(s string) (domain.UserID, bool) {
	trimmed := strings.TrimPrefix(s, "<@")
	trimmed = strings.TrimPrefix(trimmed, "!")
	trimmed = strings.TrimSuffix(trimmed, ">")
	if trimmed == "" {
		return "", false
	}
	return domain.UserID(trimmed), true
}
