package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"fractal-bot/chain"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/projection"
	"fractal-bot/repositories"
)

type ITreasuryService interface {
	ResolveName(ctx context.Context, cmd domain.ResolveNameCommand) (domain.Reply, []event.DomainEvent, error)
	RegisterAddress(ctx context.Context, cmd domain.RegisterAddressCommand) (domain.Reply, []event.DomainEvent, error)
	TokenBalance(ctx context.Context, cmd domain.TokenBalanceCommand) (domain.Reply, []event.DomainEvent, error)
	TokenTop(ctx context.Context, cmd domain.TokenTopCommand) (domain.Reply, []event.DomainEvent, error)
}

// TreasuryService answers name, address and token balance queries. Wallet
// bindings live in the member repository; everything on-chain goes through
// the resolver and the token contract.
type TreasuryService struct {
	members  repositories.IMemberRepository
	resolver *chain.Resolver
	token    *chain.Token
	log      *slog.Logger
}

func NewTreasuryService(
	members repositories.IMemberRepository,
	resolver *chain.Resolver,
	token *chain.Token,
	log *slog.Logger,
) ITreasuryService {
	return &TreasuryService{members: members, resolver: resolver, token: token, log: log}
}

func (s *TreasuryService) ResolveName(ctx context.Context, cmd domain.ResolveNameCommand) (domain.Reply, []event.DomainEvent, error) {
	name := chain.Normalize(cmd.Name)
	address, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	return domain.Reply{Text: fmt.Sprintf("🔗 **%s** resolves to `%s`", name, address)}, nil, nil
}

func (s *TreasuryService) RegisterAddress(ctx context.Context, cmd domain.RegisterAddressCommand) (domain.Reply, []event.DomainEvent, error) {
	user := cmd.Origin.User

	// Without an argument the command echoes the stored binding.
	if cmd.Address == "" {
		wallet, err := s.members.Wallet(user)
		if err != nil {
			return domain.Reply{}, nil, err
		}
		return domain.Reply{Text: fmt.Sprintf("💼 Your registered address: `%s`", wallet), Private: true}, nil, nil
	}

	address := cmd.Address
	resolvedFrom := ""
	if !chain.IsAddress(address) {
		// Anything that is not a raw address is treated as an ENS name.
		name := chain.Normalize(address)
		resolved, err := s.resolver.Resolve(ctx, name)
		if err != nil {
			return domain.Reply{}, nil, err
		}
		address, resolvedFrom = resolved, name
	}
	address = chain.Checksum(address)

	if err := s.members.SaveWallet(user, address); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("wallet registered", slog.String("member", string(user)))

	text := fmt.Sprintf("✅ Address registered: `%s`", address)
	if resolvedFrom != "" {
		text = fmt.Sprintf("✅ Address registered: `%s` (via %s)", address, resolvedFrom)
	}
	return domain.Reply{Text: text, Private: true}, nil, nil
}

func (s *TreasuryService) TokenBalance(ctx context.Context, cmd domain.TokenBalanceCommand) (domain.Reply, []event.DomainEvent, error) {
	wallet, err := s.members.Wallet(cmd.Target)
	if err != nil {
		return domain.Reply{}, nil, fmt.Errorf("%w for %s", errors.ErrNoAddress, cmd.Target)
	}
	balance, err := s.token.BalanceOf(ctx, wallet)
	if err != nil {
		return domain.Reply{}, nil, err
	}

	display := string(cmd.Target)
	if name, err := s.resolver.ReverseResolve(ctx, wallet); err == nil {
		display = name
	}
	return domain.Reply{Text: fmt.Sprintf("💰 **%s** holds **%.2f ZAO**\n`%s`", display, balance, wallet)}, nil, nil
}

func (s *TreasuryService) TokenTop(ctx context.Context, cmd domain.TokenTopCommand) (domain.Reply, []event.DomainEvent, error) {
	members, err := s.members.All()
	if err != nil {
		return domain.Reply{}, nil, err
	}

	rows := make([]projection.Row, 0, len(members))
	for _, m := range members {
		wallet, err := s.members.Wallet(m.ID)
		if err != nil {
			continue
		}
		balance, err := s.token.BalanceOf(ctx, wallet)
		if err != nil {
			// One dead lookup must not sink the whole board.
			s.log.Warn("balance lookup failed", slog.String("member", string(m.ID)), slog.Any("error", err))
			continue
		}
		rows = append(rows, projection.Row{Name: m.Name, Value: balance, Note: shortAddress(wallet)})
	}
	if len(rows) == 0 {
		return domain.Reply{Text: "No wallets registered yet. Bind one with /address or /zaojoin.", Private: true}, nil, nil
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	if cmd.Count > 0 && len(rows) > cmd.Count {
		rows = rows[:cmd.Count]
	}

	board := projection.RenderBoard("ZAO Token Leaderboard", rows, func(v float64) string {
		return fmt.Sprintf("%.2f ZAO", v)
	})
	return domain.Reply{Text: board}, nil, nil
}

func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:8] + "…" + address[len(address)-4:]
}
