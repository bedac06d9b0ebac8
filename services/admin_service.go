package services

import (
	"context"
	"fmt"
	"log/slog"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/gateway"
)

type IAdminService interface {
	Sync(ctx context.Context, cmd domain.SyncCommand) (domain.Reply, []event.DomainEvent, error)
}

// AdminService covers the owner-only surface. There is exactly one owner,
// fixed at startup from configuration.
type AdminService struct {
	registrar gateway.Registrar
	owner     domain.UserID
	log       *slog.Logger
}

func NewAdminService(registrar gateway.Registrar, owner domain.UserID, log *slog.Logger) IAdminService {
	return &AdminService{registrar: registrar, owner: owner, log: log}
}

func (s *AdminService) Sync(ctx context.Context, cmd domain.SyncCommand) (domain.Reply, []event.DomainEvent, error) {
	if cmd.Origin.User != s.owner {
		return domain.Reply{}, nil, errors.ErrNotOwner
	}

	descriptors := gateway.Descriptors()
	if err := s.registrar.Register(ctx, descriptors); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("command set synced", slog.Int("count", len(descriptors)))
	return domain.Reply{Text: fmt.Sprintf("✅ Synced %d commands successfully!", len(descriptors)), Private: true}, nil, nil
}
