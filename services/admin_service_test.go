package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"fractal-bot/domain"
	"fractal-bot/errors"
	"fractal-bot/gateway"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recordingRegistrar struct {
	registered [][]gateway.Descriptor
	fail       bool
}

func (r *recordingRegistrar) Register(_ context.Context, descriptors []gateway.Descriptor) error {
	if r.fail {
		return fmt.Errorf("platform rejected the set")
	}
	r.registered = append(r.registered, descriptors)
	return nil
}

func TestAdminService_Sync(t *testing.T) {
	req := require.New(t)
	registrar := &recordingRegistrar{}
	svc := NewAdminService(registrar, "alice", logs.GetLoggerFromLevel(slog.LevelError))

	reply, _, err := svc.Sync(context.Background(), domain.SyncCommand{Origin: from("alice")})
	req.NoError(err)
	req.Contains(reply.Text, fmt.Sprintf("Synced %d commands", len(gateway.Descriptors())))
	req.True(reply.Private)
	req.Len(registrar.registered, 1)
	req.Len(registrar.registered[0], len(gateway.Descriptors()))
}

func TestAdminService_Sync_OwnerOnly(t *testing.T) {
	req := require.New(t)
	registrar := &recordingRegistrar{}
	svc := NewAdminService(registrar, "alice", logs.GetLoggerFromLevel(slog.LevelError))

	_, _, err := svc.Sync(context.Background(), domain.SyncCommand{Origin: from("bob")})
	req.ErrorIs(err, errors.ErrNotOwner)
	req.Empty(registrar.registered)
}

func TestAdminService_Sync_PlatformFailure(t *testing.T) {
	req := require.New(t)
	registrar := &recordingRegistrar{fail: true}
	svc := NewAdminService(registrar, "alice", logs.GetLoggerFromLevel(slog.LevelError))

	_, _, err := svc.Sync(context.Background(), domain.SyncCommand{Origin: from("alice")})
	req.ErrorContains(err, "platform rejected")
}
