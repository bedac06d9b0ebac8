package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestMemberRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewMemberRepository(db)
	now := time.Now().UTC()

	req.NoError(repo.Create(domain.Member{ID: "alice", Name: "Alice", JoinedAt: now}))

	member, err := repo.Get("alice")
	req.NoError(err)
	req.Equal("Alice", member.Name)
	req.WithinDuration(now, member.JoinedAt, time.Second)
}

func TestMemberRepository_Create_Twice(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewMemberRepository(db)
	now := time.Now().UTC()

	req.NoError(repo.Create(domain.Member{ID: "alice", Name: "Alice", JoinedAt: now}))

	err = repo.Create(domain.Member{ID: "alice", Name: "Alice Again", JoinedAt: now})
	req.ErrorIs(err, errors.ErrAlreadyRegistered)
}

func TestMemberRepository_Delete_Unknown(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewMemberRepository(db)

	err = repo.Delete("ghost")
	req.ErrorIs(err, errors.ErrNotRegistered)
}

func TestMemberRepository_All(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewMemberRepository(db)
	now := time.Now().UTC()
	for _, id := range []domain.UserID{"alice", "bob", "carol"} {
		req.NoError(repo.Create(domain.Member{ID: id, Name: string(id), JoinedAt: now}))
	}

	members, err := repo.All()
	req.NoError(err)
	req.Len(members, 3)
}

func TestMemberRepository_Wallet_Roundtrip(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewMemberRepository(db)

	// A wallet does not require membership.
	req.NoError(repo.SaveWallet("alice", "0x34cE89baA7E4a4B00E17F7E4C0cb97105C216957"))

	address, err := repo.Wallet("alice")
	req.NoError(err)
	req.Equal("0x34cE89baA7E4a4B00E17F7E4C0cb97105C216957", address)

	_, err = repo.Wallet("bob")
	req.ErrorIs(err, errors.ErrNoAddress)
}
