//go:generate go run go.uber.org/mock/mockgen -source=vote.go -destination=../mocks/mock_vote_repository.go -package=mocks
package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type IVoteRepository interface {
	Save(round domain.VoteRound) error
	Get(group string) (domain.VoteRound, error)
	Clear(group string) error
}

// VoteRepository keeps the current ballot round per group. A completed round
// stays readable until the next one replaces it.
type VoteRepository struct {
	db *badger.DB
}

func NewVoteRepository(db *badger.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func voteKey(group string) []byte {
	return []byte(fmt.Sprintf("vote:%s", group))
}

func (v VoteRepository) Save(round domain.VoteRound) error {
	data, err := encode(round)
	if err != nil {
		return err
	}
	return v.db.Update(func(txn *badger.Txn) error {
		return txn.Set(voteKey(round.Group), data)
	})
}

func (v VoteRepository) Get(group string) (domain.VoteRound, error) {
	var round domain.VoteRound
	err := v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(voteKey(group))
		if err != nil {
			return errors.ErrNoActiveVote
		}
		return item.Value(func(val []byte) error {
			return decode(val, &round)
		})
	})
	if err != nil {
		return domain.VoteRound{}, err
	}
	return round, nil
}

func (v VoteRepository) Clear(group string) error {
	return v.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(voteKey(group))
	})
}
