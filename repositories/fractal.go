//go:generate go run go.uber.org/mock/mockgen -source=fractal.go -destination=../mocks/mock_fractal_repository.go -package=mocks
package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type IFractalRepository interface {
	Save(session domain.FractalSession) error
	Get(group string) (domain.FractalSession, error)
	Clear(group string) error
}

// FractalRepository keeps the consensus session per group, one at a time.
type FractalRepository struct {
	db *badger.DB
}

func NewFractalRepository(db *badger.DB) *FractalRepository {
	return &FractalRepository{db: db}
}

func fractalKey(group string) []byte {
	return []byte(fmt.Sprintf("fractal:%s", group))
}

func (f FractalRepository) Save(session domain.FractalSession) error {
	data, err := encode(session)
	if err != nil {
		return err
	}
	return f.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fractalKey(session.Group), data)
	})
}

func (f FractalRepository) Get(group string) (domain.FractalSession, error) {
	var session domain.FractalSession
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(fractalKey(group))
		if err != nil {
			return errors.ErrNoFractalSession
		}
		return item.Value(func(val []byte) error {
			return decode(val, &session)
		})
	})
	if err != nil {
		return domain.FractalSession{}, err
	}
	return session, nil
}

func (f FractalRepository) Clear(group string) error {
	return f.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(fractalKey(group))
	})
}
