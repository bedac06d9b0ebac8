//go:generate go run go.uber.org/mock/mockgen -source=timer.go -destination=../mocks/mock_timer_repository.go -package=mocks
package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

type ITimerRepository interface {
	Save(timer domain.Timer) error
	Get(owner domain.UserID, id string) (domain.Timer, error)
	Delete(owner domain.UserID, id string) error
	ByOwner(owner domain.UserID) ([]domain.Timer, error)
	All() ([]domain.Timer, error)
}

// TimerRepository holds the live timers. Expired and cancelled timers are
// removed, history lives in the event stream.
type TimerRepository struct {
	db *badger.DB
}

func NewTimerRepository(db *badger.DB) *TimerRepository {
	return &TimerRepository{db: db}
}

func timerKey(owner domain.UserID, id string) []byte {
	return []byte(fmt.Sprintf("timer:%s:%s", owner, id))
}

func (t TimerRepository) Save(timer domain.Timer) error {
	data, err := encode(timer)
	if err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(timerKey(timer.Owner, timer.ID), data)
	})
}

func (t TimerRepository) Get(owner domain.UserID, id string) (domain.Timer, error) {
	var timer domain.Timer
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(timerKey(owner, id))
		if err != nil {
			return errors.ErrTimerNotFound
		}
		return item.Value(func(val []byte) error {
			return decode(val, &timer)
		})
	})
	if err != nil {
		return domain.Timer{}, err
	}
	return timer, nil
}

func (t TimerRepository) Delete(owner domain.UserID, id string) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(timerKey(owner, id))
	})
}

// ByOwner returns the owner's timers, oldest first.
func (t TimerRepository) ByOwner(owner domain.UserID) ([]domain.Timer, error) {
	return t.scan([]byte(fmt.Sprintf("timer:%s:", owner)))
}

// All returns every live timer, oldest first. Used by the expiry ticker.
func (t TimerRepository) All() ([]domain.Timer, error) {
	return t.scan([]byte("timer:"))
}

func (t TimerRepository) scan(prefix []byte) ([]domain.Timer, error) {
	var timers []domain.Timer
	err := t.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var timer domain.Timer
				if err := decode(val, &timer); err != nil {
					return err
				}
				timers = append(timers, timer)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(timers, func(i, j int) bool {
		return timers[i].CreatedAt.Before(timers[j].CreatedAt)
	})
	return timers, nil
}
