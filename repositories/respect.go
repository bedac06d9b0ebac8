//go:generate go run go.uber.org/mock/mockgen -source=respect.go -destination=../mocks/mock_respect_repository.go -package=mocks
package repositories

import (
	"fractal-bot/domain"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IRespectRepository interface {
	Record(entry domain.RespectEntry) error
	LastGrant(giver domain.UserID) (time.Time, error)
	Standings() ([]domain.Standing, error)
	Recent(limit int) ([]domain.RespectEntry, error)
}

// RespectRepository is the append-only respect ledger. Every grant lands as
// an entry, plus a per-giver last-grant marker for the cooldown and a
// per-receiver counter for the standings.
type RespectRepository struct {
	db *badger.DB
}

func NewRespectRepository(db *badger.DB) *RespectRepository {
	return &RespectRepository{db: db}
}

const (
	respectEntryPrefix = "respect:entry:"
	respectLastPrefix  = "respect:last:"
	respectCountPrefix = "respect:count:"
)

func (r RespectRepository) Record(entry domain.RespectEntry) error {
	data, err := encode(entry)
	if err != nil {
		return err
	}
	grantedAt, err := encode(entry.At)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := fmt.Sprintf("%s%019d:%s", respectEntryPrefix, entry.At.UnixNano(), entry.ID)
		if err := txn.Set([]byte(key), data); err != nil {
			return err
		}
		if err := txn.Set([]byte(respectLastPrefix+string(entry.Giver)), grantedAt); err != nil {
			return err
		}

		var count int64
		countKey := []byte(respectCountPrefix + string(entry.Receiver))
		if item, err := txn.Get(countKey); err == nil {
			if err := item.Value(func(val []byte) error { return decode(val, &count) }); err != nil {
				return err
			}
		}
		count++
		counted, err := encode(count)
		if err != nil {
			return err
		}
		return txn.Set(countKey, counted)
	})
}

// LastGrant returns when the giver last granted respect, zero when never.
func (r RespectRepository) LastGrant(giver domain.UserID) (time.Time, error) {
	var at time.Time
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(respectLastPrefix + string(giver)))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			return decode(val, &at)
		})
	})
	return at, err
}

func (r RespectRepository) Standings() ([]domain.Standing, error) {
	totals := make(map[domain.UserID]int)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(respectCountPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			receiver := domain.UserID(strings.TrimPrefix(string(it.Item().Key()), respectCountPrefix))
			err := it.Item().Value(func(val []byte) error {
				var count int64
				if err := decode(val, &count); err != nil {
					return err
				}
				totals[receiver] = int(count)
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
	return domain.ComputeStandings(totals), nil
}

// Recent returns the latest entries, newest first.
func (r RespectRepository) Recent(limit int) ([]domain.RespectEntry, error) {
	var entries []domain.RespectEntry
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(respectEntryPrefix)
		seekKey := append(append([]byte(nil), prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix) && len(entries) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry domain.RespectEntry
				if err := decode(val, &entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}
