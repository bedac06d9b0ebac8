//go:generate go run go.uber.org/mock/mockgen -source=presence.go -destination=../mocks/mock_presence_repository.go -package=mocks
package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

type IPresenceRepository interface {
	Open(session domain.VoiceSession) error
	Close(user domain.UserID) (domain.VoiceSession, error)
	OpenSessions() ([]domain.VoiceSession, error)
	AddSeconds(user domain.UserID, seconds int64) error
	TotalOf(user domain.UserID) (domain.VoiceTotal, error)
	Totals() ([]domain.VoiceTotal, error)
}

// PresenceRepository tracks voice channel time. One open session per user at
// most, plus a lifetime seconds counter.
type PresenceRepository struct {
	db *badger.DB
}

func NewPresenceRepository(db *badger.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

const (
	voiceOpenPrefix  = "voice:open:"
	voiceTotalPrefix = "voice:total:"
)

// Open records the start of a voice session, replacing any session left open
// by a missed disconnect.
func (p PresenceRepository) Open(session domain.VoiceSession) error {
	data, err := encode(session)
	if err != nil {
		return err
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(voiceOpenPrefix+string(session.User)), data)
	})
}

// Close removes the user's open session and returns it so the caller can
// settle the elapsed time.
func (p PresenceRepository) Close(user domain.UserID) (domain.VoiceSession, error) {
	var session domain.VoiceSession
	err := p.db.Update(func(txn *badger.Txn) error {
		key := []byte(voiceOpenPrefix + string(user))
		item, err := txn.Get(key)
		if err != nil {
			return errors.ErrNoVoiceSession
		}
		if err := item.Value(func(val []byte) error { return decode(val, &session) }); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return domain.VoiceSession{}, err
	}
	return session, nil
}

func (p PresenceRepository) OpenSessions() ([]domain.VoiceSession, error) {
	var sessions []domain.VoiceSession
	err := p.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(voiceOpenPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session domain.VoiceSession
				if err := decode(val, &session); err != nil {
					return err
				}
				sessions = append(sessions, session)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return sessions, err
}

func (p PresenceRepository) AddSeconds(user domain.UserID, seconds int64) error {
	return p.db.Update(func(txn *badger.Txn) error {
		var total int64
		key := []byte(voiceTotalPrefix + string(user))
		if item, err := txn.Get(key); err == nil {
			if err := item.Value(func(val []byte) error { return decode(val, &total) }); err != nil {
				return err
			}
		}
		total += seconds
		data, err := encode(total)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// TotalOf returns the user's lifetime voice seconds, zero when unseen.
func (p PresenceRepository) TotalOf(user domain.UserID) (domain.VoiceTotal, error) {
	total := domain.VoiceTotal{User: user}
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(voiceTotalPrefix + string(user)))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			return decode(val, &total.Seconds)
		})
	})
	return total, err
}

func (p PresenceRepository) Totals() ([]domain.VoiceTotal, error) {
	var totals []domain.VoiceTotal
	err := p.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(voiceTotalPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			user := domain.UserID(strings.TrimPrefix(string(it.Item().Key()), voiceTotalPrefix))
			err := it.Item().Value(func(val []byte) error {
				var seconds int64
				if err := decode(val, &seconds); err != nil {
					return err
				}
				totals = append(totals, domain.VoiceTotal{User: user, Seconds: seconds})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return totals, err
}
