//go:generate go run go.uber.org/mock/mockgen -source=member.go -destination=../mocks/mock_member_repository.go -package=mocks
package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"

	"github.com/dgraph-io/badger/v4"
)

type IMemberRepository interface {
	Create(member domain.Member) error
	Get(user domain.UserID) (domain.Member, error)
	Delete(user domain.UserID) error
	All() ([]domain.Member, error)
	SaveWallet(user domain.UserID, address string) error
	Wallet(user domain.UserID) (string, error)
}

// MemberRepository stores community membership. Wallet addresses live in
// their own keyspace so anyone can register one without joining.
type MemberRepository struct {
	db *badger.DB
}

func NewMemberRepository(db *badger.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const (
	memberPrefix = "member:"
	walletPrefix = "wallet:"
)

func (m MemberRepository) Create(member domain.Member) error {
	data, err := encode(member)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		key := []byte(memberPrefix + string(member.ID))
		if _, err := txn.Get(key); err == nil {
			return errors.ErrAlreadyRegistered
		}
		return txn.Set(key, data)
	})
}

func (m MemberRepository) Get(user domain.UserID) (domain.Member, error) {
	var member domain.Member
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(memberPrefix + string(user)))
		if err != nil {
			return errors.ErrNotRegistered
		}
		return item.Value(func(val []byte) error {
			return decode(val, &member)
		})
	})
	if err != nil {
		return domain.Member{}, err
	}
	return member, nil
}

func (m MemberRepository) Delete(user domain.UserID) error {
	return m.db.Update(func(txn *badger.Txn) error {
		key := []byte(memberPrefix + string(user))
		if _, err := txn.Get(key); err != nil {
			return errors.ErrNotRegistered
		}
		return txn.Delete(key)
	})
}

func (m MemberRepository) All() ([]domain.Member, error) {
	var members []domain.Member
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(memberPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var member domain.Member
				if err := decode(val, &member); err != nil {
					return err
				}
				members = append(members, member)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return members, err
}

func (m MemberRepository) SaveWallet(user domain.UserID, address string) error {
	data, err := encode(address)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(walletPrefix+string(user)), data)
	})
}

func (m MemberRepository) Wallet(user domain.UserID) (string, error) {
	var address string
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(walletPrefix + string(user)))
		if err != nil {
			return errors.ErrNoAddress
		}
		return item.Value(func(val []byte) error {
			return decode(val, &address)
		})
	})
	if err != nil {
		return "", err
	}
	return address, nil
}
