//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IGroupRepository interface {
	Create(group domain.Group) error
	Save(group domain.Group) error
	Get(name string) (domain.Group, error)
	Delete(name string) error
	All() ([]domain.Group, error)
	GroupOf(member domain.UserID) (domain.Group, error)
}

type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func groupKey(name string) []byte {
	return []byte("group:" + name)
}

// Create persists a new group. The name must not be taken yet.
func (g GroupRepository) Create(group domain.Group) error {
	data, err := encode(group)
	if err != nil {
		return err
	}
	return g.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(groupKey(group.Name)); err == nil {
			return errors.ErrGroupExists
		}
		return txn.Set(groupKey(group.Name), data)
	})
}

// Save overwrites an existing group, e.g. after a membership change or a
// liveness touch.
func (g GroupRepository) Save(group domain.Group) error {
	data, err := encode(group)
	if err != nil {
		return err
	}
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(groupKey(group.Name), data)
	})
}

func (g GroupRepository) Get(name string) (domain.Group, error) {
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(groupKey(name))
		if err != nil {
			return errors.ErrGroupNotFound
		}
		return item.Value(func(val []byte) error {
			return decode(val, &group)
		})
	})
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (g GroupRepository) Delete(name string) error {
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(groupKey(name))
	})
}

// All returns every registered group, ordered by name.
func (g GroupRepository) All() ([]domain.Group, error) {
	var groups []domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("group:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var group domain.Group
				if err := decode(val, &group); err != nil {
					return err
				}
				groups = append(groups, group)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return groups, err
}

// GroupOf finds the group a user currently belongs to. A user can belong to
// at most one group at a time.
func (g GroupRepository) GroupOf(member domain.UserID) (domain.Group, error) {
	groups, err := g.All()
	if err != nil {
		return domain.Group{}, err
	}
	group, found := lo.Find(groups, func(group domain.Group) bool {
		return group.Has(member)
	})
	if !found {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	return group, nil
}
