//go:generate go run go.uber.org/mock/mockgen -source=transcript.go -destination=../mocks/mock_transcript_repository.go -package=mocks
package repositories

import (
	"context"
	"fractal-bot/domain"
	"fractal-bot/errors"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type ITranscriptRepository interface {
	Archive(msg domain.TranscriptMessage) error
	Recent(thread domain.ThreadRef) ([]domain.TranscriptMessage, error)
	Search(ctx context.Context, text string, thread domain.ThreadRef, author domain.UserID, limit, offset int) ([]domain.TranscriptMessage, int, error)
	SaveDigest(digest domain.Digest) error
	LatestDigest(thread domain.ThreadRef) (domain.Digest, error)
}

// TranscriptRepository archives thread messages twice: the full record in
// Badger keyed by thread and time, and a searchable copy in the Bluge index.
// Badger stays the source of truth, search hits carry the Badger key.
type TranscriptRepository struct {
	db          *badger.DB
	index       *bluge.Writer
	log         *slog.Logger
	recentLimit int
}

func NewTranscriptRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger, recentLimit *int) *TranscriptRepository {
	return &TranscriptRepository{
		db:          db,
		index:       index,
		log:         log,
		recentLimit: lo.FromPtrOr(recentLimit, domain.DigestMessageLimit),
	}
}

func messageKey(msg domain.TranscriptMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", msg.Thread, msg.At.UnixNano(), msg.ID))
}

func (t TranscriptRepository) Archive(msg domain.TranscriptMessage) error {
	key := messageKey(msg)
	data, err := encode(msg)
	if err != nil {
		return err
	}
	err = t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	doc := bluge.NewDocument(msg.ID).
		AddField(bluge.NewTextField("content", msg.Content)).
		AddField(bluge.NewKeywordField("thread", string(msg.Thread))).
		AddField(bluge.NewKeywordField("author", string(msg.Author))).
		AddField(bluge.NewDateTimeField("at", msg.At)).
		AddField(bluge.NewStoredOnlyField("key", key))
	return t.index.Update(doc.ID(), doc)
}

// Recent returns the latest archived messages of a thread, newest first,
// capped at the configured window.
func (t TranscriptRepository) Recent(thread domain.ThreadRef) ([]domain.TranscriptMessage, error) {
	var msgs []domain.TranscriptMessage
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("msg:%s:", thread))
		seekKey := append(append([]byte(nil), prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix) && len(msgs) < t.recentLimit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.TranscriptMessage
				if err := decode(val, &msg); err != nil {
					return err
				}
				msgs = append(msgs, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return msgs, err
}

// Search runs a full text query over archived content, best match first.
// Thread and author narrow the scope when set. The second return value is
// the total number of matches regardless of paging.
func (t TranscriptRepository) Search(ctx context.Context, text string, thread domain.ThreadRef, author domain.UserID, limit, offset int) ([]domain.TranscriptMessage, int, error) {
	reader, err := t.index.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(text).SetField("content"))
	if thread != "" {
		query.AddMust(bluge.NewTermQuery(string(thread)).SetField("thread"))
	}
	if author != "" {
		query.AddMust(bluge.NewTermQuery(string(author)).SetField("author"))
	}

	request := bluge.NewTopNSearch(limit, query).
		SetFrom(offset).
		WithStandardAggregations()
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var keys [][]byte
	match, err := iterator.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "key" {
				keys = append(keys, append([]byte(nil), value...))
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}
	total := int(iterator.Aggregations().Count())

	msgs, err := t.loadMessages(keys)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (t TranscriptRepository) loadMessages(keys [][]byte) ([]domain.TranscriptMessage, error) {
	var msgs []domain.TranscriptMessage
	err := t.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get(key)
			if err != nil {
				// The index can briefly outlive a purged record.
				t.log.Warn(fmt.Sprintf("Indexed message missing from store : %s", key))
				continue
			}
			err = item.Value(func(val []byte) error {
				var msg domain.TranscriptMessage
				if err := decode(val, &msg); err != nil {
					return err
				}
				msgs = append(msgs, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return msgs, err
}

func digestKey(thread domain.ThreadRef) []byte {
	return []byte(fmt.Sprintf("digest:%s", thread))
}

// SaveDigest keeps only the latest digest per thread.
func (t TranscriptRepository) SaveDigest(digest domain.Digest) error {
	data, err := encode(digest)
	if err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(digestKey(digest.Thread), data)
	})
}

func (t TranscriptRepository) LatestDigest(thread domain.ThreadRef) (domain.Digest, error) {
	var digest domain.Digest
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(digestKey(thread))
		if err != nil {
			return errors.ErrNoDigest
		}
		return item.Value(func(val []byte) error {
			return decode(val, &digest)
		})
	})
	if err != nil {
		return domain.Digest{}, err
	}
	return digest, nil
}
