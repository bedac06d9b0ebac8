package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"github.com/vmihailenco/msgpack"

	"fractal-bot/domain"
)

// Dumps a key range of the store as a table, decoding the community types
// along the way. Safe to run against a live bot.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "group:", "Prefix to scan")
	plain := flag.Bool("plain", false, "Disable colours")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "When", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			kind, _, _ := strings.Cut(key, ":")

			err := item.Value(func(v []byte) error {
				when, detail := describe(kind, key, v)
				if !*plain {
					kind = tint(kind)
				}
				table.Append([]string{key, kind, when, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// describe decodes one value by its key kind. Decode failures never stop
// the scan, the row just stays raw.
func describe(kind, key string, v []byte) (when, detail string) {
	detail = fmt.Sprintf("%d bytes", len(v))

	switch kind {
	case "group":
		var g domain.Group
		if msgpack.Unmarshal(v, &g) == nil {
			when = g.LastSeen.Format("02 Jan 15:04")
			detail = fmt.Sprintf("owner %s, %d members in %s", g.Owner, len(g.Members), g.Thread)
		}
	case "member":
		var m domain.Member
		if msgpack.Unmarshal(v, &m) == nil {
			when = m.JoinedAt.Format("02 Jan 15:04")
			detail = strings.TrimSpace(m.Name + " " + m.Wallet)
		}
	case "timer":
		var t domain.Timer
		if msgpack.Unmarshal(v, &t) == nil {
			when = t.CreatedAt.Format("15:04:05")
			detail = fmt.Sprintf("%s %s (%s)", t.Label, t.State, domain.FormatDuration(t.Duration))
		}
	case "vote":
		var r domain.VoteRound
		if msgpack.Unmarshal(v, &r) == nil {
			when = r.StartedAt.Format("15:04:05")
			detail = fmt.Sprintf("%s, %d/%d voted, completed=%v", r.Group, len(r.Votes), len(r.Members), r.Completed)
		}
	case "fractal":
		var f domain.FractalSession
		if msgpack.Unmarshal(v, &f) == nil {
			when = f.StartedAt.Format("15:04:05")
			detail = fmt.Sprintf("%s level %d, %d remaining", f.Group, f.Level, len(f.Remaining))
		}
	case "msg":
		var m domain.TranscriptMessage
		if msgpack.Unmarshal(v, &m) == nil {
			when = m.At.Format("15:04:05")
			detail = fmt.Sprintf("%s: %s", m.AuthorName, truncate(m.Content, 48))
		}
	case "digest":
		var d domain.Digest
		if msgpack.Unmarshal(v, &d) == nil {
			when = d.BuiltAt.Format("02 Jan 15:04")
			detail = fmt.Sprintf("%d messages, %d participants: %s", d.Messages, d.Participants, truncate(d.Text, 48))
		}
	case "respect":
		var e domain.RespectEntry
		if strings.HasPrefix(key, "respect:entry:") && msgpack.Unmarshal(v, &e) == nil {
			when = e.At.Format("02 Jan 15:04")
			detail = fmt.Sprintf("%s to %s: %s", e.Giver, e.Receiver, e.Reason)
		}
	case "voice":
		var t domain.VoiceTotal
		if strings.HasPrefix(key, "voice:total:") && msgpack.Unmarshal(v, &t) == nil {
			detail = fmt.Sprintf("%s in voice", time.Duration(t.Seconds)*time.Second)
		}
	}
	return when, detail
}

func tint(kind string) string {
	switch kind {
	case "group", "member":
		return color.New(color.FgGreen).Render(kind)
	case "timer", "vote", "fractal":
		return color.New(color.FgYellow).Render(kind)
	case "msg", "digest":
		return color.New(color.FgCyan).Render(kind)
	default:
		return kind
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed writer can leave the value log in need of a truncate,
		// which only a write open performs
		if strings.Contains(err.Error(), "Log truncate required") {
			fmt.Println("⚠️  Value log needs truncating, repairing...")

			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
