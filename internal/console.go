// Package internal serves the ops console: an authenticated HTTP surface
// to look inside the store, the counters and the export directory while
// the bot is running.
package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gabriel-vasile/mimetype"

	"fractal-bot/auth"
	"fractal-bot/errors"
	"fractal-bot/projection"
)

//go:embed inspect.html
var templatesFS embed.FS

const defaultPrefix = "group:"

// InspectRow is one store record rendered for the console table.
type InspectRow struct {
	Key    string
	Kind   string
	When   string
	Entity string
	Detail string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix   string
	Items    []InspectRow
	Stats    map[string]any
	Activity []projection.Entry
}

// Console owns the ops endpoints. Everything except /login sits behind the
// session middleware; it reads the store through its own view transactions
// and never writes.
type Console struct {
	log          *slog.Logger
	db           *badger.DB
	mapper       RowMapper
	stats        StatsProvider
	feed         *projection.ActivityFeed
	issuer       *auth.TokenIssuer
	passwordHash string
	exportDir    string
	tmpl         *template.Template
}

func NewConsole(log *slog.Logger, db *badger.DB, mapper RowMapper,
	stats StatsProvider, feed *projection.ActivityFeed,
	issuer *auth.TokenIssuer, passwordHash, exportDir string) *Console {
	if mapper == nil {
		mapper = DefaultMapper
	}
	return &Console{
		log:          log,
		db:           db,
		mapper:       mapper,
		stats:        stats,
		feed:         feed,
		issuer:       issuer,
		passwordHash: passwordHash,
		exportDir:    exportDir,
		tmpl:         template.Must(template.ParseFS(templatesFS, "inspect.html")),
	}
}

func (c *Console) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", c.handleLogin)
	mux.Handle("GET /inspect", auth.Middleware(c.issuer, http.HandlerFunc(c.handleInspect)))
	mux.Handle("GET /exports/", auth.Middleware(c.issuer, http.HandlerFunc(c.handleExport)))
	return mux
}

func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ok, err := auth.ComparePassword(body.Password, c.passwordHash)
	if err != nil || !ok {
		c.log.Warn("Console login refused")
		http.Error(w, errors.ErrBadCredentials.Error(), http.StatusUnauthorized)
		return
	}

	token, err := c.issuer.Issue("operator")
	if err != nil {
		c.log.Error(fmt.Sprintf("Failed to issue session token : %v", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (c *Console) handleInspect(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = defaultPrefix
	}

	data := PageData{
		Prefix:   prefix,
		Stats:    c.stats(),
		Activity: c.feed.Recent(20),
	}

	_ = c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			_ = item.Value(func(val []byte) error {
				data.Items = append(data.Items, c.mapper(string(item.Key()), val))
				return nil
			})
		}
		return nil
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.tmpl.Execute(w, data); err != nil {
		c.log.Error(fmt.Sprintf("Failed to render inspect page : %v", err))
	}
}

// handleExport lists the export directory, or serves one file with its
// sniffed content type. Filenames never contain separators, so anything
// with one is a traversal attempt.
func (c *Console) handleExport(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/exports/")
	if name == "" {
		c.listExports(w)
		return
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		http.Error(w, "bad filename", http.StatusBadRequest)
		return
	}

	path := filepath.Join(c.exportDir, name)
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime.String())
	http.ServeFile(w, r, path)
}

func (c *Console) listExports(w http.ResponseWriter) {
	entries, err := os.ReadDir(c.exportDir)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(names)
}

// DefaultMapper renders a row from the key structure alone. Store keys are
// colon-separated with an optional 19-digit nanosecond segment; values stay
// opaque.
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:    key,
		Kind:   parts[0],
		When:   "--:--:--",
		Entity: "-",
		Detail: fmt.Sprintf("%d bytes", len(val)),
	}

	if len(parts) > 1 {
		row.Entity = parts[len(parts)-1]
		if len(row.Entity) > 12 {
			row.Entity = row.Entity[:12]
		}
	}
	for _, part := range parts[1:] {
		if len(part) != 19 {
			continue
		}
		if tsNano, err := strconv.ParseInt(part, 10, 64); err == nil {
			row.When = time.Unix(0, tsNano).Format("15:04:05")
		}
	}
	return row
}
