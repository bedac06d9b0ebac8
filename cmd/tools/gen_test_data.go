package main

import (
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"fractal-bot/domain"
	"fractal-bot/repositories"
)

// Seeds a store with a small community so the bot and the ops console have
// something to show on first start.
type config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,default=./data/bluge"`
}

func main() {
	_ = godotenv.Load()
	var cfg config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	index, err := bluge.OpenWriter(bluge.DefaultConfig(cfg.BlugeFilepath))
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	fmt.Println("🚀 Fractal-Bot : seeding demo data...")

	now := time.Now().UTC()
	seedMembers(db, now)
	seedGroups(db, now)
	seedTimers(db, now)
	seedRespect(db, now)
	seedVoice(db)
	seedTranscript(db, index, now)

	fmt.Println("\n✅ Ready! Point BADGER_FILEPATH and BLUGE_FILEPATH here and start the bot.")
}

func seedMembers(db *badger.DB, now time.Time) {
	members := repositories.NewMemberRepository(db)
	roster := []domain.Member{
		{ID: "alice", Name: "alice", JoinedAt: now.Add(-90 * 24 * time.Hour)},
		{ID: "bob", Name: "bob", JoinedAt: now.Add(-60 * 24 * time.Hour)},
		{ID: "carol", Name: "carol", JoinedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: "dave", Name: "dave", JoinedAt: now.Add(-7 * 24 * time.Hour)},
		{ID: "erin", Name: "erin", JoinedAt: now.Add(-24 * time.Hour)},
	}
	for _, m := range roster {
		if err := members.Create(m); err != nil {
			fmt.Printf("❌ Member %s : %v\n", m.ID, err)
		}
	}
	// A real mainnet address so /wallet and /treasury resolve something.
	if err := members.SaveWallet("alice", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"); err != nil {
		fmt.Printf("❌ Wallet : %v\n", err)
	}
	fmt.Printf("👥 %d members (alice has a linked wallet)\n", len(roster))
}

func seedGroups(db *badger.DB, now time.Time) {
	groups := repositories.NewGroupRepository(db)

	alpha, err := domain.NewGroup("alpha", "alice", []domain.UserID{"alice", "bob", "carol"}, "thread-alpha", now)
	if err != nil {
		fmt.Printf("❌ Group alpha : %v\n", err)
		return
	}
	if err := groups.Create(*alpha); err != nil {
		fmt.Printf("❌ Group alpha : %v\n", err)
	}

	beta, err := domain.NewGroup("beta", "dave", []domain.UserID{"dave", "erin"}, "thread-beta", now.Add(-3*time.Hour))
	if err != nil {
		fmt.Printf("❌ Group beta : %v\n", err)
		return
	}
	// Quiet for hours, so the cleanup pass disbands it shortly after start.
	beta.LastSeen = now.Add(-2 * time.Hour)
	if err := groups.Create(*beta); err != nil {
		fmt.Printf("❌ Group beta : %v\n", err)
	}
	fmt.Println("🏕  2 groups (beta is idle and due for cleanup)")
}

func seedTimers(db *badger.DB, now time.Time) {
	timers := repositories.NewTimerRepository(db)
	timer, err := domain.NewTimer("alice", "standup", 15*time.Minute, now.Add(-2*time.Minute))
	if err != nil {
		fmt.Printf("❌ Timer : %v\n", err)
		return
	}
	if err := timer.Start(now.Add(-2 * time.Minute)); err != nil {
		fmt.Printf("❌ Timer : %v\n", err)
		return
	}
	if err := timers.Save(*timer); err != nil {
		fmt.Printf("❌ Timer : %v\n", err)
		return
	}
	fmt.Println("⏱  1 running timer (standup, 13 minutes left)")
}

func seedRespect(db *badger.DB, now time.Time) {
	ledger := repositories.NewRespectRepository(db)
	entries := []domain.RespectEntry{
		domain.NewRespectEntry("bob", "alice", "kept the meeting on track", now.Add(-48*time.Hour)),
		domain.NewRespectEntry("carol", "alice", "wrote up the consensus notes", now.Add(-26*time.Hour)),
		domain.NewRespectEntry("alice", "bob", "fixed the voting mixup", now.Add(-25*time.Hour)),
	}
	for _, e := range entries {
		if err := ledger.Record(e); err != nil {
			fmt.Printf("❌ Respect : %v\n", err)
		}
	}
	fmt.Printf("🙏 %d respect entries\n", len(entries))
}

func seedVoice(db *badger.DB) {
	presence := repositories.NewPresenceRepository(db)
	totals := map[domain.UserID]int64{"alice": 5400, "bob": 3600, "carol": 900}
	for user, seconds := range totals {
		if err := presence.AddSeconds(user, seconds); err != nil {
			fmt.Printf("❌ Voice %s : %v\n", user, err)
		}
	}
	fmt.Printf("🎙  voice totals for %d members\n", len(totals))
}

func seedTranscript(db *badger.DB, index *bluge.Writer, now time.Time) {
	transcripts := repositories.NewTranscriptRepository(db, index, logs.GetLoggerFromLevel(slog.LevelWarn), nil)
	lines := []struct {
		author domain.UserID
		text   string
		ago    time.Duration
	}{
		{"alice", "let's settle the budget split before friday", 55 * time.Minute},
		{"bob", "I ranked the proposals, sharing the sheet now", 48 * time.Minute},
		{"carol", "the fractal round went smoothly last week", 40 * time.Minute},
		{"alice", "starting a vote on the top two options", 30 * time.Minute},
		{"bob", "voted, the treasury numbers look fine to me", 18 * time.Minute},
		{"carol", "same, and I added notes to the summary doc", 5 * time.Minute},
	}
	for _, l := range lines {
		msg := domain.TranscriptMessage{
			ID:         uuid.NewString(),
			Thread:     "thread-alpha",
			Author:     l.author,
			AuthorName: string(l.author),
			Content:    l.text,
			At:         now.Add(-l.ago),
		}
		if err := transcripts.Archive(msg); err != nil {
			fmt.Printf("❌ Transcript : %v\n", err)
		}
	}
	fmt.Printf("📜 %d archived messages in thread-alpha\n", len(lines))
}
