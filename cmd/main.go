package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"

	"fractal-bot/ai"
	"fractal-bot/auth"
	"fractal-bot/chain"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/gateway"
	"fractal-bot/internal"
	"fractal-bot/moderation"
	"fractal-bot/observability"
	"fractal-bot/projection"
	"fractal-bot/repositories"
	"fractal-bot/runtime"
	"fractal-bot/runtime/workers"
	"fractal-bot/services"
	"fractal-bot/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the console and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	maskChar, err := config.MaskRune()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := auth.ValidatePassword(config.ConsolePassword); err != nil {
		return fmt.Errorf("console password rejected: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	clock := clockwork.NewRealClock()

	// 2. Stores (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLogger(runtime.NewBadgerLogger(log)))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Repositories & Services
	groups := repositories.NewGroupRepository(db)
	votes := repositories.NewVoteRepository(db)
	fractals := repositories.NewFractalRepository(db)
	timers := repositories.NewTimerRepository(db)
	ledger := repositories.NewRespectRepository(db)
	members := repositories.NewMemberRepository(db)
	presence := repositories.NewPresenceRepository(db)
	transcripts := repositories.NewTranscriptRepository(db, index, log, nil)

	phrases, err := runtime.ScamPhrases()
	if err != nil {
		return fmt.Errorf("scam dictionaries failed to load: %w", err)
	}
	moderator, err := moderation.NewModerator(phrases.Phrases, maskChar, log)
	if err != nil {
		return fmt.Errorf("moderation automaton failed to build: %w", err)
	}

	owner := domain.UserID(config.OwnerID)
	feed := projection.NewActivityFeed(0)
	responder := gateway.NewLogResponder(log)

	rpc := chain.NewClient(chain.Config{Endpoint: config.RPCEndpoint, Timeout: config.RPCTimeout}, log)
	nameCache := chain.NewCache(config.NameCacheTTL, clock)
	resolver := chain.NewResolver(rpc, nameCache, log)
	token := chain.NewToken(rpc, config.TokenContract, log)

	var digester ai.Digester = ai.LocalDigester{}
	if config.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiDigester(ctx, config.GeminiAPIKey, config.GeminiModel, log)
		if err != nil {
			log.Warn(fmt.Sprintf("Failed to reach Gemini, keeping the local digester : %v", err))
		} else {
			digester = gemini
		}
	}

	engine := runtime.NewEngine(
		services.NewGroupService(groups, votes, fractals, &moderator, owner, clock, log),
		services.NewVoteService(groups, votes, clock, log),
		services.NewFractalService(groups, fractals, clock, log),
		services.NewTimerService(timers, owner, clock, log),
		services.NewRespectService(ledger, &moderator, clock, log),
		services.NewMemberService(members, feed, &moderator, clock, log),
		services.NewTreasuryService(members, resolver, token, log),
		services.NewSummaryService(transcripts, digester, config.ExportDir, clock, log),
		services.NewPresenceService(presence, gateway.NewLogMover(log), owner, clock, log),
		services.NewAdminService(gateway.NewLogRegistrar(log), owner, log),
	)

	// 5. Setup Supervision & Orchestration
	counter := event.NewCounter()
	handlers := []event.Handler{
		event.NewCommandStatsHandler(log, counter),
		event.NewWorkerRestartedHandler(log, counter),
		event.NewCensorHitHandler(log),
		event.NewCapacityHandler(log, config.LowCapacityThreshold),
	}

	channels := runtime.NewChannels(config.BufferSize)
	sup := workers.NewSupervisor(log, channels.Telemetry)
	registry := runtime.NewRegistry(log, sup, engine, responder,
		channels.DomainEvents, channels.Telemetry, clock, config.SessionInboxSize)

	orchestrator := runtime.NewOrchestrator(log, sup, registry, responder, clock,
		channels, handlers, runtime.Options{
			SinkTimeout:    config.SinkTimeout,
			MetricInterval: config.MetricInterval,
			MaskChar:       maskChar,
			RateLimit:      config.RateLimit,
			RateWindow:     config.RateWindow,
		})
	orchestrator.RegisterSinks(
		sink.NewArchiveSink(transcripts, groups, log),
		sink.NewNotifySink(responder, log),
		feed,
	)
	orchestrator.Supervise(
		workers.NewTimerTickerWorker(timers, channels.DomainEvents, clock, log),
		workers.NewCleanupWorker(groups, votes, fractals, registry, responder, nameCache,
			channels.DomainEvents, clock, config.CleanupInterval, config.IdleTTL, log),
		workers.NewHeartbeatWorker(log),
	)

	// 6. Start the Engine
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// The platform adapter drives this feed with messages and voice changes.
	// Until one is attached, stdin keeps the command surface usable.
	if config.BotToken == "" {
		log.Warn("BOT_TOKEN is empty, a platform adapter cannot attach")
	}
	ingress := gateway.NewFeed(gateway.NewParser(config.CommandPrefix), orchestrator, responder, log)
	go readLocalInput(ctx, ingress, owner, clock, log)

	// 7. Ops Console Setup
	passwordHash, err := auth.HashPassword(config.ConsolePassword)
	if err != nil {
		return fmt.Errorf("console password hashing failed: %w", err)
	}
	issuer := auth.NewTokenIssuer(config.ConsoleTokenSecret, config.ConsoleTokenTTL, clock)
	stats := observability.NewStatsCollector(counter, registry.Active)
	console := internal.NewConsole(log, db, nil, stats.Snapshot, feed, issuer, passwordHash, config.ExportDir)

	address := fmt.Sprintf("%s:%d", config.ConsoleHost, config.ConsolePort)
	srv := &http.Server{Addr: address, Handler: console.Routes()}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting ops console", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("ops console error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// readLocalInput feeds stdin lines to the gateway as the owner speaking in
// a local thread. Replies land in the log through the responder.
func readLocalInput(ctx context.Context, ingress *gateway.Feed, owner domain.UserID, clock clockwork.Clock, log *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ingress.HandleMessage(ctx, gateway.MessageEvent{
			ID:         uuid.NewString(),
			Thread:     "local",
			Author:     owner,
			AuthorName: "operator",
			Content:    line,
			At:         clock.Now(),
		})
	}
	if err := scanner.Err(); err != nil {
		log.Warn(fmt.Sprintf("Failed to read local input : %v", err))
	}
}
