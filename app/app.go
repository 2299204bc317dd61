// Package app wires the scanner service together: configuration,
// database, cache, market data, the scan scheduler and the HTTP API.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Stockmasterflex/legend-ai-scanner/api"
	"github.com/Stockmasterflex/legend-ai-scanner/cache"
	"github.com/Stockmasterflex/legend-ai-scanner/config"
	"github.com/Stockmasterflex/legend-ai-scanner/database"
	"github.com/Stockmasterflex/legend-ai-scanner/database/patterns"
	"github.com/Stockmasterflex/legend-ai-scanner/fetch"
	"github.com/Stockmasterflex/legend-ai-scanner/notifications"
	"github.com/Stockmasterflex/legend-ai-scanner/realtime"
	"github.com/Stockmasterflex/legend-ai-scanner/scan"
	"github.com/Stockmasterflex/legend-ai-scanner/universe"
	"github.com/Stockmasterflex/legend-ai-scanner/vcp"
)

// RSProvider supplies an externally computed relative-strength rating
// for a symbol, or nil when none is available. The scanner never
// computes RS itself.
type RSProvider func(symbol string) *float64

// App represents the main application.
type App struct {
	config    *config.Config
	db        *database.Database
	redis     *cache.RedisClient
	repo      *patterns.Repository
	scanner   *scan.Scanner
	notifier  *notifications.Notifier
	broker    *realtime.Broker
	scheduler *Scheduler
	rs        RSProvider
}

// New creates a new application instance.
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// SetRSProvider installs the optional relative-strength source.
func (a *App) SetRSProvider(rs RSProvider) {
	a.rs = rs
}

// Start brings every component up and blocks until SIGINT/SIGTERM.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Database
	fmt.Println("🗄️  Connecting to database...")
	db, err := database.Connect(
		a.config.DatabaseHost,
		a.config.DatabasePort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db
	defer a.db.Close()

	a.repo = patterns.NewRepository(db.DB())
	if err := a.repo.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 2. Redis (optional — the API degrades to uncached reads)
	fmt.Println("🧠 Connecting to Redis...")
	a.redis = cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)
	if a.redis == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		defer a.redis.Close()
	}

	// 3. Scan pipeline
	fetcher := fetch.NewClient(a.config.MarketDataBaseURL, a.config.MarketDataAPIKey, 0)
	detector := vcp.NewDetector(a.config.Detector)
	a.scanner = scan.NewScanner(fetcher, detector, a.config.ScanConcurrency)
	a.notifier = notifications.NewNotifier(a.config.WebhookURLs)

	// 4. Realtime broker
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	// 5. Scheduler
	a.scheduler = NewScheduler(a.config.ScanAt, a.runScan)
	go a.scheduler.Start(ctx)
	defer a.scheduler.Stop()

	// 6. HTTP API
	server := api.NewServer(a.repo, a.redis, a.broker, a.db.Ping, a.scheduler.Trigger, a.config.AdminToken)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(a.config.APIPort)
	}()

	// Block until shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Printf("📡 Received %v, shutting down...", s)
		cancel()
		return nil
	case err := <-serverErr:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// runScan executes one full universe scan and fans the results out to
// the store, the cache, the stream broker and the webhooks.
func (a *App) runScan(ctx context.Context) {
	log.Println("🔍 Starting universe scan...")
	started := time.Now()

	symbols, err := universe.Load(a.config.UniversePath)
	if err != nil {
		log.Printf("⚠️  Failed to load universe: %v", err)
		return
	}
	a.broker.Broadcast(realtime.EventScanStarted, map[string]interface{}{"symbols": len(symbols)})

	signals := a.scanner.Scan(ctx, symbols)
	if ctx.Err() != nil {
		log.Println("⚠️  Scan canceled before completion")
		return
	}

	asOf := time.Now().UTC()
	records := make([]database.PatternRecord, 0, len(signals))
	for _, s := range signals {
		records = append(records, a.buildRecord(s, asOf))
	}
	if err := a.repo.Upsert(records); err != nil {
		log.Printf("⚠️  Failed to persist %d patterns: %v", len(records), err)
	}

	a.redis.InvalidateScanViews(ctx)
	a.broker.BroadcastScanComplete(signals)
	a.notifier.NotifySignals(signals, asOf)

	log.Printf("✅ Scan complete in %v: %d symbols, %d patterns detected",
		time.Since(started).Round(time.Second), len(symbols), len(signals))
}

// buildRecord converts a detected signal into its persisted row.
func (a *App) buildRecord(s vcp.Signal, asOf time.Time) database.PatternRecord {
	record := database.PatternRecord{
		Ticker:     strings.ToUpper(s.Symbol),
		Pattern:    "VCP",
		AsOf:       asOf,
		Confidence: s.ConfidenceScore,
		Meta:       signalMeta(s),
	}
	if s.PivotPrice > 0 {
		pivot := s.PivotPrice
		record.Price = &pivot
	}
	if a.rs != nil {
		record.RS = a.rs(s.Symbol)
	}
	return record
}

// signalMeta serializes the auxiliary detection details kept alongside
// the row.
func signalMeta(s vcp.Signal) string {
	meta := map[string]interface{}{
		"contractions": len(s.Contractions),
		"base_depth":   s.BaseDepth,
		"notes":        s.Notes,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(data)
}
