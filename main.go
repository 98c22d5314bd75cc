package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listing_studio/api"
	"listing_studio/config"
	"listing_studio/httputil"
	"listing_studio/logging"
	"listing_studio/render"
	"listing_studio/retry"
	"listing_studio/scheduler"
	"listing_studio/scraper"
	"listing_studio/services"
	"listing_studio/storage"
	"listing_studio/workers"
)

var (
	extractURL  = flag.String("extract", "", "Extract a listing URL, print the record and exit")
	listingType = flag.String("listing-type", "", "Listing type label, e.g. \"Just Listed\"")
	templateID  = flag.String("template", "", "Render the extracted record with this template (\"video:<id>\" for video)")
	wait        = flag.Bool("wait", false, "Wait for the render to finish before exiting")
	session     = flag.String("session", "", "Session token whose agent profile overrides scraped agent details")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath, logging.DefaultMaxSize, logging.DefaultBackups)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting listing_studio...")
	log.Printf("Loaded %d source configs", len(cfg.Sources))
	for id, src := range cfg.Sources {
		log.Printf("  - %s (%s, enabled=%t)", src.Name, id, src.IsEnabled())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()
	log.Printf("Store: %s", describeStore(cfg.Store))

	jobs := storage.NewJobStore(store)
	clients := httputil.NewClients(cfg)

	images := render.NewBannerbearClient(cfg.Bannerbear, clients.Render)
	videos := render.NewShotstackClient(cfg.Shotstack, clients.Render)
	poller := render.NewRenderJobPoller(images, videos, cfg.Render, retry.Sleep)

	pipeline := services.NewPipeline(
		scraper.NewExtractor(cfg, scraper.NewFirecrawlClient(cfg.Firecrawl, clients.Extraction), retry.Sleep),
		render.NewDispatcher(cfg, images, videos),
		poller,
		jobs,
	)

	var archiver *workers.ArchiveWorker
	if cfg.S3.Enabled() {
		uploader, err := storage.NewS3Archiver(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to set up S3 archive: %v", err)
		}
		archiver = workers.NewArchiveWorker(uploader, nil)
		pipeline.SetArchiver(archiver)
		log.Printf("Archiving renders to s3://%s", cfg.S3.Bucket)
	}

	// One-shot mode
	if *extractURL != "" {
		if err := runOnce(ctx, pipeline); err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		return
	}

	// Daemon mode
	sweep := workers.NewSweepWorker(jobs, poller, cfg.Scheduler.BatchSize)
	sweep.SetLogger(workers.StdLogger)
	if archiver != nil {
		sweep.SetArchiver(archiver)
	}
	go sweep.Run(ctx)

	sched := scheduler.New(cfg.Scheduler, sweep)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	sched.TriggerNow()

	health := services.NewHealthcheckService(cfg, store)
	health.SetSources(pipeline)

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(cfg.Server, api.Deps{
			Pipeline:      pipeline,
			Health:        health,
			WebhookSecret: cfg.Bannerbear.WebhookSecret,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Println("Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	sched.Stop()
	log.Println("Goodbye!")
}

func runOnce(ctx context.Context, pipeline *services.Pipeline) error {
	profile, err := pipeline.ProfileForSession(ctx, *session)
	if err != nil {
		return err
	}

	rec, err := pipeline.Extract(ctx, *extractURL, *listingType, profile)
	if err != nil {
		return err
	}
	printJSON(rec)

	if *templateID == "" && !*wait {
		return nil
	}

	handle, err := pipeline.Dispatch(ctx, rec, *templateID, profile, *listingType)
	if err != nil {
		return err
	}
	log.Printf("Dispatched %s job %s (remote %s)", handle.Kind, handle.ID, handle.RemoteID)
	if !*wait {
		printJSON(handle)
		return nil
	}

	job, err := pipeline.Await(ctx, handle)
	printJSON(job)
	return err
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func describeStore(cfg config.StoreConfig) string {
	switch cfg.Driver {
	case "postgres":
		return "postgres " + maskConnectionString(cfg.DatabaseURL)
	case "redis":
		return "redis " + cfg.RedisAddr
	case "memory":
		return "memory"
	default:
		return "sqlite " + cfg.DBPath
	}
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
