package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"canvaspilot/internal/canvus"
	"canvaspilot/internal/config"
	"canvaspilot/internal/genai"
	"canvaspilot/internal/instruction"
	"canvaspilot/internal/jobs"
	"canvaspilot/internal/logging"
	"canvaspilot/internal/metrics"
	"canvaspilot/internal/status"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	log.Println("🚀 Starting Canvus instruction poller...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	// Load configuration
	cfg := config.Load()

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init(cfg.LoggingEnabled)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("📋 Configuration loaded (server: %s, poll interval: %v)", cfg.TargetServer, cfg.PollInterval)

	// Validate the generative service credential once, before the loop
	// begins. This is the only fatal condition after startup config.
	genaiClient := genai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := genaiClient.ValidateKey(ctx)
		cancel()
		if err != nil {
			log.Fatalf("❌ Generative service credential check failed: %v", err)
		}
	}
	log.Println("✅ Generative service credential is valid")

	canvusClient := canvus.New(cfg.TargetServer, cfg.APIKey)

	// Resolve the target canvases: a single CANVAS_NAME, or a canvases file
	// that can list several and is hot-reloaded on change.
	targets := config.NewTargets()
	if cfg.CanvasesFile != "" {
		canvasesCfg, err := config.LoadCanvases(cfg.CanvasesFile)
		if err != nil {
			log.Fatalf("❌ Failed to load canvases file: %v", err)
		}
		targets.Set(canvasesCfg.Names())
		log.Printf("📋 Watching %d canvases from %s", len(canvasesCfg.Names()), cfg.CanvasesFile)
		go watchCanvasesFile(cfg.CanvasesFile, targets)
	} else {
		targets.Set([]string{cfg.CanvasName})
		log.Printf("📋 Watching canvas %q", cfg.CanvasName)
	}

	m := metrics.Init()
	recorder := status.NewRecorder()

	executor := instruction.NewExecutor(canvusClient, genaiClient, m)
	scanner := instruction.NewScanner(canvusClient, executor, targets, m)

	scheduler := jobs.NewScheduler()
	scheduler.Register("note-monitor", jobs.NewNoteMonitor(scanner, cfg.PollInterval, m, recorder))

	stuckReporter, err := jobs.NewStuckNoteReporter(canvusClient, targets, cfg.StuckReportSchedule, m)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	scheduler.Register("stuck-note-reporter", stuckReporter)

	scheduler.Start()
	log.Println("✅ Background job scheduler started")

	// Optional status/metrics server
	var app = status.NewApp(recorder)
	if cfg.StatusPort != "" {
		go func() {
			log.Printf("📊 Status server listening on :%s (/health, /metrics)", cfg.StatusPort)
			if err := app.Listen(":" + cfg.StatusPort); err != nil {
				log.Printf("⚠️  Status server stopped: %v", err)
			}
		}()
	}

	// Block until a shutdown signal arrives
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down...")

	scheduler.Stop()

	if cfg.StatusPort != "" {
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error stopping status server: %v", err)
		}
	}

	log.Println("✅ Shutdown complete")
}

// watchCanvasesFile watches the canvases file for changes and reloads the
// target list. Watches the containing directory, which survives editors that
// replace the file on save.
func watchCanvasesFile(filePath string, targets *config.Targets) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create file watcher: %v", err)
		return
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		log.Printf("⚠️  Failed to get absolute path for %s: %v", filePath, err)
		watcher.Close()
		return
	}

	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  Failed to watch directory %s: %v", dir, err)
		watcher.Close()
		return
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", filePath)

	// Debounce rapid successive writes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				debounceTimer = time.AfterFunc(debounceDuration, func() {
					canvasesCfg, err := config.LoadCanvases(filePath)
					if err != nil {
						log.Printf("❌ Failed to reload canvases file: %v", err)
						return
					}
					targets.Set(canvasesCfg.Names())
					log.Printf("🔄 Reloaded %d canvases from %s", len(canvasesCfg.Names()), filePath)
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		}
	}
}
