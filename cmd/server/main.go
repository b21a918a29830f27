package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netograph/internal/config"
	"netograph/internal/handler"
	"netograph/internal/hub"
	"netograph/internal/repository/sqlite"
	"netograph/internal/service"
	"netograph/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "config file path (defaults to search order)")
	addr := flag.String("addr", "", "HTTP listen address override")
	dbPath := flag.String("db", "", "SQLite database path override")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting netograph server...")

	cfg, cfgSource, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgSource != "" {
		log.Printf("Config loaded from %s", cfgSource)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedVLANs(ctx, repo, cfg); err != nil {
		log.Fatalf("Failed to seed VLAN config: %v", err)
	}

	eventBus := service.NewEventBus()
	sseHub := hub.New(eventBus)
	go sseHub.Run()

	ingestSvc := service.NewIngestService(repo, eventBus)
	corrSvc := service.NewCorrelationService(repo, repo, eventBus)
	topoSvc := service.NewTopologyService(repo, eventBus)

	if cfg.Ingest.Enabled {
		w, err := watcher.New(cfg.Ingest.Dir, ingestSvc)
		if err != nil {
			log.Fatalf("Failed to start ingest watcher: %v", err)
		}
		go func() {
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("Ingest watcher stopped: %v", err)
			}
		}()
	}

	api := handler.New(topoSvc, corrSvc, ingestSvc)

	mux := http.NewServeMux()
	api.Routes(mux)
	mux.Handle("GET /events", sseHub)

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	listenAddr := cfg.Server.Addr()
	if *addr != "" {
		listenAddr = *addr
	}

	server := &http.Server{
		Addr:        listenAddr,
		Handler:     finalHandler,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /events holds the response open indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", listenAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// seedVLANs pushes configured VLAN definitions into the store so the
// topology builder can resolve them without re-reading the file
func seedVLANs(ctx context.Context, repo *sqlite.Repository, cfg *config.Config) error {
	for i := range cfg.VLANs {
		if err := repo.UpsertVLAN(ctx, &cfg.VLANs[i]); err != nil {
			return err
		}
	}
	if len(cfg.VLANs) > 0 {
		log.Printf("Seeded %d VLAN definitions from config", len(cfg.VLANs))
	}
	return nil
}
