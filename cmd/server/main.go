/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the academy storefront server: configuration,
  snapshot store, engine, router, graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment, flag overrides)
  2. Open the snapshot store (jsonfile, sqlite, or memory)
  3. Restore or seed the engine state
  4. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -data    Snapshot path (overrides DATA_PATH)
  -store   jsonfile | sqlite | memory (overrides STORE)

ENVIRONMENT:
  See config/config.go. Notably OWNER_USERNAME sets the reserved
  primary-owner account seeded on first launch, and CONTENT_HELPER_URL
  enables the lesson companion.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NOUR0003/star-academy/api"
	"github.com/NOUR0003/star-academy/config"
	"github.com/NOUR0003/star-academy/content"
	"github.com/NOUR0003/star-academy/engine"
	memstore "github.com/NOUR0003/star-academy/engine/store"
	"github.com/NOUR0003/star-academy/store/jsonfile"
	"github.com/NOUR0003/star-academy/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dataPath := flag.String("data", cfg.DataPath, "snapshot path")
	storeKind := flag.String("store", cfg.Store, "jsonfile | sqlite | memory")
	flag.Parse()

	store, err := openStore(*storeKind, *dataPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	eng, err := engine.New(context.Background(), store, engine.Options{
		Owner: engine.OwnerSeed{
			Username: cfg.OwnerUsername,
			Email:    cfg.OwnerEmail,
			Phone:    cfg.OwnerPhone,
			FullName: cfg.OwnerFullName,
		},
	})
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	companion := content.New(cfg.ContentHelperURL, cfg.ContentHelperKey, cfg.ContentHelperTimeout)
	handler := api.NewHandler(eng, companion)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d (store=%s)", *port, *storeKind)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func openStore(kind, path string) (engine.StateStore, error) {
	switch kind {
	case "jsonfile":
		return jsonfile.Open(path)
	case "sqlite":
		return sqlite.New(path)
	case "memory":
		return memstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}
