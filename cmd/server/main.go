// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/CullanAriyawanse/eelo/internal/auth"
	"github.com/CullanAriyawanse/eelo/internal/database"
	"github.com/CullanAriyawanse/eelo/internal/events"
	"github.com/CullanAriyawanse/eelo/internal/handlers"
	"github.com/CullanAriyawanse/eelo/internal/journal"
	"github.com/CullanAriyawanse/eelo/internal/middleware"
	"github.com/CullanAriyawanse/eelo/internal/relationship"
	"github.com/CullanAriyawanse/eelo/internal/store"
	"github.com/CullanAriyawanse/eelo/internal/store/dynamo"
	"github.com/CullanAriyawanse/eelo/internal/store/memory"
	"github.com/CullanAriyawanse/eelo/internal/store/postgres"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()

	st, err := newStore(ctx)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}

	var rec journal.Recorder = journal.Nop{}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisRec, err := journal.NewRedisRecorder(addr, os.Getenv("DRIFT_QUEUE_NAME"), logger)
		if err != nil {
			log.Fatalf("journal init failed: %v", err)
		}
		rec = redisRec
		logger.Infof("drift journal publishing to redis at %s", addr)
	}

	coordinator := relationship.New(
		database.NewUserStore(st),
		database.NewLobbyStore(st),
		rec,
		logger,
	)
	srv := handlers.NewServer(coordinator, events.NewHub(), logger)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, middleware.LogMiddleware(logger)(srv.Routes())); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// newStore selects the substrate driver from STORE_DRIVER:
// "dynamo", "postgres", or "memory" (default).
func newStore(ctx context.Context) (store.Store, error) {
	switch os.Getenv("STORE_DRIVER") {
	case "dynamo":
		return dynamo.New(ctx)
	case "postgres":
		return postgres.Connect(ctx, os.Getenv("DATABASE_URL"))
	default:
		return memory.New(), nil
	}
}
