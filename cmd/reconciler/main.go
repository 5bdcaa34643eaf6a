// cmd/reconciler/main.go is an asynchronous worker that pops drift records
// from the Redis journal and re-reads both sides of each flagged relationship
// to report whether the inconsistency still exists. It is read-only: repair
// stays a human decision, the worker only narrows where to look.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/CullanAriyawanse/eelo/internal/database"
	"github.com/CullanAriyawanse/eelo/internal/journal"
	"github.com/CullanAriyawanse/eelo/internal/store"
	"github.com/CullanAriyawanse/eelo/internal/store/dynamo"
	"github.com/CullanAriyawanse/eelo/internal/store/memory"
	"github.com/CullanAriyawanse/eelo/internal/store/postgres"
)

type reconciler struct {
	redisClient *redis.Client
	queue       string
	users       *database.UserStore
	lobbies     *database.LobbyStore
	logger      *logrus.Logger
}

func main() {
	logger := logrus.New()

	st, err := newStore(context.Background())
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	queue := os.Getenv("DRIFT_QUEUE_NAME")
	if queue == "" {
		queue = journal.DefaultQueueName
	}

	r := &reconciler{
		redisClient: redis.NewClient(&redis.Options{Addr: addr}),
		queue:       queue,
		users:       database.NewUserStore(st),
		lobbies:     database.NewLobbyStore(st),
		logger:      logger,
	}

	logger.Infof("eelo-reconciler consuming %q at %s", queue, addr)
	r.run(context.Background())
}

func (r *reconciler) run(ctx context.Context) {
	for {
		res, err := r.redisClient.BLPop(ctx, 3*time.Second, r.queue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				r.logger.WithError(err).Error("blpop")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var d journal.Drift
		if err := json.Unmarshal([]byte(res[1]), &d); err != nil {
			r.logger.WithError(err).Warn("invalid drift record")
			continue
		}
		r.check(ctx, d)
	}
}

// check re-reads the two denormalized copies named by the drift record and
// logs whether they still disagree. A record absent on both sides counts as
// consistent: the relationship is simply gone.
func (r *reconciler) check(ctx context.Context, d journal.Drift) {
	fields := logrus.Fields{
		"op":       d.Op,
		"step":     d.Step,
		"kind":     d.Kind,
		"user_id":  d.UserID,
		"other_id": d.OtherID,
		"lobby_id": d.LobbyID,
	}

	var consistent bool
	var err error
	switch d.Kind {
	case journal.KindLobbyMembership:
		consistent, err = r.checkLobbyMembership(ctx, d.UserID, d.LobbyID)
	case journal.KindLobbyInvite:
		// A stale invite surviving a completed accept is tolerated drift;
		// report whether it is still listed, repair is optional.
		var present bool
		present, err = r.userListContains(ctx, d.UserID, database.ListLobbyInvites, d.LobbyID)
		consistent = !present
	case journal.KindFriend:
		consistent, err = r.checkFriendship(ctx, d.UserID, d.OtherID)
	case journal.KindFriendInvite:
		var present bool
		present, err = r.userListContains(ctx, d.UserID, database.ListFriendInvites, d.OtherID)
		consistent = !present
	default:
		r.logger.WithFields(fields).Warn("unknown drift kind")
		return
	}

	if err != nil {
		r.logger.WithFields(fields).WithError(err).Error("reconcile check failed")
		return
	}
	if consistent {
		r.logger.WithFields(fields).Info("drift resolved, records agree")
	} else {
		r.logger.WithFields(fields).Warn("drift confirmed, records disagree")
	}
}

// checkLobbyMembership reports whether the lobby member entry and the user's
// back-reference agree (both present or both absent).
func (r *reconciler) checkLobbyMembership(ctx context.Context, userID, lobbyID string) (bool, error) {
	memberPresent := false
	lobby, err := r.lobbies.GetLobby(ctx, lobbyID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return false, err
	}
	if err == nil {
		for _, m := range lobby.Members {
			if m.UserID == userID {
				memberPresent = true
				break
			}
		}
	}

	backrefPresent, err := r.userListContains(ctx, userID, database.ListLobbies, lobbyID)
	if err != nil {
		return false, err
	}
	return memberPresent == backrefPresent, nil
}

// checkFriendship reports whether both users' friends lists agree about each
// other.
func (r *reconciler) checkFriendship(ctx context.Context, userID, otherID string) (bool, error) {
	a, err := r.userListContains(ctx, userID, database.ListFriends, otherID)
	if err != nil {
		return false, err
	}
	b, err := r.userListContains(ctx, otherID, database.ListFriends, userID)
	if err != nil {
		return false, err
	}
	return a == b, nil
}

func (r *reconciler) userListContains(ctx context.Context, userID, listName, value string) (bool, error) {
	user, err := r.users.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, v := range user.List(listName) {
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

// newStore mirrors the server's driver selection so both processes see the
// same records.
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
