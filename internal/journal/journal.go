// internal/journal/journal.go
//
// Package journal records detected relationship drift. The coordinator never
// rolls back a committed step, so when a dual-write's second half fails the
// only honest move is to report the partial state somewhere an operator (or
// the reconciler worker) can find it. Records go to a Redis queue; publishing
// is best-effort and never fails the operation that produced the drift.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list drift records are pushed onto.
const DefaultQueueName = "eelo_drift"

// Drift kinds name the relationship whose two copies may disagree.
const (
	KindLobbyMembership = "lobby_membership"
	KindLobbyInvite     = "lobby_invite"
	KindFriend          = "friend"
	KindFriendInvite    = "friend_invite"
)

// Drift describes one suspected inconsistency: which operation hit it, at
// which step, and which records to re-examine.
type Drift struct {
	Op        string `json:"op"`
	Step      string `json:"step"`
	Kind      string `json:"kind"`
	UserID    string `json:"user_id,omitempty"`
	OtherID   string `json:"other_id,omitempty"`
	LobbyID   string `json:"lobby_id,omitempty"`
	Detail    string `json:"detail"`
	Timestamp int64  `json:"timestamp"`
}

// Recorder accepts drift records. Implementations must not block the caller
// beyond a single queue send and must never surface an error to it.
type Recorder interface {
	Record(ctx context.Context, d Drift)
}

// Nop discards every record. Used when no journal is configured.
type Nop struct{}

func (Nop) Record(context.Context, Drift) {}

// RedisRecorder pushes drift records onto a Redis list as JSON.
type RedisRecorder struct {
	client *redis.Client
	queue  string
	logger *logrus.Logger
}

// NewRedisRecorder connects to Redis at addr and verifies the connection.
// An empty queue name selects DefaultQueueName.
func NewRedisRecorder(addr, queue string, logger *logrus.Logger) (*RedisRecorder, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisRecorder{client: client, queue: queue, logger: logger}, nil
}

// Record serializes the drift and pushes it. Failures are logged and dropped;
// the journal must never turn a detected drift into a second failure.
func (r *RedisRecorder) Record(ctx context.Context, d Drift) {
	if d.Timestamp == 0 {
		d.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(d)
	if err != nil {
		r.logger.WithError(err).Warn("journal: marshal drift record")
		return
	}
	if err := r.client.RPush(ctx, r.queue, data).Err(); err != nil {
		r.logger.WithFields(logrus.Fields{
			"op":   d.Op,
			"kind": d.Kind,
		}).WithError(err).Warn("journal: push drift record")
	}
}

// Memory accumulates drift records in process. Tests use it to assert that a
// transition reported the drift it was supposed to.
type Memory struct {
	mu     sync.Mutex
	drifts []Drift
}

func (m *Memory) Record(_ context.Context, d Drift) {
	if d.Timestamp == 0 {
		d.Timestamp = time.Now().UnixMilli()
	}
	m.mu.Lock()
	m.drifts = append(m.drifts, d)
	m.mu.Unlock()
}

// Drifts returns a copy of everything recorded so far.
func (m *Memory) Drifts() []Drift {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Drift, len(m.drifts))
	copy(out, m.drifts)
	return out
}
