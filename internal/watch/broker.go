package watch

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"novamind/backend/internal/model"
)

// channelName is the Redis pub/sub channel used to relay session mutations
// between instances.
const channelName = "novamind:chat_events"

// SnapshotFunc derives the current session list for an owner. The broker
// never caches sessions itself; every emission re-reads through this, so the
// store stays the single source of truth.
type SnapshotFunc func(ctx context.Context, ownerID string) ([]*model.ChatSession, error)

// Callback receives each session-list snapshot. Callbacks are invoked from
// the notifying goroutine and must not block.
type Callback func(sessions []*model.ChatSession)

type event struct {
	OwnerID string `json:"owner_id"`
}

// Broker fans session-list snapshots out to live subscribers. Each watch is
// registered per owner; a mutation to any of the owner's sessions re-derives
// the list and delivers it to every subscriber of that owner.
//
// When a Redis client is configured, notifications travel through pub/sub so
// that subscribers on other instances observe mutations too. Without Redis
// the broker degrades to in-process delivery.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[int]Callback
	nextID int

	// gates serializes snapshot delivery per owner, so the initial emission
	// of a new subscription and a concurrent fan-out cannot reorder.
	gates sync.Map

	load SnapshotFunc
	rdb  *redis.Client
}

func NewBroker(load SnapshotFunc, rdb *redis.Client) *Broker {
	return &Broker{
		subs: make(map[string]map[int]Callback),
		load: load,
		rdb:  rdb,
	}
}

// Subscribe registers a live view over the owner's sessions. The callback is
// invoked once immediately with the current snapshot and again after every
// subsequent mutation, until the returned disposer is called. Multiple
// subscriptions for the same owner coexist independently.
func (b *Broker) Subscribe(ctx context.Context, ownerID string, fn Callback) (func(), error) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = make(map[int]Callback)
	}
	b.subs[ownerID][id] = fn
	b.mu.Unlock()

	unregister := func() {
		b.mu.Lock()
		delete(b.subs[ownerID], id)
		if len(b.subs[ownerID]) == 0 {
			delete(b.subs, ownerID)
		}
		b.mu.Unlock()
	}

	// The callback is registered before the initial load, and the gate keeps
	// the load+deliver atomic with respect to fan-out. A mutation that lands
	// while the initial snapshot is in flight therefore queues behind it and
	// still reaches this subscriber.
	gate := b.ownerGate(ownerID)
	gate.Lock()
	sessions, err := b.load(ctx, ownerID)
	if err != nil {
		gate.Unlock()
		unregister()
		return nil, err
	}
	fn(sessions)
	gate.Unlock()

	var once sync.Once
	return func() {
		once.Do(unregister)
	}, nil
}

// Notify tells the broker that one of the owner's sessions changed. With
// Redis configured the event goes through pub/sub and comes back via Run, so
// every instance (this one included) delivers exactly once.
func (b *Broker) Notify(ctx context.Context, ownerID string) {
	if b.rdb == nil {
		b.fanOut(ctx, ownerID)
		return
	}

	payload, _ := json.Marshal(event{OwnerID: ownerID})
	if err := b.rdb.Publish(ctx, channelName, payload).Err(); err != nil {
		slog.Warn("Failed to publish chat event, delivering locally only", "error", err)
		b.fanOut(ctx, ownerID)
	}
}

// Run consumes relayed events until the context is cancelled. It is a no-op
// without a Redis client.
func (b *Broker) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}

	pubsub := b.rdb.Subscribe(ctx, channelName)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("Dropping malformed chat event", "error", err)
				continue
			}
			b.fanOut(ctx, ev.OwnerID)
		}
	}
}

func (b *Broker) ownerGate(ownerID string) *sync.Mutex {
	v, _ := b.gates.LoadOrStore(ownerID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (b *Broker) fanOut(ctx context.Context, ownerID string) {
	gate := b.ownerGate(ownerID)
	gate.Lock()
	defer gate.Unlock()

	b.mu.RLock()
	callbacks := make([]Callback, 0, len(b.subs[ownerID]))
	for _, fn := range b.subs[ownerID] {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()

	if len(callbacks) == 0 {
		return
	}

	sessions, err := b.load(ctx, ownerID)
	if err != nil {
		slog.Error("Failed to load sessions for watch emission", "owner_id", ownerID, "error", err)
		return
	}

	for _, fn := range callbacks {
		fn(sessions)
	}
}
