package watch_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novamind/backend/internal/model"
	"novamind/backend/internal/watch"
)

func snapshotFor(loads *atomic.Int64, byOwner map[string][]*model.ChatSession) watch.SnapshotFunc {
	return func(_ context.Context, ownerID string) ([]*model.ChatSession, error) {
		if loads != nil {
			loads.Add(1)
		}
		return byOwner[ownerID], nil
	}
}

func TestBroker_SubscribeEmitsImmediately(t *testing.T) {
	sessions := map[string][]*model.ChatSession{
		"alice": {{ID: "chat-1", OwnerID: "alice", Title: "First"}},
	}
	broker := watch.NewBroker(snapshotFor(nil, sessions), nil)

	var got [][]*model.ChatSession
	unsubscribe, err := broker.Subscribe(context.Background(), "alice", func(ss []*model.ChatSession) {
		got = append(got, ss)
	})
	require.NoError(t, err)
	defer unsubscribe()

	require.Len(t, got, 1)
	assert.Equal(t, sessions["alice"], got[0])
}

func TestBroker_NotifyRederivesSnapshot(t *testing.T) {
	sessions := map[string][]*model.ChatSession{
		"alice": {{ID: "chat-1", OwnerID: "alice"}},
	}
	var loads atomic.Int64
	broker := watch.NewBroker(snapshotFor(&loads, sessions), nil)

	var got [][]*model.ChatSession
	_, err := broker.Subscribe(context.Background(), "alice", func(ss []*model.ChatSession) {
		got = append(got, ss)
	})
	require.NoError(t, err)

	// Mutate the backing store, then notify; the emission must reflect it.
	sessions["alice"] = append(sessions["alice"], &model.ChatSession{ID: "chat-2", OwnerID: "alice"})
	broker.Notify(context.Background(), "alice")

	require.Len(t, got, 2)
	assert.Len(t, got[1], 2)
	assert.Equal(t, int64(2), loads.Load())
}

func TestBroker_UnsubscribeStopsDelivery(t *testing.T) {
	sessions := map[string][]*model.ChatSession{"alice": {}}
	var loads atomic.Int64
	broker := watch.NewBroker(snapshotFor(&loads, sessions), nil)

	calls := 0
	unsubscribe, err := broker.Subscribe(context.Background(), "alice", func([]*model.ChatSession) {
		calls++
	})
	require.NoError(t, err)

	unsubscribe()
	unsubscribe() // disposing twice is harmless

	broker.Notify(context.Background(), "alice")
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), loads.Load(), "no snapshot load without subscribers")
}

func TestBroker_SubscribersAreIndependent(t *testing.T) {
	sessions := map[string][]*model.ChatSession{
		"alice": {{ID: "chat-a", OwnerID: "alice"}},
		"bob":   {{ID: "chat-b", OwnerID: "bob"}},
	}
	broker := watch.NewBroker(snapshotFor(nil, sessions), nil)

	aliceCalls, bobCalls := 0, 0
	_, err := broker.Subscribe(context.Background(), "alice", func([]*model.ChatSession) { aliceCalls++ })
	require.NoError(t, err)
	_, err = broker.Subscribe(context.Background(), "bob", func([]*model.ChatSession) { bobCalls++ })
	require.NoError(t, err)

	broker.Notify(context.Background(), "alice")
	assert.Equal(t, 2, aliceCalls)
	assert.Equal(t, 1, bobCalls, "bob must not see alice's mutations")

	// Two subscriptions for the same owner coexist.
	secondAlice := 0
	_, err = broker.Subscribe(context.Background(), "alice", func([]*model.ChatSession) { secondAlice++ })
	require.NoError(t, err)

	broker.Notify(context.Background(), "alice")
	assert.Equal(t, 3, aliceCalls)
	assert.Equal(t, 2, secondAlice)
}

func TestBroker_MutationDuringInitialSnapshotIsNotLost(t *testing.T) {
	var (
		mu       sync.Mutex
		sessions = []*model.ChatSession{{ID: "chat-1", OwnerID: "alice"}}
	)
	loadStarted := make(chan struct{})
	releaseLoad := make(chan struct{})
	var loads atomic.Int64

	broker := watch.NewBroker(func(_ context.Context, _ string) ([]*model.ChatSession, error) {
		mu.Lock()
		snapshot := sessions
		mu.Unlock()
		// The first load has read its result and then stalls, standing in
		// for a slow store read overlapping a delete.
		if loads.Add(1) == 1 {
			close(loadStarted)
			<-releaseLoad
		}
		return snapshot, nil
	}, nil)

	var (
		emissionsMu sync.Mutex
		emissions   [][]*model.ChatSession
	)
	subscribed := make(chan struct{})
	go func() {
		defer close(subscribed)
		_, err := broker.Subscribe(context.Background(), "alice", func(ss []*model.ChatSession) {
			emissionsMu.Lock()
			emissions = append(emissions, ss)
			emissionsMu.Unlock()
		})
		assert.NoError(t, err)
	}()

	// The session is deleted and notified while the subscribe-time snapshot
	// is still in flight.
	<-loadStarted
	mu.Lock()
	sessions = nil
	mu.Unlock()
	notified := make(chan struct{})
	go func() {
		defer close(notified)
		broker.Notify(context.Background(), "alice")
	}()

	close(releaseLoad)
	<-subscribed
	<-notified

	emissionsMu.Lock()
	defer emissionsMu.Unlock()
	require.NotEmpty(t, emissions)
	assert.Empty(t, emissions[len(emissions)-1],
		"the latest emission must reflect the delete")
}

func TestBroker_SubscribeFailsWhenSnapshotFails(t *testing.T) {
	loadErr := errors.New("store unavailable")
	broker := watch.NewBroker(func(context.Context, string) ([]*model.ChatSession, error) {
		return nil, loadErr
	}, nil)

	_, err := broker.Subscribe(context.Background(), "alice", func([]*model.ChatSession) {
		t.Fatal("callback must not run when the initial snapshot fails")
	})
	assert.ErrorIs(t, err, loadErr)
}
