package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "grantflow/pkg/domain"
	audit "grantflow/pkg/platform/audit"
	"grantflow/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	dossierID := id.NewDossierID()
	event := audit.Event{
		DossierID: dossierID,
		Action:    string(audit.EventDossierCreated),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), dossierID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventDossierCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	dossierID := id.NewDossierID()
	event := audit.Event{
		DossierID: dossierID,
		Action:    string(audit.EventPhaseTransitioned),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	// Wait for async processing
	time.Sleep(100 * time.Millisecond)

	events, err := pub.List(context.Background(), dossierID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventPhaseTransitioned), events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	dossierID := id.NewDossierID()

	for range 10 {
		event := audit.Event{
			DossierID: dossierID,
			Action:    string(audit.EventDocumentUploaded),
		}
		err := pub.Emit(context.Background(), event)
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByDossier(context.Background(), dossierID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	dossierID := id.NewDossierID()

	// Fill the buffer with concurrent writes; some emits will be dropped.
	// Just verify no panic and the publisher keeps working.
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{
				DossierID: dossierID,
				Action:    string(audit.EventDocumentUploaded),
			})
		}()
	}
	wg.Wait()
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	dossierID := id.NewDossierID()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		DossierID: dossierID,
		Action:    string(audit.EventDossierCreated),
	}))

	pub.Close()

	// A late emit must fail cleanly instead of panicking on the closed inbox.
	err := pub.Emit(context.Background(), audit.Event{
		DossierID: dossierID,
		Action:    string(audit.EventDocumentUploaded),
	})
	require.Error(t, err)

	events, err := store.ListByDossier(context.Background(), dossierID)
	require.NoError(t, err)
	assert.Len(t, events, 1, "only the pre-close event is stored")
}

func TestPublisher_EmitAfterCloseSyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		DossierID: id.NewDossierID(),
		Action:    string(audit.EventDossierCreated),
	})
	require.Error(t, err)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	dossierID := id.NewDossierID()
	event := audit.Event{
		DossierID: dossierID,
		Action:    string(audit.EventDossierCreated),
		// Timestamp not set
	}

	before := time.Now()
	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)
	after := time.Now()

	events, err := pub.List(context.Background(), dossierID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, !events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.True(t, !events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	dossierID := id.NewDossierID()
	customTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	event := audit.Event{
		DossierID: dossierID,
		Action:    string(audit.EventDossierCreated),
		Timestamp: customTime,
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), dossierID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_ForwardsToSink(t *testing.T) {
	store := memory.NewInMemoryStore()
	sink := &captureSink{}
	pub := NewPublisher(store, WithSink(sink))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		DossierID: id.NewDossierID(),
		Action:    string(audit.EventChecklistFrozen),
	})
	require.NoError(t, err)

	require.Len(t, sink.events(), 1)
	assert.Equal(t, string(audit.EventChecklistFrozen), sink.events()[0].Action)
}

func TestPublisher_MultipleEvents(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	dossierID := id.NewDossierID()

	events := []audit.Event{
		{DossierID: dossierID, Action: string(audit.EventDossierCreated)},
		{DossierID: dossierID, Action: string(audit.EventGuideUploaded)},
		{DossierID: dossierID, Action: string(audit.EventChecklistFrozen)},
	}

	for _, event := range events {
		err := pub.Emit(context.Background(), event)
		require.NoError(t, err)
	}

	result, err := pub.List(context.Background(), dossierID)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, string(audit.EventDossierCreated), result[0].Action)
	assert.Equal(t, string(audit.EventGuideUploaded), result[1].Action)
	assert.Equal(t, string(audit.EventChecklistFrozen), result[2].Action)
}

func TestPublisher_DifferentDossiers(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	dossier1 := id.NewDossierID()
	dossier2 := id.NewDossierID()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		DossierID: dossier1,
		Action:    string(audit.EventDossierCreated),
	}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		DossierID: dossier2,
		Action:    string(audit.EventDocumentUploaded),
	}))

	events1, err := pub.List(context.Background(), dossier1)
	require.NoError(t, err)
	require.Len(t, events1, 1)
	assert.Equal(t, string(audit.EventDossierCreated), events1[0].Action)

	events2, err := pub.List(context.Background(), dossier2)
	require.NoError(t, err)
	require.Len(t, events2, 1)
	assert.Equal(t, string(audit.EventDocumentUploaded), events2[0].Action)
}

type captureSink struct {
	mu       sync.Mutex
	captured []audit.Event
}

func (s *captureSink) Forward(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = append(s.captured, event)
	return nil
}

func (s *captureSink) Close() {}

func (s *captureSink) events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event{}, s.captured...)
}
