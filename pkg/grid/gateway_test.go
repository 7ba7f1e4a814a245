package grid

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	*MemoryStore
	failSet bool
	failGet bool
}

func (b *brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	if b.failGet {
		return nil, errors.New("storage offline")
	}
	return b.MemoryStore.Get(ctx, key)
}

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if b.failSet {
		return errors.New("quota exceeded")
	}
	return b.MemoryStore.Set(ctx, key, value)
}

func newTestGateway(store Store, rec *Recorder) (*Gateway, *manualClock) {
	clock := &manualClock{}
	gw := NewGateway(store, true,
		WithNotifier(rec),
		WithDebouncer(NewDebouncerWithClock(DefaultDebounce, clock.AfterFunc)),
	)
	return gw, clock
}

func stored(t *testing.T, store *MemoryStore, key string) Config {
	t.Helper()
	raw, err := store.Get(context.Background(), StorageKey(key))
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, json.Unmarshal(raw, &cfg))
	return cfg
}

func TestGateway_LoadMissingPersistsDefaults(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	gw, _ := newTestGateway(store, &Recorder{})

	cfg := gw.Load(ctx, "clients", reg)
	assert.Equal(t, []string{"id", "client", "status"}, cfg.Visible)
	assert.Equal(t, []string{"id", "client", "status", "notes"}, cfg.Order)
	assert.Equal(t, cfg, stored(t, store, "clients"))
}

func TestGateway_LoadIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	gw, _ := newTestGateway(NewMemoryStore(), &Recorder{})

	first := gw.Load(ctx, "clients", reg)
	second := gw.Load(ctx, "clients", reg)
	assert.Equal(t, first, second)
	assert.True(t, first.Valid(reg))
}

func TestGateway_LoadValidStored(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	want := Config{Visible: []string{"client", "notes"}, Order: []string{"notes", "client", "id", "status"}}
	data, _ := json.Marshal(want)
	require.NoError(t, store.Set(ctx, StorageKey("clients"), data))

	gw, _ := newTestGateway(store, &Recorder{})
	assert.Equal(t, want, gw.Load(ctx, "clients", reg))
}

func TestGateway_LoadStaleFieldGivesFullDefaults(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	stale := Config{Visible: []string{"client", "phone"}, Order: []string{"phone", "client", "id", "status", "notes"}}
	data, _ := json.Marshal(stale)
	require.NoError(t, store.Set(ctx, StorageKey("clients"), data))
	rec := &Recorder{}
	gw, _ := newTestGateway(store, rec)

	cfg := gw.Load(ctx, "clients", reg)
	assert.Equal(t, DefaultConfig(reg), cfg, "not a partially filtered order")
	assert.Equal(t, DefaultConfig(reg), stored(t, store, "clients"))
	assert.Empty(t, rec.Notices(), "structural invalidity is silent")
}

func TestGateway_LoadInvalidShapes(t *testing.T) {
	reg := clientRegistry()
	tests := []struct {
		name       string
		raw        string
		wantNotice bool
	}{
		{"malformed json", `{"visible": [`, true},
		{"wrong types", `{"visible": "id", "order": 3}`, true},
		{"empty visible", `{"visible": [], "order": ["id"]}`, false},
		{"missing order", `{"visible": ["id"]}`, false},
		{"empty object", `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			require.NoError(t, store.Set(ctx, StorageKey("k"), []byte(tt.raw)))
			rec := &Recorder{}
			gw, _ := newTestGateway(store, rec)

			cfg := gw.Load(ctx, "k", reg)
			assert.Equal(t, DefaultConfig(reg), cfg)
			assert.True(t, cfg.Valid(reg))
			if tt.wantNotice {
				require.Len(t, rec.Notices(), 1)
				assert.Equal(t, LevelWarning, rec.Notices()[0].Level)
				assert.Equal(t, NoticeLoadFallback, rec.Notices()[0].Kind)
			} else {
				assert.Empty(t, rec.Notices())
			}
		})
	}
}

func TestGateway_LoadReadErrorFallsBack(t *testing.T) {
	reg := clientRegistry()
	ctx := context.Background()
	mem := NewMemoryStore()
	raw := []byte(`{"visible":["client"],"order":["client","id","status","notes"]}`)
	require.NoError(t, mem.Set(ctx, StorageKey("k"), raw))

	gw, _ := newTestGateway(&brokenStore{MemoryStore: mem, failGet: true}, &Recorder{})
	assert.Equal(t, DefaultConfig(reg), gw.Load(ctx, "k", reg))

	after, err := mem.Get(ctx, StorageKey("k"))
	require.NoError(t, err)
	assert.Equal(t, raw, after)
}

func TestGateway_NotCustomizableNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	gw := NewGateway(store, false)

	cfg := gw.Load(ctx, "clients", reg)
	assert.Equal(t, DefaultConfig(reg), cfg)

	s := Reduce(reg, loadedState(reg), ToggleColumn{Field: "notes"})
	gw.Save(ctx, "clients", reg, s)
	assert.Empty(t, store.Keys())
}

func TestGateway_SaveRequiresTouched(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	rec := &Recorder{}
	gw, clock := newTestGateway(store, rec)

	gw.Save(ctx, "clients", reg, loadedState(reg))
	assert.Empty(t, store.Keys())
	assert.Equal(t, 0, clock.Scheduled())
}

func TestGateway_SaveDebouncesConfirmation(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	rec := &Recorder{}
	gw, clock := newTestGateway(store, rec)

	s := loadedState(reg)
	s = Reduce(reg, s, ToggleColumn{Field: "notes"})
	gw.Save(ctx, "clients", reg, s)
	s = Reduce(reg, s, MoveColumn{Field: "notes", Target: "id"})
	gw.Save(ctx, "clients", reg, s)
	s = Reduce(reg, s, ToggleColumn{Field: "status"})
	gw.Save(ctx, "clients", reg, s)

	assert.Equal(t, s.Config(), stored(t, store, "clients"), "each edit is persisted immediately")
	assert.Equal(t, 0, rec.Count(NoticeSaved), "confirmation waits for the quiet period")

	assert.Equal(t, 1, clock.Fire(), "earlier timers were cancelled")
	assert.Equal(t, 1, rec.Count(NoticeSaved))
}

func TestGateway_SaveFailureNotifies(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	rec := &Recorder{}
	gw, clock := newTestGateway(&brokenStore{MemoryStore: NewMemoryStore(), failSet: true}, rec)

	s := Reduce(reg, loadedState(reg), ToggleColumn{Field: "notes"})
	gw.Save(ctx, "clients", reg, s)

	require.Equal(t, 1, rec.Count(NoticeSaveFailed))
	assert.Equal(t, LevelError, rec.Notices()[0].Level)
	assert.Equal(t, 0, clock.Fire(), "no confirmation after a failed write")
	assert.True(t, s.IsVisible("notes"), "in-memory state stays usable")
}

func TestGateway_SaveSkipsInvalid(t *testing.T) {
	ctx := context.Background()
	reg := peopleRegistry()
	store := NewMemoryStore()
	gw, _ := newTestGateway(store, &Recorder{})

	s := loadedState(reg)
	s = Reduce(reg, s, ToggleColumn{Field: "name"})
	s = Reduce(reg, s, ToggleColumn{Field: "age"})
	gw.Save(ctx, "people", reg, s)
	assert.Empty(t, store.Keys(), "an empty visible set is not a valid config")
}

func TestGateway_ResetOverwritesAndNotifies(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	rec := &Recorder{}
	gw, clock := newTestGateway(store, rec)

	s := Reduce(reg, loadedState(reg), ToggleColumn{Field: "notes"})
	gw.Save(ctx, "clients", reg, s)

	cfg := gw.Reset(ctx, "clients", reg)
	assert.Equal(t, DefaultConfig(reg), cfg)
	assert.True(t, cfg.Valid(reg))
	assert.Equal(t, DefaultConfig(reg), stored(t, store, "clients"))
	assert.Equal(t, 1, rec.Count(NoticeReset))
	assert.Equal(t, 0, clock.Fire(), "reset cancels the pending save confirmation")
}

func TestGateway_CloseCancelsPending(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	rec := &Recorder{}
	gw, clock := newTestGateway(NewMemoryStore(), rec)

	gw.Save(ctx, "clients", reg, Reduce(reg, loadedState(reg), ToggleColumn{Field: "notes"}))
	gw.Close()
	clock.Fire()
	assert.Equal(t, 0, rec.Count(NoticeSaved))
}

func TestGateway_Stored(t *testing.T) {
	ctx := context.Background()
	reg := clientRegistry()
	store := NewMemoryStore()
	gw, _ := newTestGateway(store, &Recorder{})

	_, err := gw.Stored(ctx, "clients")
	assert.ErrorIs(t, err, ErrNotFound)

	gw.Load(ctx, "clients", reg)
	cfg, err := gw.Stored(ctx, "clients")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(reg), cfg)
}
