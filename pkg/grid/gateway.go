package grid

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-logr/logr"
)

// Gateway mediates between a table's column config and durable storage. It
// guarantees that whatever it returns is valid for the registry it was given.
type Gateway struct {
	store        Store
	notifier     Notifier
	customizable bool
	log          logr.Logger
	debounce     *Debouncer
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithNotifier sets where save, reset and fallback notices go.
func WithNotifier(n Notifier) GatewayOption {
	return func(g *Gateway) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithLogger sets the gateway's logger.
func WithLogger(l logr.Logger) GatewayOption {
	return func(g *Gateway) {
		g.log = l
	}
}

// WithDebouncer replaces the save-confirmation debouncer.
func WithDebouncer(d *Debouncer) GatewayOption {
	return func(g *Gateway) {
		if d != nil {
			g.debounce = d
		}
	}
}

// WithDebounceDelay sets the quiet period before a save confirmation.
func WithDebounceDelay(delay time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.debounce = NewDebouncer(delay)
	}
}

// NewGateway builds a gateway over store. When customizable is false the
// store is never touched and defaults are computed on every load.
func NewGateway(store Store, customizable bool, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:        store,
		notifier:     discardNotifier{},
		customizable: customizable && store != nil,
		log:          logr.Discard(),
	}
	for _, o := range opts {
		o(g)
	}
	if g.debounce == nil {
		g.debounce = NewDebouncer(DefaultDebounce)
	}
	return g
}

// detached returns a copy that shares the notifier and debouncer but never
// reads or writes storage.
func (g *Gateway) detached() *Gateway {
	c := *g
	c.customizable = false
	return &c
}

// Customizable reports whether the gateway reads and writes storage.
func (g *Gateway) Customizable() bool {
	return g.customizable
}

// Load returns the stored config for storageKey when it is valid for reg.
// Missing, corrupt or stale entries are replaced by the defaults, which are
// written back before returning. A read error yields the defaults without
// touching storage. Only a decode failure is surfaced to the user.
func (g *Gateway) Load(ctx context.Context, storageKey string, reg *Registry) Config {
	def := DefaultConfig(reg)
	if !g.customizable {
		return def
	}
	key := StorageKey(storageKey)
	log := g.log.WithValues("storage_key", storageKey)

	raw, err := g.store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		log.V(1).Info("no stored table config, using defaults")
		g.persist(ctx, key, def, log)
		return def
	case err != nil:
		// the entry may still be good; leave it for the next load
		log.Error(err, "reading table config failed, using defaults")
		return def
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Error(err, "stored table config is not valid JSON, resetting")
		g.notifier.Notify(Notice{
			Level:   LevelWarning,
			Kind:    NoticeLoadFallback,
			Message: "Saved column settings could not be read; defaults restored",
		})
		g.persist(ctx, key, def, log)
		return def
	}
	if !cfg.Valid(reg) {
		log.V(1).Info("stored table config does not match columns, resetting",
			"visible", cfg.Visible, "order", cfg.Order)
		g.persist(ctx, key, def, log)
		return def
	}
	log.V(1).Info("loaded table config", "visible", cfg.Visible, "order", cfg.Order)
	return cfg
}

// Save persists the column config of s when customization is on and s was
// changed by the user since it was loaded. A successful write schedules one
// debounced confirmation; a failed write is reported immediately.
func (g *Gateway) Save(ctx context.Context, storageKey string, reg *Registry, s State) {
	if !g.customizable || !s.Touched {
		return
	}
	cfg := s.Config()
	log := g.log.WithValues("storage_key", storageKey)
	if !cfg.Valid(reg) {
		log.V(1).Info("not saving invalid table config", "visible", cfg.Visible, "order", cfg.Order)
		return
	}
	if err := g.write(ctx, StorageKey(storageKey), cfg); err != nil {
		log.Error(err, "saving table config failed")
		g.notifier.Notify(Notice{
			Level:   LevelError,
			Kind:    NoticeSaveFailed,
			Message: "Column settings could not be saved",
		})
		return
	}
	log.V(1).Info("saved table config", "visible", cfg.Visible, "order", cfg.Order)
	g.debounce.Trigger(func() {
		g.notifier.Notify(Notice{
			Level:   LevelSuccess,
			Kind:    NoticeSaved,
			Message: "Column settings saved",
		})
	})
}

// Reset restores the defaults for reg, overwriting storage when customizable.
func (g *Gateway) Reset(ctx context.Context, storageKey string, reg *Registry) Config {
	def := DefaultConfig(reg)
	g.debounce.Cancel()
	if g.customizable {
		g.persist(ctx, StorageKey(storageKey), def, g.log.WithValues("storage_key", storageKey))
	}
	g.log.V(1).Info("reset table config", "storage_key", storageKey)
	g.notifier.Notify(Notice{
		Level:   LevelInfo,
		Kind:    NoticeReset,
		Message: "Column settings reset to default",
	})
	return def
}

// Stored returns the raw persisted config without validation or repair.
func (g *Gateway) Stored(ctx context.Context, storageKey string) (Config, error) {
	var cfg Config
	if g.store == nil {
		return cfg, ErrNotFound
	}
	raw, err := g.store.Get(ctx, StorageKey(storageKey))
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Close cancels any pending confirmation. Call it on teardown. The gateway
// stays usable for a later mount.
func (g *Gateway) Close() {
	g.debounce.Cancel()
}

func (g *Gateway) persist(ctx context.Context, key string, cfg Config, log logr.Logger) {
	if err := g.write(ctx, key, cfg); err != nil {
		log.Error(err, "writing default table config failed")
	}
}

func (g *Gateway) write(ctx context.Context, key string, cfg Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return g.store.Set(ctx, key, data)
}
