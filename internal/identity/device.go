package identity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// DeviceKey is the settings key under which the device identity is kept.
const DeviceKey = "mealink_local_user_id"

type settingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Device identifies the user by a UUID persisted on this device. The UUID is
// generated on first use. An authenticated session in the context wins over
// the device identity.
type Device struct {
	log   *slog.Logger
	store settingsStore

	mu     sync.Mutex
	cached uuid.UUID
}

// NewDevice creates a device identity provider backed by store.
func NewDevice(logger *slog.Logger, store settingsStore) *Device {
	return &Device{
		log:   logger.With("component", "identity.device"),
		store: store,
	}
}

// CurrentUserID implements Provider. Store failures are logged and reported
// as an absent user.
func (d *Device) CurrentUserID(ctx context.Context) (uuid.UUID, bool) {
	if id, ok := UserIDFromContext(ctx); ok {
		return id, true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != uuid.Nil {
		return d.cached, true
	}

	raw, found, err := d.store.Get(ctx, DeviceKey)
	if err != nil {
		d.log.WarnContext(ctx, "read device identity", slog.String("error", err.Error()))
		return uuid.Nil, false
	}

	if found {
		id, err := uuid.Parse(raw)
		if err == nil && id != uuid.Nil {
			d.cached = id
			return id, true
		}
		d.log.WarnContext(ctx, "stored device identity is malformed, replacing", slog.String("value", raw))
	}

	id := uuid.New()
	if err := d.store.Set(ctx, DeviceKey, id.String()); err != nil {
		d.log.WarnContext(ctx, "persist device identity", slog.String("error", err.Error()))
		return uuid.Nil, false
	}

	d.log.InfoContext(ctx, "device identity created", slog.String("user_id", id.String()))
	d.cached = id
	return id, true
}
