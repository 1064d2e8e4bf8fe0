// Package settings exposes the persisted configuration as an explicit,
// reloadable snapshot instead of per-call table lookups.
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/replydesk/replydesk/internal/bot"
)

// Snapshot is an immutable view of the fixed setting key set.
type Snapshot struct {
	APIToken      string
	PhoneNumber   string
	PhoneNumberID string
	VerifyToken   string
	Greeting      string
	SMTPServer    string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	AdminEmail    string
}

// Runtime holds the current snapshot and refreshes it on demand. Components
// read via Current; only the settings handler and startup call Reload.
type Runtime struct {
	store bot.SettingsStore

	mu   sync.RWMutex
	snap Snapshot
}

// NewRuntime constructs a Runtime over the settings store. Call Reload before
// first use.
func NewRuntime(store bot.SettingsStore) *Runtime {
	return &Runtime{store: store}
}

// Reload replaces the snapshot with the current table contents.
func (r *Runtime) Reload(ctx context.Context) error {
	values, err := r.store.GetAll(ctx, bot.SettingKeys)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	snap := Snapshot{
		APIToken:      values[bot.SettingAPIToken],
		PhoneNumber:   values[bot.SettingPhoneNumber],
		PhoneNumberID: values[bot.SettingPhoneNumberID],
		VerifyToken:   values[bot.SettingVerifyToken],
		Greeting:      values[bot.SettingGreeting],
		SMTPServer:    values[bot.SettingSMTPServer],
		SMTPPort:      values[bot.SettingSMTPPort],
		SMTPUsername:  values[bot.SettingSMTPUsername],
		SMTPPassword:  values[bot.SettingSMTPPassword],
		AdminEmail:    values[bot.SettingAdminEmail],
	}
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	return nil
}

// Current returns the latest snapshot.
func (r *Runtime) Current() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}
