package repository

import (
	"context"
	"sync"

	"guildkeeper/models"
)

// GuildSettingsRepository holds every guild's settings in memory and writes
// the whole settings document on each change
type GuildSettingsRepository struct {
	mu       sync.RWMutex
	doc      jsonDocument[map[string]*models.GuildSettings]
	settings map[string]*models.GuildSettings
}

// NewGuildSettingsRepository loads the settings document from store
func NewGuildSettingsRepository(ctx context.Context, store DocumentStore) (*GuildSettingsRepository, error) {
	r := &GuildSettingsRepository{
		doc:      jsonDocument[map[string]*models.GuildSettings]{store: store, name: SettingsDocument},
		settings: make(map[string]*models.GuildSettings),
	}
	if err := r.doc.load(ctx, &r.settings); err != nil {
		return nil, err
	}
	if r.settings == nil {
		r.settings = make(map[string]*models.GuildSettings)
	}
	for guildID, s := range r.settings {
		if s == nil {
			s = models.DefaultGuildSettings(guildID)
			r.settings[guildID] = s
		}
		s.GuildID = guildID
	}
	return r, nil
}

// GetOrCreate returns a copy of the guild's settings. A guild seen for the
// first time gets the defaults, which are persisted before returning.
func (r *GuildSettingsRepository) GetOrCreate(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	r.mu.RLock()
	if s, ok := r.settings[guildID]; ok {
		defer r.mu.RUnlock()
		return s.Clone(), nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another handler may have created it in between
	if s, ok := r.settings[guildID]; ok {
		return s.Clone(), nil
	}

	s := models.DefaultGuildSettings(guildID)
	r.settings[guildID] = s
	if err := r.doc.flush(ctx, r.settings); err != nil {
		return s.Clone(), err
	}
	return s.Clone(), nil
}

// Update replaces the stored settings for settings.GuildID and flushes
func (r *GuildSettingsRepository) Update(ctx context.Context, settings *models.GuildSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[settings.GuildID] = settings.Clone()
	return r.doc.flush(ctx, r.settings)
}
