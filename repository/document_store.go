package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document names shared by every store backend
const (
	SettingsDocument      = "settings"
	ReactionRolesDocument = "reactionRoles"
	InviteTrackerDocument = "inviteTracker"
)

// DocumentNames lists every document the bot persists
var DocumentNames = []string{SettingsDocument, ReactionRolesDocument, InviteTrackerDocument}

// DocumentStore persists whole JSON documents by name
type DocumentStore interface {
	// Load returns the stored bytes, or nil when the document was never saved
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the document atomically
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// jsonDocument reads and writes one named document of type T
type jsonDocument[T any] struct {
	store DocumentStore
	name  string
}

// load decodes the stored document into dst. A missing or empty document
// leaves dst untouched.
func (d jsonDocument[T]) load(ctx context.Context, dst *T) error {
	data, err := d.store.Load(ctx, d.name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", d.name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", d.name, err)
	}
	return nil
}

// flush encodes value and saves it over the previous document
func (d jsonDocument[T]) flush(ctx context.Context, value T) error {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.name, err)
	}
	if err := d.store.Save(ctx, d.name, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", d.name, err)
	}
	return nil
}
