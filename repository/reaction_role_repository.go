package repository

import (
	"context"
	"fmt"
	"sync"

	"guildkeeper/models"
)

// guildReactionRoles maps message id to its ordered bindings
type guildReactionRoles map[string][]models.ReactionRoleBinding

// ReactionRoleRepository stores reaction-role bindings per guild and message
type ReactionRoleRepository struct {
	mu     sync.RWMutex
	doc    jsonDocument[map[string]guildReactionRoles]
	guilds map[string]guildReactionRoles
}

// NewReactionRoleRepository loads the bindings document from store
func NewReactionRoleRepository(ctx context.Context, store DocumentStore) (*ReactionRoleRepository, error) {
	r := &ReactionRoleRepository{
		doc:    jsonDocument[map[string]guildReactionRoles]{store: store, name: ReactionRolesDocument},
		guilds: make(map[string]guildReactionRoles),
	}
	if err := r.doc.load(ctx, &r.guilds); err != nil {
		return nil, err
	}
	if r.guilds == nil {
		r.guilds = make(map[string]guildReactionRoles)
	}
	for guildID, guild := range r.guilds {
		if guild == nil {
			r.guilds[guildID] = make(guildReactionRoles)
		}
	}
	return r, nil
}

// Get returns a copy of the message's bindings, or nil when the message is
// not registered
func (r *ReactionRoleRepository) Get(ctx context.Context, guildID, messageID string) (*models.ReactionRoleMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bindings, ok := r.guilds[guildID][messageID]
	if !ok {
		return nil, nil
	}

	return &models.ReactionRoleMessage{
		GuildID:   guildID,
		MessageID: messageID,
		Bindings:  append([]models.ReactionRoleBinding(nil), bindings...),
	}, nil
}

// AddBinding appends a binding to the message, registering the message if
// needed. A second binding for the same emoji is rejected with
// models.ErrDuplicateEmoji.
func (r *ReactionRoleRepository) AddBinding(ctx context.Context, guildID, messageID string, binding models.ReactionRoleBinding) error {
	if binding.Emoji == "" || binding.RoleID == "" {
		return fmt.Errorf("binding needs both an emoji and a role")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	guild := r.guilds[guildID]
	if guild == nil {
		guild = make(guildReactionRoles)
		r.guilds[guildID] = guild
	}

	for _, existing := range guild[messageID] {
		if existing.Emoji == binding.Emoji {
			return fmt.Errorf("message %s emoji %s: %w", messageID, binding.Emoji, models.ErrDuplicateEmoji)
		}
	}

	guild[messageID] = append(guild[messageID], binding)
	return r.doc.flush(ctx, r.guilds)
}

// Count returns how many messages of the guild carry bindings
func (r *ReactionRoleRepository) Count(ctx context.Context, guildID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.guilds[guildID]), nil
}
