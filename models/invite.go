package models

// Invite is one entry of a freshly fetched invite list
type Invite struct {
	Code        string
	Uses        int
	InviterID   string // Empty when the platform reports no inviter
	InviterName string
}

// InviteSnapshotEntry is the stored baseline for one invite code
type InviteSnapshotEntry struct {
	Uses      int     `json:"uses"`
	InviterID *string `json:"inviterId"`
}

// InviteSnapshot is the last known invite list of a guild, keyed by code
type InviteSnapshot map[string]InviteSnapshotEntry

// SnapshotFromInvites builds a snapshot from a fetched invite list
func SnapshotFromInvites(invites []Invite) InviteSnapshot {
	snapshot := make(InviteSnapshot, len(invites))
	for _, inv := range invites {
		entry := InviteSnapshotEntry{Uses: inv.Uses}
		if inv.InviterID != "" {
			id := inv.InviterID
			entry.InviterID = &id
		}
		snapshot[inv.Code] = entry
	}
	return snapshot
}

// Clone returns a copy of the snapshot
func (s InviteSnapshot) Clone() InviteSnapshot {
	c := make(InviteSnapshot, len(s))
	for code, entry := range s {
		if entry.InviterID != nil {
			id := *entry.InviterID
			entry.InviterID = &id
		}
		c[code] = entry
	}
	return c
}
