package item

import (
	"strings"

	"github.com/google/uuid"
)

// IDMinter issues unique item ids.
//
// Implementations MUST be safe for concurrent use and MUST never return the
// same id twice.
type IDMinter interface {
	NewID() string
}

// UUIDMinter mints ids from random (v4) UUIDs rendered as 32 hex characters.
type UUIDMinter struct{}

// NewUUIDMinter returns an IDMinter backed by github.com/google/uuid.
func NewUUIDMinter() UUIDMinter { return UUIDMinter{} }

// NewID returns a fresh id.
//
// Postcondition: len(result) == 32.
func (UUIDMinter) NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ReplaceIDs returns a deep copy of t in which every node gets a fresh id and
// every parent reference inside the tree is remapped. References to parents
// outside the tree (the root's parent) are preserved.
//
// Postcondition: result.Shape() equals t.Shape(); no id of t appears in result.
func ReplaceIDs(t Tree, m IDMinter) Tree {
	out := t.Clone()
	remap := make(map[string]string, len(out))
	for i := range out {
		fresh := m.NewID()
		remap[out[i].ID] = fresh
		out[i].ID = fresh
	}
	for i := range out {
		if p, ok := remap[out[i].ParentID]; ok {
			out[i].ParentID = p
		}
	}
	return out
}

// Reparent returns a copy of t with fresh ids where the root takes rootID and
// the root's parent and slot are set to parentID and slot. Empty parentID
// detaches the root.
//
// Precondition: len(t) > 0.
// Postcondition: result[0].ID == rootID; result.Validate() == nil when t was valid.
func Reparent(t Tree, rootID, parentID string, slot SlotID, m IDMinter) Tree {
	out := ReplaceIDs(t, m)
	oldRoot := out[0].ID
	out[0].ID = rootID
	out[0].ParentID = parentID
	out[0].SlotID = slot
	for i := 1; i < len(out); i++ {
		if out[i].ParentID == oldRoot {
			out[i].ParentID = rootID
		}
	}
	return out
}
