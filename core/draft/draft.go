// Package draft defines how in-progress forms are persisted between visits.
package draft

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Key is a versioned storage key. Bump the suffix when the form schema changes
// in a way old drafts cannot be merged into.
type Key string

const (
	AdmissionKey  Key = "tclass_admission_form_draft_v1"
	VocationalKey Key = "tclass_vocational_form_draft_v1"
)

var ErrNotFound = errors.New("draft not found")

// Repository stores one serialized draft per (key, owner).
// Concurrent writers to the same draft race with last-write-wins semantics.
type Repository interface {
	// Load returns ErrNotFound when there is no draft.
	Load(ctx context.Context, key Key, owner string) ([]byte, error)
	Save(ctx context.Context, key Key, owner string, data []byte) error
	// Clear is a no-op when there is no draft.
	Clear(ctx context.Context, key Key, owner string) error
}

// StorageID is the flat identifier of a draft in key/value stores.
func StorageID(key Key, owner string) string {
	return string(key) + ":" + owner
}

// ParseKey accepts either the storage key or the form name ("admission", "vocational").
func ParseKey(s string) (Key, bool) {
	switch strings.TrimSpace(s) {
	case "admission", string(AdmissionKey):
		return AdmissionKey, true
	case "vocational", string(VocationalKey):
		return VocationalKey, true
	}
	return "", false
}
