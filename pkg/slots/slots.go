// Package slots implements numbered save slots for diagram documents.
//
// A store holds at most MaxSlots snapshots under a total byte budget. There
// is no eviction: saving into a full store or past the budget fails with an
// explicit error and the user frees a slot manually. Saved snapshots are
// immutable; loading returns a copy that later edits never touch.
//
// Three backends share the contract: a local file directory for the desktop
// editor, and Redis or MongoDB for shared deployments. Every backend stores
// the same serialized snapshot blob, so quota accounting is identical across
// them.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/plantview/pkg/document"
)

const (
	// MaxSlots is the number of save slots, numbered 1 through MaxSlots.
	MaxSlots = 10

	// DefaultMaxBytes is the total storage budget across all slots.
	DefaultMaxBytes = 5_000_000

	// previewLines and previewChars bound the List preview excerpt.
	previewLines = 3
	previewChars = 100

	// saveAttempts bounds how often the shared backends rescan after losing
	// a slot-claim race. A writer loses at most one race per competing
	// commit, so twice the slot count covers a full contention burst.
	saveAttempts = 2 * MaxSlots
)

// Store errors. Callers branch on these with errors.Is.
var (
	// ErrInvalidSlot means the slot number is outside [1, MaxSlots].
	ErrInvalidSlot = errors.New("slot number out of range")

	// ErrSlotEmpty means the addressed slot holds no snapshot.
	ErrSlotEmpty = errors.New("slot is empty")

	// ErrSlotsFull means every slot is occupied; the user must delete one.
	ErrSlotsFull = errors.New("all slots are full")

	// ErrQuotaExceeded means the save would push total storage past the
	// byte budget.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Slot is a saved document snapshot.
type Slot struct {
	Number   int               `json:"number"`
	Document document.Document `json:"document"`
	SavedAt  time.Time         `json:"saved_at"`
}

// Preview returns a short excerpt of the slot content for listings:
// the first few lines, truncated.
func (s Slot) Preview() string {
	lines := strings.SplitN(s.Document.Content, "\n", previewLines+1)
	if len(lines) > previewLines {
		lines = lines[:previewLines]
	}
	p := strings.Join(lines, " ")
	if r := []rune(p); len(r) > previewChars {
		p = string(r[:previewChars-1]) + "…"
	}
	return p
}

// Store persists document snapshots in numbered slots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save snapshots the document into the lowest empty slot.
	// Returns ErrSlotsFull when no slot is free and ErrQuotaExceeded when
	// the snapshot would exceed the byte budget; in both cases the store
	// is left unchanged.
	Save(ctx context.Context, doc document.Document) (Slot, error)

	// Load returns the snapshot in the given slot.
	// Returns ErrInvalidSlot or ErrSlotEmpty.
	Load(ctx context.Context, number int) (Slot, error)

	// Delete frees the given slot. Deleting an empty slot is a no-op.
	Delete(ctx context.Context, number int) error

	// List returns all occupied slots ordered by slot number.
	List(ctx context.Context) ([]Slot, error)

	// Close releases backend resources.
	Close() error
}

// ValidateNumber checks that a slot number is within [1, MaxSlots].
func ValidateNumber(number int) error {
	if number < 1 || number > MaxSlots {
		return fmt.Errorf("%w: %d (valid: 1-%d)", ErrInvalidSlot, number, MaxSlots)
	}
	return nil
}

// encodeSlot serializes a snapshot. All backends store this blob verbatim,
// which keeps quota accounting byte-identical between them.
func encodeSlot(s Slot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slot %d: %w", s.Number, err)
	}
	return data, nil
}

func decodeSlot(data []byte) (Slot, error) {
	var s Slot
	if err := json.Unmarshal(data, &s); err != nil {
		return Slot{}, fmt.Errorf("failed to decode slot: %w", err)
	}
	return s, nil
}
