package slots

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/plantview/pkg/document"
	"github.com/matzehuels/plantview/pkg/observability"
)

// FileStore keeps each slot as a JSON file under a directory.
// This is the default backend for the desktop editor.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	maxBytes int
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed. maxBytes <= 0 falls back to DefaultMaxBytes.
func NewFileStore(dir string, maxBytes int) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

func (f *FileStore) path(number int) string {
	return filepath.Join(f.dir, fmt.Sprintf("slot_%d.json", number))
}

// Save implements Store.
func (f *FileStore) Save(ctx context.Context, doc document.Document) (Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	number, used, err := f.scan()
	if err != nil {
		return Slot{}, err
	}
	if number == 0 {
		return Slot{}, ErrSlotsFull
	}

	slot := Slot{Number: number, Document: doc, SavedAt: time.Now().UTC()}
	data, err := encodeSlot(slot)
	if err != nil {
		return Slot{}, err
	}
	if used+len(data) > f.maxBytes {
		return Slot{}, fmt.Errorf("%w: %d + %d bytes over %d", ErrQuotaExceeded, used, len(data), f.maxBytes)
	}

	if err := os.WriteFile(f.path(number), data, 0o644); err != nil {
		return Slot{}, fmt.Errorf("failed to write slot %d: %w", number, err)
	}
	observability.Slots().OnSave(ctx, number, len(data))
	return slot, nil
}

// scan walks the slot files once, returning the lowest empty slot number
// (0 when full) and the total bytes in use. Caller holds the lock.
func (f *FileStore) scan() (lowest int, used int, err error) {
	for n := 1; n <= MaxSlots; n++ {
		info, serr := os.Stat(f.path(n))
		if errors.Is(serr, fs.ErrNotExist) {
			if lowest == 0 {
				lowest = n
			}
			continue
		}
		if serr != nil {
			return 0, 0, fmt.Errorf("failed to stat slot %d: %w", n, serr)
		}
		used += int(info.Size())
	}
	return lowest, used, nil
}

// Load implements Store.
func (f *FileStore) Load(ctx context.Context, number int) (Slot, error) {
	if err := ValidateNumber(number); err != nil {
		return Slot{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(number))
	if errors.Is(err, fs.ErrNotExist) {
		return Slot{}, fmt.Errorf("%w: %d", ErrSlotEmpty, number)
	}
	if err != nil {
		return Slot{}, fmt.Errorf("failed to read slot %d: %w", number, err)
	}

	slot, err := decodeSlot(data)
	if err != nil {
		return Slot{}, err
	}
	observability.Slots().OnLoad(ctx, number)
	return slot, nil
}

// Delete implements Store.
func (f *FileStore) Delete(ctx context.Context, number int) error {
	if err := ValidateNumber(number); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(number)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete slot %d: %w", number, err)
	}
	observability.Slots().OnDelete(ctx, number)
	return nil
}

// List implements Store.
func (f *FileStore) List(ctx context.Context) ([]Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Slot
	for n := 1; n <= MaxSlots; n++ {
		data, err := os.ReadFile(f.path(n))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read slot %d: %w", n, err)
		}
		slot, err := decodeSlot(data)
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, nil
}

// Close implements Store. File handles are not held open, so this is a no-op.
func (f *FileStore) Close() error { return nil }
