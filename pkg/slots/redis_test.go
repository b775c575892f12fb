package slots

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/matzehuels/plantview/pkg/document"
)

// Redis tests need a live server; set PLANTVIEW_REDIS_ADDR to run them, e.g.
//
//	PLANTVIEW_REDIS_ADDR=localhost:6379 go test ./pkg/slots
func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("PLANTVIEW_REDIS_ADDR")
	if addr == "" {
		t.Skip("PLANTVIEW_REDIS_ADDR not set")
	}

	store, err := NewRedisStore(context.Background(), addr, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	clearStore(t, store)
	t.Cleanup(func() {
		clearStore(t, store)
		store.Close()
	})
	return store
}

func clearStore(t *testing.T, store Store) {
	t.Helper()
	for n := 1; n <= MaxSlots; n++ {
		if err := store.Delete(context.Background(), n); err != nil {
			t.Fatalf("Delete(%d) error: %v", n, err)
		}
	}
}

func TestRedisSaveLoadRoundTrip(t *testing.T) {
	store := newRedisTestStore(t)
	ctx := context.Background()

	doc := document.New("@startuml\nAlice->Bob:Hi\n@enduml")
	saved, err := store.Save(ctx, doc)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load(ctx, saved.Number)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Document.ID != doc.ID || loaded.Document.Content != doc.Content {
		t.Errorf("loaded document differs from saved snapshot")
	}
}

func TestRedisConcurrentSavesClaimDistinctSlots(t *testing.T) {
	store := newRedisTestStore(t)
	testConcurrentSaves(t, store)
}

// testConcurrentSaves fills every slot from parallel writers and checks that
// no slot number was handed out twice.
func testConcurrentSaves(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int]int)
	)
	for i := 0; i < MaxSlots; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slot, err := store.Save(ctx, document.New(fmt.Sprintf("@startuml\nwriter %d\n@enduml", i)))
			if err != nil {
				t.Errorf("Save() error: %v", err)
				return
			}
			mu.Lock()
			seen[slot.Number]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if len(seen) != MaxSlots {
		t.Errorf("distinct slots = %d, want %d", len(seen), MaxSlots)
	}
	for n, count := range seen {
		if count != 1 {
			t.Errorf("slot %d claimed %d times, want 1", n, count)
		}
	}

	if _, err := store.Save(ctx, document.New("@startuml\noverflow\n@enduml")); !errors.Is(err, ErrSlotsFull) {
		t.Errorf("Save() into a full store error = %v, want ErrSlotsFull", err)
	}
}
