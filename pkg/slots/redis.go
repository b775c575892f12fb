package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/plantview/pkg/document"
	"github.com/matzehuels/plantview/pkg/observability"
)

// RedisStore keeps slots in Redis, one key per slot. Suitable for a shared
// server deployment where several editor sessions see the same slots.
type RedisStore struct {
	client   *redis.Client
	maxBytes int
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis at addr and verifies the connection.
// maxBytes <= 0 falls back to DefaultMaxBytes.
func NewRedisStore(ctx context.Context, addr string, maxBytes int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &RedisStore{client: client, maxBytes: maxBytes}, nil
}

func redisKey(number int) string {
	return fmt.Sprintf("plantview:slot:%d", number)
}

func allKeys() []string {
	keys := make([]string, MaxSlots)
	for n := 1; n <= MaxSlots; n++ {
		keys[n-1] = redisKey(n)
	}
	return keys
}

// Save implements Store. The scan and write run under WATCH on all slot
// keys, so a concurrent save cannot claim the same slot or overspend the
// budget: any conflicting write aborts the transaction and the scan is
// retried against fresh state.
func (r *RedisStore) Save(ctx context.Context, doc document.Document) (Slot, error) {
	var (
		slot Slot
		size int
	)
	txn := func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, allKeys()...).Result()
		if err != nil {
			return fmt.Errorf("failed to scan slots: %w", err)
		}

		number, used := 0, 0
		for i, v := range vals {
			if v == nil {
				if number == 0 {
					number = i + 1
				}
				continue
			}
			if s, ok := v.(string); ok {
				used += len(s)
			}
		}
		if number == 0 {
			return ErrSlotsFull
		}

		slot = Slot{Number: number, Document: doc, SavedAt: time.Now().UTC()}
		data, err := encodeSlot(slot)
		if err != nil {
			return err
		}
		if used+len(data) > r.maxBytes {
			return fmt.Errorf("%w: %d + %d bytes over %d", ErrQuotaExceeded, used, len(data), r.maxBytes)
		}
		size = len(data)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey(slot.Number), data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		err := r.client.Watch(ctx, txn, allKeys()...)
		if errors.Is(err, redis.TxFailedErr) {
			// Lost the race to another writer; rescan.
			continue
		}
		if err != nil {
			return Slot{}, err
		}
		observability.Slots().OnSave(ctx, slot.Number, size)
		return slot, nil
	}
	return Slot{}, fmt.Errorf("failed to save: lost the slot race %d times", saveAttempts)
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, number int) (Slot, error) {
	if err := ValidateNumber(number); err != nil {
		return Slot{}, err
	}

	data, err := r.client.Get(ctx, redisKey(number)).Bytes()
	if errors.Is(err, redis.Nil) {
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
func (r *RedisStore) Delete(ctx context.Context, number int) error {
	if err := ValidateNumber(number); err != nil {
		return err
	}
	if err := r.client.Del(ctx, redisKey(number)).Err(); err != nil {
		return fmt.Errorf("failed to delete slot %d: %w", number, err)
	}
	observability.Slots().OnDelete(ctx, number)
	return nil
}

// List implements Store.
func (r *RedisStore) List(ctx context.Context) ([]Slot, error) {
	vals, err := r.client.MGet(ctx, allKeys()...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan slots: %w", err)
	}

	var out []Slot
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		slot, err := decodeSlot([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, nil
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
