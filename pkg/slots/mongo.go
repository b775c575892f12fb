package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/plantview/pkg/document"
	"github.com/matzehuels/plantview/pkg/observability"
)

const (
	mongoDatabase   = "plantview"
	mongoCollection = "slots"
)

// slotRecord is the persisted shape. The snapshot travels as the shared
// serialized blob so quota accounting matches the other backends.
type slotRecord struct {
	Number  int       `bson:"_id"`
	Data    []byte    `bson:"data"`
	SavedAt time.Time `bson:"saved_at"`
}

// MongoStore keeps slots in a MongoDB collection, one record per slot.
type MongoStore struct {
	client   *mongo.Client
	coll     *mongo.Collection
	maxBytes int
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB at uri and verifies the connection.
// maxBytes <= 0 falls back to DefaultMaxBytes.
func NewMongoStore(ctx context.Context, uri string, maxBytes int) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &MongoStore{
		client:   client,
		coll:     client.Database(mongoDatabase).Collection(mongoCollection),
		maxBytes: maxBytes,
	}, nil
}

// Save implements Store. The lowest free slot is claimed with an insert on
// the slot-number primary key: a concurrent writer claiming the same slot
// produces a duplicate key error, and the scan is retried against fresh
// state (including a fresh quota check).
func (m *MongoStore) Save(ctx context.Context, doc document.Document) (Slot, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		records, err := m.fetchAll(ctx)
		if err != nil {
			return Slot{}, err
		}

		occupied := make(map[int]bool, len(records))
		used := 0
		for _, rec := range records {
			occupied[rec.Number] = true
			used += len(rec.Data)
		}
		number := 0
		for n := 1; n <= MaxSlots; n++ {
			if !occupied[n] {
				number = n
				break
			}
		}
		if number == 0 {
			return Slot{}, ErrSlotsFull
		}

		slot := Slot{Number: number, Document: doc, SavedAt: time.Now().UTC()}
		data, err := encodeSlot(slot)
		if err != nil {
			return Slot{}, err
		}
		if used+len(data) > m.maxBytes {
			return Slot{}, fmt.Errorf("%w: %d + %d bytes over %d", ErrQuotaExceeded, used, len(data), m.maxBytes)
		}

		rec := slotRecord{Number: number, Data: data, SavedAt: slot.SavedAt}
		if _, err := m.coll.InsertOne(ctx, rec); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost the race to another writer; rescan.
				continue
			}
			return Slot{}, fmt.Errorf("failed to write slot %d: %w", number, err)
		}
		observability.Slots().OnSave(ctx, number, len(data))
		return slot, nil
	}
	return Slot{}, fmt.Errorf("failed to save: lost the slot race %d times", saveAttempts)
}

func (m *MongoStore) fetchAll(ctx context.Context) ([]slotRecord, error) {
	cur, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to scan slots: %w", err)
	}
	defer cur.Close(ctx)

	var records []slotRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to scan slots: %w", err)
	}
	return records, nil
}

// Load implements Store.
func (m *MongoStore) Load(ctx context.Context, number int) (Slot, error) {
	if err := ValidateNumber(number); err != nil {
		return Slot{}, err
	}

	var rec slotRecord
	err := m.coll.FindOne(ctx, bson.M{"_id": number}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Slot{}, fmt.Errorf("%w: %d", ErrSlotEmpty, number)
	}
	if err != nil {
		return Slot{}, fmt.Errorf("failed to read slot %d: %w", number, err)
	}

	slot, err := decodeSlot(rec.Data)
	if err != nil {
		return Slot{}, err
	}
	observability.Slots().OnLoad(ctx, number)
	return slot, nil
}

// Delete implements Store.
func (m *MongoStore) Delete(ctx context.Context, number int) error {
	if err := ValidateNumber(number); err != nil {
		return err
	}
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": number}); err != nil {
		return fmt.Errorf("failed to delete slot %d: %w", number, err)
	}
	observability.Slots().OnDelete(ctx, number)
	return nil
}

// List implements Store.
func (m *MongoStore) List(ctx context.Context) ([]Slot, error) {
	records, err := m.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Slot, 0, len(records))
	for _, rec := range records {
		slot, err := decodeSlot(rec.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, nil
}

// Close implements Store.
func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}
