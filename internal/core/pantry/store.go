package pantry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Item is one pantry entry. The id is assigned server-side on insert.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Quantity   string `json:"quantity,omitempty"`
	Unit       string `json:"unit,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

// document is the per-user record stored as one JSON value.
type document struct {
	UserID      string    `json:"userId"`
	Items       []Item    `json:"items"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Store keeps one pantry document per user in Redis. The connection is
// established lazily on first use so an unreachable Redis delays nothing at
// startup; an unconfigured one puts the store into a permanent degraded mode
// where every call returns ErrStoreUnavailable.
type Store struct {
	cfg config.RedisConfig

	initOnce sync.Once
	client   *redis.Client
	initErr  error
}

// NewStore creates a pantry store. No connection is made here.
func NewStore(cfg config.RedisConfig) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) connect(ctx context.Context) (*redis.Client, error) {
	s.initOnce.Do(func() {
		if s.cfg.Addr == "" {
			s.initErr = common.ErrStoreUnavailable
			common.LogWarn("pantry store not configured, running without persistence")
			return
		}

		client := redis.NewClient(&redis.Options{
			Addr:     s.cfg.Addr,
			Password: s.cfg.Password,
			DB:       s.cfg.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			common.LogError("pantry store connection failed",
				zap.String("addr", s.cfg.Addr),
				zap.Error(err),
			)
			s.initErr = fmt.Errorf("pantry store connection failed: %w", err)
			return
		}

		common.LogInfo("pantry store connected", zap.String("addr", s.cfg.Addr))
		s.client = client
	})

	if s.initErr != nil {
		return nil, s.initErr
	}
	return s.client, nil
}

func pantryKey(userID string) string {
	return "pantry:" + userID
}

func (s *Store) load(ctx context.Context, userID string) (*document, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := client.Get(ctx, pantryKey(userID)).Result()
	if err == redis.Nil {
		return &document{UserID: userID, Items: []Item{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pantry: %w", err)
	}

	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode pantry: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	return &doc, nil
}

func (s *Store) save(ctx context.Context, doc *document) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}

	doc.LastUpdated = time.Now().UTC()
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode pantry: %w", err)
	}

	if err := client.Set(ctx, pantryKey(doc.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save pantry: %w", err)
	}
	return nil
}

// List returns the user's pantry items and when they last changed. Users never
// seen before get an empty list and a zero timestamp.
func (s *Store) List(ctx context.Context, userID string) ([]Item, time.Time, error) {
	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	return doc.Items, doc.LastUpdated, nil
}

// Add inserts items with set semantics: an item whose name, quantity, unit and
// expiry all match an existing entry is skipped. New items get fresh ids.
func (s *Store) Add(ctx context.Context, userID string, items []Item) ([]Item, error) {
	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.Name == "" {
			continue
		}
		if containsItem(doc.Items, item) {
			continue
		}
		item.ID = uuid.NewString()
		doc.Items = append(doc.Items, item)
	}

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Update replaces the fields of the item with the given id. A missing id is
// reported as not found.
func (s *Store) Update(ctx context.Context, userID string, item Item) ([]Item, error) {
	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range doc.Items {
		if doc.Items[i].ID == item.ID {
			item.ID = doc.Items[i].ID
			doc.Items[i] = item
			found = true
			break
		}
	}
	if !found {
		return nil, common.ErrNotFound
	}

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Delete removes the item with the given id. Deleting an absent id is a no-op.
func (s *Store) Delete(ctx context.Context, userID, itemID string) ([]Item, error) {
	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := doc.Items[:0]
	for _, item := range doc.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	doc.Items = kept

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Close releases the Redis connection if one was established.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func containsItem(items []Item, candidate Item) bool {
	for _, item := range items {
		if item.Name == candidate.Name &&
			item.Quantity == candidate.Quantity &&
			item.Unit == candidate.Unit &&
			item.ExpiryDate == candidate.ExpiryDate {
			return true
		}
	}
	return false
}
