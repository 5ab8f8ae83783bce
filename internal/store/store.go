// Package store persists the tour catalog as a single JSON document under
// one key of a key-value medium and mints location and file identifiers.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zach2017/oldtownaltour/internal/logging"
	"github.com/zach2017/oldtownaltour/internal/models"
	"github.com/zach2017/oldtownaltour/internal/repositories/kv"
)

// DefaultKey is the storage key the catalog lives under.
const DefaultKey = "oat-tour-locations"

const randomLen = 6

// Store reads and writes the whole location collection at once.
type Store struct {
	repo     kv.Repository
	key      string
	provider string
	now      func() time.Time
	newUUID  func() uuid.UUID
	log      logging.Logger
}

type Option func(*Store)

// WithClock replaces time.Now for identifier minting.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithUUIDSource replaces uuid.New as the source of random id suffixes.
func WithUUIDSource(fn func() uuid.UUID) Option {
	return func(s *Store) { s.newUUID = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New binds a store to repo. An empty key selects DefaultKey.
func New(repo kv.Repository, key, provider string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		repo:     repo,
		key:      key,
		provider: provider,
		now:      time.Now,
		newUUID:  uuid.New,
		log:      logging.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider names the medium behind the store.
func (s *Store) Provider() string { return s.provider }

// Key returns the storage key.
func (s *Store) Key() string { return s.key }

// Load returns the persisted collection. ok is false when nothing has been
// stored yet or the stored payload cannot be decoded; callers treat both
// as "no collection" and reseed. Read failures of the medium are returned
// as errors.
func (s *Store) Load(ctx context.Context) ([]models.Location, bool, error) {
	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", s.key, err)
	}
	if raw == nil {
		return nil, false, nil
	}

	var locations []models.Location
	if err := json.Unmarshal(raw, &locations); err != nil || locations == nil {
		s.log.Warn(ctx, "stored catalog is unreadable, treating as empty", "key", s.key, "err", err)
		return nil, false, nil
	}

	for i := range locations {
		locations[i].Normalize()
	}
	return locations, true, nil
}

// Persist replaces the stored collection with locations. On failure the
// previous value is left in place; quota failures wrap
// common.ErrQuotaExceeded.
func (s *Store) Persist(ctx context.Context, locations []models.Location) error {
	if locations == nil {
		locations = []models.Location{}
	}
	raw, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := s.repo.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	s.log.Debug(ctx, "catalog persisted", "key", s.key, "locations", len(locations), "bytes", len(raw))
	return nil
}

// NewID mints "<prefix>_<time36>_<random6>" where time36 is the current
// Unix time in milliseconds in base 36.
func (s *Store) NewID(kind models.IDKind) string {
	ts := strconv.FormatInt(s.now().UnixMilli(), 36)
	return string(kind) + "_" + ts + "_" + s.randomSuffix()
}

func (s *Store) randomSuffix() string {
	u := s.newUUID()
	r := strconv.FormatUint(binary.BigEndian.Uint64(u[8:]), 36)
	if len(r) < randomLen {
		r = strings.Repeat("0", randomLen-len(r)) + r
	}
	return r[len(r)-randomLen:]
}
