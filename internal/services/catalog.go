package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zach2017/oldtownaltour/internal/common"
	"github.com/zach2017/oldtownaltour/internal/logging"
	"github.com/zach2017/oldtownaltour/internal/models"
)

const (
	// InlineLimit is the exclusive upper bound on the size of an upload
	// whose content is kept inline on the attachment.
	InlineLimit int64 = 2 * 1024 * 1024

	// DefaultProgressStep is the pause after each simulated progress
	// milestone of an upload.
	DefaultProgressStep = 60 * time.Millisecond

	// HealthyStatus is the only status Health reports.
	HealthyStatus = "healthy"
)

// LocationStore is the persistence the catalog needs.
type LocationStore interface {
	Load(ctx context.Context) ([]models.Location, bool, error)
	Persist(ctx context.Context, locations []models.Location) error
	NewID(kind models.IDKind) string
	Provider() string
}

type CatalogService interface {
	List(ctx context.Context) ([]models.Location, error)
	Get(ctx context.Context, id string) (*models.Location, error)
	Create(ctx context.Context, in models.LocationInput) (*models.Location, error)
	Update(ctx context.Context, id string, patch models.LocationPatch) (*models.Location, error)
	Delete(ctx context.Context, id string) error
	Attach(ctx context.Context, id string, fd models.FileDescriptor) *Upload
	Detach(ctx context.Context, id, fileID string) error
	Health(ctx context.Context) (models.Health, error)
	Search(ctx context.Context, query string) ([]models.Location, error)
	Stats(ctx context.Context) (models.Stats, error)
	Export(ctx context.Context) (models.ExportEnvelope, error)
	Import(ctx context.Context, records []models.ImportRecord) (models.ImportResult, error)
}

type catalogService struct {
	store   LocationStore
	log     logging.Logger
	encoder ContentEncoder
	step    time.Duration
	now     func() time.Time

	// mu serializes every load-mutate-persist sequence.
	mu sync.Mutex
}

type Option func(*catalogService)

// WithProgressStep sets the pause between upload progress milestones.
func WithProgressStep(d time.Duration) Option {
	return func(s *catalogService) { s.step = d }
}

func WithEncoder(e ContentEncoder) Option {
	return func(s *catalogService) { s.encoder = e }
}

func WithClock(now func() time.Time) Option {
	return func(s *catalogService) { s.now = now }
}

func NewCatalogService(store LocationStore, log logging.Logger, opts ...Option) CatalogService {
	if log == nil {
		log = logging.Nop{}
	}
	s := &catalogService{
		store:   store,
		log:     log,
		encoder: DataURLEncoder{},
		step:    DefaultProgressStep,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensureSeeded returns the stored collection, writing the sample catalog
// first when nothing usable is stored. Callers must hold mu.
func (s *catalogService) ensureSeeded(ctx context.Context) ([]models.Location, error) {
	locations, ok, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return locations, nil
	}

	seed, err := SeedLocations()
	if err != nil {
		return nil, err
	}
	if err := s.store.Persist(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	s.log.Info(ctx, "catalog seeded", "locations", len(seed))
	return seed, nil
}

func (s *catalogService) load(ctx context.Context) ([]models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSeeded(ctx)
}

func indexOf(locations []models.Location, id string) int {
	for i := range locations {
		if locations[i].LocationID == id {
			return i
		}
	}
	return -1
}

func (s *catalogService) List(ctx context.Context) ([]models.Location, error) {
	return s.load(ctx)
}

func (s *catalogService) Get(ctx context.Context, id string) (*models.Location, error) {
	locations, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(locations, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, id)
	}
	return &locations[i], nil
}

func (s *catalogService) Create(ctx context.Context, in models.LocationInput) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locations, err := s.ensureSeeded(ctx)
	if err != nil {
		return nil, err
	}

	loc := models.Location{
		LocationID:  s.store.NewID(models.IDLocation),
		BeaconID:    in.BeaconID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}
	loc.Normalize()

	if err := s.store.Persist(ctx, append(locations, loc)); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}

	s.log.Info(ctx, "location created", "location_id", loc.LocationID, "beacon_id", loc.BeaconID)
	return &loc, nil
}

func (s *catalogService) Update(ctx context.Context, id string, patch models.LocationPatch) (*models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locations, err := s.ensureSeeded(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(locations, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, id)
	}

	patch.Apply(&locations[i])
	if err := s.store.Persist(ctx, locations); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}

	s.log.Info(ctx, "location updated", "location_id", id)
	loc := locations[i]
	return &loc, nil
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locations, err := s.ensureSeeded(ctx)
	if err != nil {
		return err
	}
	i := indexOf(locations, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, id)
	}

	removed := locations[i].FileCount()
	locations = append(locations[:i], locations[i+1:]...)
	if err := s.store.Persist(ctx, locations); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}

	s.log.Info(ctx, "location deleted", "location_id", id, "files_removed", removed)
	return nil
}

func (s *catalogService) Detach(ctx context.Context, id, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locations, err := s.ensureSeeded(ctx)
	if err != nil {
		return err
	}
	i := indexOf(locations, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, id)
	}

	found := false
	for _, c := range models.Categories {
		files := locations[i].Files(c)
		for j, f := range *files {
			if f.FileID == fileID {
				*files = append((*files)[:j], (*files)[j+1:]...)
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", common.ErrFileNotFound, fileID)
	}

	if err := s.store.Persist(ctx, locations); err != nil {
		return fmt.Errorf("detach file: %w", err)
	}

	s.log.Info(ctx, "file detached", "location_id", id, "file_id", fileID)
	return nil
}

func (s *catalogService) Health(ctx context.Context) (models.Health, error) {
	if _, err := s.load(ctx); err != nil {
		return models.Health{}, err
	}
	return models.Health{Status: HealthyStatus, Provider: s.store.Provider()}, nil
}

// Search returns the locations whose beacon id, name or description
// contains query, ignoring case. An empty query matches everything.
func (s *catalogService) Search(ctx context.Context, query string) ([]models.Location, error) {
	locations, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return locations, nil
	}

	out := make([]models.Location, 0, len(locations))
	for _, l := range locations {
		if strings.Contains(strings.ToLower(l.BeaconID), q) ||
			strings.Contains(strings.ToLower(l.Name), q) ||
			strings.Contains(strings.ToLower(l.Description), q) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *catalogService) Stats(ctx context.Context) (models.Stats, error) {
	locations, err := s.load(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	st := models.Stats{Locations: len(locations)}
	for _, l := range locations {
		st.AudioFiles += len(l.AudioFiles)
		st.VideoFiles += len(l.VideoFiles)
		st.TextFiles += len(l.TextFiles)
	}
	return st, nil
}

func (s *catalogService) Export(ctx context.Context) (models.ExportEnvelope, error) {
	locations, err := s.load(ctx)
	if err != nil {
		return models.ExportEnvelope{}, err
	}
	return models.NewExportEnvelope(locations, s.now().UTC().Truncate(time.Millisecond)), nil
}

// Import creates one location per record. A record that fails to persist
// is counted and the rest are still attempted; only a cancelled context
// stops the run early.
func (s *catalogService) Import(ctx context.Context, records []models.ImportRecord) (models.ImportResult, error) {
	var res models.ImportResult
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := s.Create(ctx, models.LocationInput{BeaconID: r.BeaconID, Name: r.Name, Description: r.Description})
		if err != nil {
			s.log.Warn(ctx, "import record failed", "beacon_id", r.BeaconID, "err", err)
			res.Failed++
			continue
		}
		res.Imported++
	}
	s.log.Info(ctx, "import finished", "imported", res.Imported, "failed", res.Failed)
	return res, nil
}

// persistAttachment appends f to the location in a freshly loaded
// collection. If the write exceeds the quota the content is dropped and
// the write is retried once.
func (s *catalogService) persistAttachment(ctx context.Context, id string, f models.FileAttachment) (models.FileAttachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locations, err := s.ensureSeeded(ctx)
	if err != nil {
		return f, err
	}
	i := indexOf(locations, id)
	if i < 0 {
		return f, fmt.Errorf("%w: %s", common.ErrorNotFound, id)
	}

	files := locations[i].Files(f.Type)
	*files = append(*files, f)
	last := len(*files) - 1

	err = s.store.Persist(ctx, locations)
	if errors.Is(err, common.ErrQuotaExceeded) {
		s.log.Warn(ctx, "quota exceeded, storing attachment without content",
			"location_id", id, "file_id", f.FileID, "size", f.Size)
		f.URL = models.SentinelURL
		(*files)[last] = f
		err = s.store.Persist(ctx, locations)
	}
	if err != nil {
		return f, fmt.Errorf("attach file: %w", err)
	}
	return f, nil
}
