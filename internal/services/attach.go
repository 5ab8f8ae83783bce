package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zach2017/oldtownaltour/internal/common"
	"github.com/zach2017/oldtownaltour/internal/models"
)

// progressMilestones are reported while an upload is prepared; 100 follows
// once the attachment is durably recorded.
var progressMilestones = []int{0, 20, 40, 60, 80}

// Upload is a running attach task.
type Upload struct {
	progress chan int
	done     chan struct{}
	file     *models.FileAttachment
	err      error
}

func newUpload() *Upload {
	return &Upload{
		// room for every milestone plus the final 100, so the task never
		// blocks on a caller that does not read progress
		progress: make(chan int, len(progressMilestones)+1),
		done:     make(chan struct{}),
	}
}

// Progress yields non-decreasing percentages and is closed when the task
// ends. 100 is sent exactly once, and only on success.
func (u *Upload) Progress() <-chan int { return u.progress }

// Done is closed after the task has finished.
func (u *Upload) Done() <-chan struct{} { return u.done }

// Wait blocks until the task finishes and returns the recorded attachment.
func (u *Upload) Wait() (*models.FileAttachment, error) {
	<-u.done
	return u.file, u.err
}

func (u *Upload) finish(f *models.FileAttachment, err error) {
	u.file, u.err = f, err
	close(u.progress)
	close(u.done)
}

// Attach starts uploading fd to location id. The returned task reports
// progress and the outcome.
func (s *catalogService) Attach(ctx context.Context, id string, fd models.FileDescriptor) *Upload {
	u := newUpload()
	go func() {
		f, err := s.attach(ctx, u, id, fd)
		if err != nil {
			s.log.Warn(ctx, "upload failed", "location_id", id, "file", fd.Name, "err", err)
			u.finish(nil, err)
			return
		}
		u.progress <- 100
		s.log.Info(ctx, "file attached", "location_id", id, "file_id", f.FileID, "type", f.Type, "retained", f.Retained())
		u.finish(&f, nil)
	}()
	return u
}

func (s *catalogService) attach(ctx context.Context, u *Upload, id string, fd models.FileDescriptor) (models.FileAttachment, error) {
	locations, err := s.load(ctx)
	if err != nil {
		return models.FileAttachment{}, err
	}
	if indexOf(locations, id) < 0 {
		return models.FileAttachment{}, fmt.Errorf("%w: %s", common.ErrorNotFound, id)
	}

	for _, p := range progressMilestones {
		u.progress <- p
		if err := sleepContext(ctx, s.step); err != nil {
			return models.FileAttachment{}, err
		}
	}

	f := models.FileAttachment{
		FileID:     s.store.NewID(models.IDFile),
		Filename:   fd.Name,
		Size:       fd.Size,
		URL:        models.SentinelURL,
		Type:       models.Classify(fd.Name),
		UploadedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if fd.Size < InlineLimit {
		url, err := s.encoder.Encode(ctx, fd)
		if err != nil {
			s.log.Debug(ctx, "content not retained", "file", fd.Name, "err", err)
		} else {
			f.URL = url
		}
	}

	return s.persistAttachment(ctx, id, f)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
