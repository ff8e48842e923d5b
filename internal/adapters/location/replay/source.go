package replay

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/logging"
	"github.com/dorian305/rtls-client/internal/ports"
)

// Source replays a recorded track at a fixed interval. The track file is read
// when a watch starts, so edits apply on the next run.
type Source struct {
	path     string
	interval time.Duration
	loop     bool
	log      logging.Logger
}

var _ ports.LocationSource = (*Source)(nil)

func New(path string, interval time.Duration, loop bool, log logging.Logger) (*Source, error) {
	if path == "" {
		return nil, errors.New("track file path is empty")
	}
	if interval <= 0 {
		return nil, errors.New("sampling interval must be positive")
	}
	if log == nil {
		log = logging.Noop()
	}

	return &Source{path: path, interval: interval, loop: loop, log: log}, nil
}

func (s *Source) Watch(ctx context.Context, handler ports.PositionHandler) (ports.Watch, error) {
	points, err := LoadTrack(s.path)
	if err != nil {
		code := domain.AcquisitionPositionUnavailable
		if errors.Is(err, os.ErrPermission) {
			code = domain.AcquisitionPermissionDenied
		}
		return nil, domain.NewAcquisitionError(code, err)
	}

	s.log.Info(ctx, "replaying track",
		logging.String("path", s.path),
		logging.Int("points", len(points)),
		logging.Any("loop", s.loop),
	)

	w := &watch{stopCh: make(chan struct{})}
	go s.run(ctx, w, points, handler)
	return w, nil
}

func (s *Source) run(ctx context.Context, w *watch, points []domain.Coordinate, handler ports.PositionHandler) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	next := 0
	for {
		if next == len(points) {
			if !s.loop {
				s.log.Info(ctx, "track exhausted")
				handler.OnError(domain.NewAcquisitionError(domain.AcquisitionPositionUnavailable, io.EOF))
				return
			}
			next = 0
		}
		handler.OnPosition(points[next])
		next++

		select {
		case <-ticker.C:
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

type watch struct {
	stopCh chan struct{}
	once   sync.Once
}

func (w *watch) Stop() {
	w.once.Do(func() { close(w.stopCh) })
}
