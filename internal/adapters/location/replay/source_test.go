package replay

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/dorian305/rtls-client/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTrack = `
[[points]]
x = 45.33
y = 14.41

[[points]]
x = 0.0
y = 0.0

[[points]]
x = 45.331
y = 14.412
`

func writeTrack(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "track.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

type recorder struct {
	mu     sync.Mutex
	points []domain.Coordinate
	errs   []error
}

func (r *recorder) handler() ports.PositionHandler {
	return ports.PositionHandler{
		OnPosition: func(c domain.Coordinate) {
			r.mu.Lock()
			r.points = append(r.points, c)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) snapshot() ([]domain.Coordinate, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Coordinate(nil), r.points...), append([]error(nil), r.errs...)
}

func TestLoadTrackSkipsOrigin(t *testing.T) {
	points, err := LoadTrack(writeTrack(t, sampleTrack))
	require.NoError(t, err)
	assert.Equal(t, []domain.Coordinate{{X: 45.33, Y: 14.41}, {X: 45.331, Y: 14.412}}, points)
}

func TestLoadTrackErrors(t *testing.T) {
	_, err := LoadTrack(writeTrack(t, "points = ["))
	assert.ErrorContains(t, err, "decode track file")

	_, err = LoadTrack(writeTrack(t, "[[points]]\nx = 0.0\ny = 0.0\n"))
	assert.ErrorIs(t, err, ErrEmptyTrack)

	_, err = LoadTrack(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSourceReplaysOnceThenReportsExhaustion(t *testing.T) {
	source, err := New(writeTrack(t, sampleTrack), time.Millisecond, false, nil)
	require.NoError(t, err)

	var r recorder
	w, err := source.Watch(context.Background(), r.handler())
	require.NoError(t, err)
	defer w.Stop()

	require.Eventually(t, func() bool {
		_, errs := r.snapshot()
		return len(errs) == 1
	}, 2*time.Second, time.Millisecond)

	points, errs := r.snapshot()
	assert.Equal(t, []domain.Coordinate{{X: 45.33, Y: 14.41}, {X: 45.331, Y: 14.412}}, points)

	var acquisition *domain.AcquisitionError
	require.True(t, errors.As(errs[0], &acquisition))
	assert.Equal(t, domain.AcquisitionPositionUnavailable, acquisition.Code)
	assert.ErrorIs(t, errs[0], io.EOF)
}

func TestSourceLoops(t *testing.T) {
	source, err := New(writeTrack(t, sampleTrack), time.Millisecond, true, nil)
	require.NoError(t, err)

	var r recorder
	w, err := source.Watch(context.Background(), r.handler())
	require.NoError(t, err)
	defer w.Stop()

	require.Eventually(t, func() bool {
		points, _ := r.snapshot()
		return len(points) >= 5
	}, 2*time.Second, time.Millisecond)

	points, errs := r.snapshot()
	assert.Empty(t, errs)
	assert.Equal(t, points[0], points[2])
	assert.Equal(t, points[1], points[3])
}

func TestSourceMissingFileIsPositionUnavailable(t *testing.T) {
	source, err := New(filepath.Join(t.TempDir(), "missing.toml"), time.Second, true, nil)
	require.NoError(t, err)

	_, err = source.Watch(context.Background(), ports.PositionHandler{})
	var acquisition *domain.AcquisitionError
	require.True(t, errors.As(err, &acquisition))
	assert.Equal(t, domain.AcquisitionPositionUnavailable, acquisition.Code)
	assert.Equal(t, "Location information is unavailable.", err.Error())
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New("", time.Second, false, nil)
	require.Error(t, err)

	_, err = New("track.toml", 0, false, nil)
	require.Error(t, err)
}
