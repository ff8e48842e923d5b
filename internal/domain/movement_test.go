package domain

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededSimulator(t *testing.T, cfg MovementConfig) *MovementSimulator {
	t.Helper()

	sim, err := NewMovementSimulator(cfg, rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)
	return sim
}

func TestMovementSimulatorInitialStepInsideBounds(t *testing.T) {
	cfg := DefaultMovementConfig()
	sim := newSeededSimulator(t, cfg)

	for i := 0; i < 500; i++ {
		got := sim.Step(Coordinate{})
		assert.True(t, cfg.Bounds.Contains(got), "initial coordinate %v outside bounds", got)
	}
}

// sequenceSource replays fixed draws, then settles on the midpoint.
type sequenceSource struct {
	values []uint64
}

func (s *sequenceSource) Uint64() uint64 {
	if len(s.values) == 0 {
		return 1 << 63
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func TestMovementSimulatorInitialStepRedrawsUpperEdge(t *testing.T) {
	cfg := MovementConfig{
		Bounds:    Bounds{MinX: 1, MaxX: 2, MinY: 1, MaxY: 2},
		MaxChange: 0.001,
		MaxAngle:  math.Pi,
	}
	// The largest Float64 draw rounds 1 + u*(2-1) up to exactly 2.
	rng := rand.New(&sequenceSource{values: []uint64{math.MaxUint64, math.MaxUint64}})
	sim, err := NewMovementSimulator(cfg, rng)
	require.NoError(t, err)

	got := sim.Step(Coordinate{})

	assert.True(t, cfg.Bounds.Contains(got), "initial coordinate %v outside bounds", got)
	assert.Equal(t, Coordinate{X: 1.5, Y: 1.5}, got)
}

func TestMovementSimulatorStepStaysWithinMaxChange(t *testing.T) {
	cfg := DefaultMovementConfig()
	sim := newSeededSimulator(t, cfg)

	current := sim.Step(Coordinate{})
	for i := 0; i < 1000; i++ {
		next := sim.Step(current)
		distance := math.Hypot(next.X-current.X, next.Y-current.Y)
		assert.LessOrEqual(t, distance, cfg.MaxChange+1e-12)
		assert.False(t, next.IsOrigin())
		current = next
	}
}

func TestMovementSimulatorHeadingBias(t *testing.T) {
	cfg := DefaultMovementConfig()
	cfg.MaxAngle = 0
	sim := newSeededSimulator(t, cfg)

	current := Coordinate{X: 3, Y: 4}
	next := sim.Step(current)

	assert.InDelta(t, 3+0.6*cfg.MaxChange, next.X, 1e-12)
	assert.InDelta(t, 4+0.8*cfg.MaxChange, next.Y, 1e-12)
}

func TestMovementSimulatorNeverReturnsOriginForNonInitialStep(t *testing.T) {
	cfg := DefaultMovementConfig()
	cfg.MaxAngle = 2 * math.Pi
	sim := newSeededSimulator(t, cfg)

	current := Coordinate{X: cfg.MaxChange, Y: 0}
	for i := 0; i < 1000; i++ {
		next := sim.Step(current)
		require.False(t, next.IsOrigin())
		current = next
	}
}

func TestMovementConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MovementConfig)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*MovementConfig) {}},
		{name: "inverted latitude", mutate: func(c *MovementConfig) { c.Bounds.MinX, c.Bounds.MaxX = c.Bounds.MaxX, c.Bounds.MinX }, wantErr: "inverted"},
		{name: "box around origin", mutate: func(c *MovementConfig) { c.Bounds = Bounds{MinX: -1, MaxX: 1, MinY: -1, MaxY: 1} }, wantErr: "origin"},
		{name: "zero step", mutate: func(c *MovementConfig) { c.MaxChange = 0 }, wantErr: "max change"},
		{name: "angle too wide", mutate: func(c *MovementConfig) { c.MaxAngle = 7 }, wantErr: "max angle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMovementConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
