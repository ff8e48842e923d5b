package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Bounds is the latitude/longitude box initial simulated positions are drawn from.
type Bounds struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

func (b Bounds) Contains(c Coordinate) bool {
	return c.X > b.MinX && c.X < b.MaxX && c.Y > b.MinY && c.Y < b.MaxY
}

type MovementConfig struct {
	Bounds    Bounds
	MaxChange float64
	MaxAngle  float64
}

// DefaultMovementConfig covers the city of Rijeka.
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		Bounds:    Bounds{MinX: 45.305, MaxX: 45.377, MinY: 14.381, MaxY: 14.447},
		MaxChange: 0.001,
		MaxAngle:  math.Pi,
	}
}

func (c MovementConfig) Validate() error {
	if !(c.Bounds.MinX < c.Bounds.MaxX) || !(c.Bounds.MinY < c.Bounds.MaxY) {
		return fmt.Errorf("simulator bounds are empty or inverted")
	}
	if c.Bounds.Contains(Coordinate{}) {
		return fmt.Errorf("simulator bounds must not contain the origin")
	}
	if c.MaxChange <= 0 {
		return fmt.Errorf("simulator max change must be positive")
	}
	if c.MaxAngle < 0 || c.MaxAngle > 2*math.Pi {
		return fmt.Errorf("simulator max angle must be within [0, 2π]")
	}

	return nil
}

// MovementSimulator produces a heading-biased random walk. Every step moves
// exactly MaxChange along a heading within MaxAngle/2 of the heading implied by
// atan2(y, x) of the current position.
type MovementSimulator struct {
	cfg MovementConfig
	rng *rand.Rand
}

func NewMovementSimulator(cfg MovementConfig, rng *rand.Rand) (*MovementSimulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &MovementSimulator{cfg: cfg, rng: rng}, nil
}

func (s *MovementSimulator) Step(current Coordinate) Coordinate {
	if current.IsOrigin() {
		return s.initial()
	}

	offset := s.rng.Float64()*s.cfg.MaxAngle - s.cfg.MaxAngle/2
	heading := math.Atan2(current.Y, current.X) + offset

	next := Coordinate{
		X: current.X + math.Cos(heading)*s.cfg.MaxChange,
		Y: current.Y + math.Sin(heading)*s.cfg.MaxChange,
	}
	if next.IsOrigin() {
		// Reflect the step so the walk never lands on the sentinel.
		next = Coordinate{
			X: current.X - math.Cos(heading)*s.cfg.MaxChange,
			Y: current.Y - math.Sin(heading)*s.cfg.MaxChange,
		}
	}

	return next
}

// initial redraws until the point is strictly inside the bounds; a draw close
// to 1 can round up onto the upper edge.
func (s *MovementSimulator) initial() Coordinate {
	b := s.cfg.Bounds
	for {
		c := Coordinate{
			X: b.MinX + s.openUnit()*(b.MaxX-b.MinX),
			Y: b.MinY + s.openUnit()*(b.MaxY-b.MinY),
		}
		if b.Contains(c) {
			return c
		}
	}
}

// openUnit draws from (0, 1).
func (s *MovementSimulator) openUnit() float64 {
	for {
		if u := s.rng.Float64(); u > 0 {
			return u
		}
	}
}
