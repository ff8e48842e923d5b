package domain

const DefaultWindowSize = 10

// CoordinateHistory is the bounded FIFO window behind the moving-average filter.
type CoordinateHistory struct {
	window  int
	samples []Coordinate
}

func NewCoordinateHistory(window int) (*CoordinateHistory, error) {
	if window < 1 {
		return nil, ErrInvalidWindow
	}

	return &CoordinateHistory{
		window:  window,
		samples: make([]Coordinate, 0, window),
	}, nil
}

// Push appends sample, evicting the oldest entry once the window is full, and
// returns the component-wise mean of the retained samples.
func (h *CoordinateHistory) Push(sample Coordinate) Coordinate {
	if len(h.samples) == h.window {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.window-1]
	}
	h.samples = append(h.samples, sample)

	return h.mean()
}

func (h *CoordinateHistory) Len() int {
	return len(h.samples)
}

func (h *CoordinateHistory) Window() int {
	return h.window
}

// Samples returns a copy of the retained samples, oldest first.
func (h *CoordinateHistory) Samples() []Coordinate {
	out := make([]Coordinate, len(h.samples))
	copy(out, h.samples)
	return out
}

func (h *CoordinateHistory) mean() Coordinate {
	var sumX, sumY float64
	for _, s := range h.samples {
		sumX += s.X
		sumY += s.Y
	}

	n := float64(len(h.samples))
	return Coordinate{X: sumX / n, Y: sumY / n}
}
