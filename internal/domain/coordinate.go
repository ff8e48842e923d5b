package domain

import "fmt"

// Coordinate is a latitude/longitude-like pair. X carries latitude, Y longitude.
type Coordinate struct {
	X float64
	Y float64
}

// IsOrigin reports whether c is the uninitialized sentinel {0,0}.
func (c Coordinate) IsOrigin() bool {
	return c.X == 0 && c.Y == 0
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(Latitude: %v, Longitude: %v)", c.X, c.Y)
}
