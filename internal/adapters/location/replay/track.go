package replay

import (
	"errors"
	"fmt"
	"os"

	"github.com/dorian305/rtls-client/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

var ErrEmptyTrack = errors.New("track has no points")

type trackSchema struct {
	Points []pointSchema `toml:"points"`
}

type pointSchema struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// LoadTrack reads a TOML file of [[points]] tables. Origin points are
// dropped because the origin marks "no position".
func LoadTrack(path string) ([]domain.Coordinate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track file: %w", err)
	}

	var track trackSchema
	if err := toml.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("decode track file: %w", err)
	}

	points := make([]domain.Coordinate, 0, len(track.Points))
	for _, p := range track.Points {
		c := domain.Coordinate{X: p.X, Y: p.Y}
		if c.IsOrigin() {
			continue
		}
		points = append(points, c)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTrack)
	}

	return points, nil
}
