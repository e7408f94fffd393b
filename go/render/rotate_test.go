package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotatedFace(t *testing.T) {
	for _, tc := range []struct {
		world    Direction
		x, y     int
		expected Direction
	}{
		{North, 0, 0, North},
		{East, 0, 90, North},
		{South, 0, 90, East},
		{North, 0, 180, South},
		{West, 0, 270, North},
		{Up, 0, 90, Up},
		{Up, 90, 0, South},
		{North, 90, 0, Up},
		{Down, 180, 0, Up},
		{East, 90, 90, Up},
		{East, 360, 450, North},
	} {
		assert.Equal(t, tc.expected, RotatedFace(tc.world, tc.x, tc.y), "RotatedFace(%s, %d, %d)", tc.world, tc.x, tc.y)
	}
}

// Every rotation maps the six faces onto the six faces.
func TestRotatedFaceIsPermutation(t *testing.T) {
	for x := 0; x < 360; x += 90 {
		for y := 0; y < 360; y += 90 {
			seen := map[Direction]bool{}
			for _, d := range AllFaces {
				seen[RotatedFace(d, x, y)] = true
			}
			assert.Len(t, seen, 6, "x=%d y=%d", x, y)
		}
	}
}
