package render

import (
	"github.com/go-gl/mathgl/mgl64"
)

var faceNormals = map[Direction]mgl64.Vec3{
	Down:  {0, -1, 0},
	Up:    {0, 1, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	West:  {-1, 0, 0},
	East:  {1, 0, 0},
}

// RotatedFace returns the model face that ends up facing world once the
// model is rotated by x then y degrees, as a blockstate model reference
// rotates it.
func RotatedFace(world Direction, x, y int) Direction {
	if x%360 == 0 && y%360 == 0 {
		return world
	}
	toModel := mgl64.Rotate3DX(mgl64.DegToRad(float64(x))).Mul3(mgl64.Rotate3DY(mgl64.DegToRad(float64(y))))
	n := toModel.Mul3x1(faceNormals[world])

	best, bestDot := world, -2.0
	for _, d := range AllFaces {
		if dot := n.Dot(faceNormals[d]); dot > bestDot {
			best, bestDot = d, dot
		}
	}
	return best
}
