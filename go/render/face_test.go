package render

import (
	"image"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

func TestExtractStatic(t *testing.T) {
	img := gradient(16, 16)

	face, err := ExtractStatic(img, UV{0, 0, 16, 16}, 90)
	require.NoError(t, err)
	assert.Equal(t, 16, face.Width)
	assert.Equal(t, 16, face.Height)
	assert.Equal(t, 90, face.Rotation)
	require.Len(t, face.Pixels, 256)
	for i, p := range face.Pixels {
		assert.Equal(t, Pixel{uint8(i % 16), uint8(i / 16), 0, 255}, p, "pixel %d", i)
	}

	mirrored, err := ExtractStatic(img, UV{16, 0, 0, 16}, 0)
	require.NoError(t, err)
	require.Len(t, mirrored.Pixels, 256)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.Equal(t, face.Pixels[y*16+15-x], mirrored.Pixels[y*16+x], "pixel %d,%d", x, y)
		}
	}

	flipped, err := ExtractStatic(img, UV{0, 16, 16, 0}, 0)
	require.NoError(t, err)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.Equal(t, face.Pixels[(15-y)*16+x], flipped.Pixels[y*16+x], "pixel %d,%d", x, y)
		}
	}
}

func TestExtractStaticSubRect(t *testing.T) {
	for _, tc := range []struct {
		uv         UV
		w, h       int
		first      Pixel
		last       Pixel
		imageWidth int
	}{
		{UV{4, 4, 8, 12}, 4, 8, Pixel{4, 4, 0, 255}, Pixel{7, 11, 0, 255}, 16},
		{UV{4, 4, 8, 12}, 8, 16, Pixel{8, 8, 0, 255}, Pixel{15, 23, 0, 255}, 32},
		{UV{8, 12, 4, 4}, 4, 8, Pixel{7, 11, 0, 255}, Pixel{4, 4, 0, 255}, 16},
		{UV{0, 0, 16, 1}, 16, 1, Pixel{0, 0, 0, 255}, Pixel{15, 0, 0, 255}, 16},
	} {
		face, err := ExtractStatic(gradient(tc.imageWidth, tc.imageWidth), tc.uv, 0)
		require.NoError(t, err, "uv %v", tc.uv)
		assert.Equal(t, tc.w, face.Width, "uv %v", tc.uv)
		assert.Equal(t, tc.h, face.Height, "uv %v", tc.uv)
		require.Len(t, face.Pixels, tc.w*tc.h)
		assert.Equal(t, tc.first, face.Pixels[0], "uv %v", tc.uv)
		assert.Equal(t, tc.last, face.Pixels[len(face.Pixels)-1], "uv %v", tc.uv)
	}
}

func TestExtractStaticOutOfBounds(t *testing.T) {
	_, err := ExtractStatic(gradient(16, 16), UV{0, 0, 20, 16}, 0)
	assert.True(t, errors.Is(err, rp.ErrDimensionMismatch), "got %v", err)
}

func TestExtractStaticOffsetBounds(t *testing.T) {
	img := gradient(32, 32).SubImage(image.Rect(16, 16, 32, 32))
	face, err := ExtractStatic(img, UV{0, 0, 16, 16}, 0)
	require.NoError(t, err)
	assert.Equal(t, Pixel{16, 16, 0, 255}, face.Pixels[0])
}

func TestFaceUV(t *testing.T) {
	elem := &rp.ModelElement{From: []float64{2, 0, 4}, To: []float64{10, 6, 12}}
	for _, tc := range []struct {
		dir      Direction
		expected UV
	}{
		{Down, UV{2, 4, 10, 12}},
		{Up, UV{2, 4, 10, 12}},
		{North, UV{6, 10, 14, 16}},
		{South, UV{2, 10, 10, 16}},
		{West, UV{4, 10, 12, 16}},
		{East, UV{4, 10, 12, 16}},
	} {
		uv, err := FaceUV(elem, tc.dir, rp.BlockModelFace{})
		require.NoError(t, err)
		assert.Equal(t, tc.expected, uv, "%s", tc.dir)
	}

	uv, err := FaceUV(elem, Up, rp.BlockModelFace{UV: []float64{16, 0, 0, 16}})
	require.NoError(t, err)
	assert.True(t, uv.FlipH())
	assert.False(t, uv.FlipV())

	_, err = FaceUV(elem, Up, rp.BlockModelFace{UV: []float64{0, 0, 16}})
	assert.True(t, errors.Is(err, rp.ErrMalformed), "got %v", err)
}

// The size of every extracted face matches its uv span scaled to the
// texture.
func TestFaceSizeFollowsUV(t *testing.T) {
	elem := &rp.ModelElement{From: []float64{0, 0, 4}, To: []float64{16, 8, 12}}
	for _, size := range []int{16, 32} {
		img := gradient(size, size)
		for _, dir := range AllFaces {
			uv, err := FaceUV(elem, dir, rp.BlockModelFace{})
			require.NoError(t, err)
			face, err := ExtractStatic(img, uv, 0)
			require.NoError(t, err)
			scale := float64(size) / 16
			assert.Equal(t, int(math.Abs(uv[2]-uv[0])*scale), face.Width, "%s at %d", dir, size)
			assert.Equal(t, int(math.Abs(uv[3]-uv[1])*scale), face.Height, "%s at %d", dir, size)
			assert.Len(t, face.Pixels, face.Width*face.Height)
		}
	}
}

func TestParseFaces(t *testing.T) {
	faces, err := ParseFaces("up, North,up")
	require.NoError(t, err)
	assert.Equal(t, []Direction{Up, North}, faces)

	faces, err = ParseFaces("")
	require.NoError(t, err)
	assert.Equal(t, AllFaces, faces)

	_, err = ParseFaces("up,sideways")
	assert.True(t, errors.Is(err, rp.ErrMalformed), "got %v", err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Opaque, classify([]Pixel{{1, 2, 3, 255}}))
	assert.Equal(t, Cutout, classify([]Pixel{{1, 2, 3, 255}, {0, 0, 0, 0}}))
	assert.Equal(t, Translucent, classify([]Pixel{{0, 0, 0, 0}, {1, 2, 3, 128}}))
	assert.Equal(t, OpacityUnknown, classify(nil))
}
