package render

import (
	"encoding/json"
	"image"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

type Direction string

const (
	Down  Direction = "down"
	Up    Direction = "up"
	North Direction = "north"
	South Direction = "south"
	West  Direction = "west"
	East  Direction = "east"
)

var AllFaces = []Direction{Down, Up, North, South, West, East}

func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !lo.Contains(AllFaces, d) {
		return "", errors.Wrapf(rp.ErrMalformed, "face %q", s)
	}
	return d, nil
}

// ParseFaces parses a comma separated face list. "" and "all" mean every
// face.
func ParseFaces(s string) ([]Direction, error) {
	if s == "" || s == "all" {
		return AllFaces, nil
	}
	var faces []Direction
	for _, part := range strings.Split(s, ",") {
		d, err := ParseDirection(part)
		if err != nil {
			return nil, err
		}
		faces = append(faces, d)
	}
	return lo.Uniq(faces), nil
}

// UV is a face's sampling rectangle (u0, v0, u1, v1) in 0-16 texture units.
// u1 < u0 or v1 < v0 mirror the face.
type UV [4]float64

func (uv UV) FlipH() bool { return uv[2] < uv[0] }
func (uv UV) FlipV() bool { return uv[3] < uv[1] }

// pixelRect scales the rectangle onto a w x h image.
func (uv UV) pixelRect(w, h int) image.Rectangle {
	scale := func(v float64, dim int) int {
		return int(math.Round(v * float64(dim) / 16))
	}
	return image.Rect(
		scale(math.Min(uv[0], uv[2]), w), scale(math.Min(uv[1], uv[3]), h),
		scale(math.Max(uv[0], uv[2]), w), scale(math.Max(uv[1], uv[3]), h),
	)
}

// FaceUV returns the face's declared uv, or the one the game derives from
// the element bounds when it has none.
func FaceUV(elem *rp.ModelElement, dir Direction, face rp.BlockModelFace) (UV, error) {
	if face.UV != nil {
		if len(face.UV) != 4 {
			return UV{}, errors.Wrapf(rp.ErrMalformed, "%s face uv has %d values", dir, len(face.UV))
		}
		return UV{face.UV[0], face.UV[1], face.UV[2], face.UV[3]}, nil
	}
	if len(elem.From) != 3 || len(elem.To) != 3 {
		return UV{}, errors.Wrap(rp.ErrMalformed, "element bounds need three coordinates")
	}
	fx, fy, fz := elem.From[0], elem.From[1], elem.From[2]
	tx, ty, tz := elem.To[0], elem.To[1], elem.To[2]
	switch dir {
	case Down:
		return UV{fx, 16 - tz, tx, 16 - fz}, nil
	case Up:
		return UV{fx, fz, tx, tz}, nil
	case North:
		return UV{16 - tx, 16 - ty, 16 - fx, 16 - fy}, nil
	case South:
		return UV{fx, 16 - ty, tx, 16 - fy}, nil
	case West:
		return UV{fz, 16 - ty, tz, 16 - fy}, nil
	case East:
		return UV{16 - tz, 16 - ty, 16 - fz, 16 - fy}, nil
	}
	return UV{}, errors.Wrapf(rp.ErrMalformed, "face %q", dir)
}

// Pixel is one non-premultiplied RGBA sample.
type Pixel [4]uint8

// ResolvedFace is either a *StaticFace or an *AnimatedFace. In JSON the two
// are told apart by their "kind".
type ResolvedFace interface {
	isResolvedFace()
	Opacity() Opacity
}

type StaticFace struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pixels []Pixel `json:"pixels"`
	// Rotation is the face's declared uv rotation, left for the compositor.
	Rotation int `json:"rotation"`
}

func (*StaticFace) isResolvedFace() {}

func (f *StaticFace) MarshalJSON() ([]byte, error) {
	type plain StaticFace
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*plain
	}{"static", (*plain)(f)})
}

// ExtractStatic samples the uv rectangle of img, mirrored as the uv says.
func ExtractStatic(img image.Image, uv UV, rotation int) (*StaticFace, error) {
	b := img.Bounds()
	r := uv.pixelRect(b.Dx(), b.Dy()).Add(b.Min)
	if !r.In(b) {
		return nil, errors.Wrapf(rp.ErrDimensionMismatch, "uv %v reaches outside a %dx%d texture", uv, b.Dx(), b.Dy())
	}
	pixels, err := samplePixels(sampleRect(img, r, uv.FlipH(), uv.FlipV()), r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	return &StaticFace{Width: r.Dx(), Height: r.Dy(), Pixels: pixels, Rotation: rotation}, nil
}

// sampleRect copies r out of src into a fresh image at the origin. Flips are
// applied to the source placement with a nearest-neighbour affine transform.
func sampleRect(src image.Image, r image.Rectangle, flipH, flipV bool) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	if !flipH && !flipV {
		draw.Copy(dst, image.Point{}, src, r, draw.Src, nil)
		return dst
	}
	s2d := f64.Aff3{
		1, 0, float64(-r.Min.X),
		0, 1, float64(-r.Min.Y),
	}
	if flipH {
		s2d[0], s2d[2] = -1, float64(r.Max.X)
	}
	if flipV {
		s2d[4], s2d[5] = -1, float64(r.Max.Y)
	}
	draw.NearestNeighbor.Transform(dst, s2d, src, r, draw.Src, nil)
	return dst
}

// samplePixels reads img row-major and checks the result holds exactly
// w*h samples.
func samplePixels(img *image.NRGBA, w, h int) ([]Pixel, error) {
	b := img.Bounds()
	pixels := make([]Pixel, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			pixels = append(pixels, Pixel{row[4*x], row[4*x+1], row[4*x+2], row[4*x+3]})
		}
	}
	if len(pixels) != w*h {
		return nil, errors.Wrapf(rp.ErrDimensionMismatch, "sampled %d pixels for a %dx%d face", len(pixels), w, h)
	}
	return pixels, nil
}
