package render

import (
	"encoding/json"
	"image"

	"github.com/pkg/errors"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

// Frame is one step of an animation. Duration is in game ticks.
type Frame struct {
	Duration int     `json:"duration"`
	Pixels   []Pixel `json:"pixels"`
}

type AnimatedFace struct {
	Frames      []Frame `json:"frames"`
	FrameWidth  int     `json:"frame_width"`
	FrameHeight int     `json:"frame_height"`
	Interpolate bool    `json:"interpolate"`
	Rotation    int     `json:"rotation"`
}

func (*AnimatedFace) isResolvedFace() {}

func (f *AnimatedFace) MarshalJSON() ([]byte, error) {
	type plain AnimatedFace
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*plain
	}{"animated", (*plain)(f)})
}

// frameSize returns the size of one frame of a w x h sprite sheet. Without
// an explicit size frames are square; with only one dimension given the
// other spans the whole sheet.
func frameSize(meta *rp.AnimationMeta, w, h int) (int, int) {
	fw, fh := min(w, h), min(w, h)
	if meta.Width != nil {
		fw = *meta.Width
	} else if meta.Height != nil {
		fw = w
	}
	if meta.Height != nil {
		fh = *meta.Height
	} else if meta.Width != nil {
		fh = h
	}
	return fw, fh
}

// DecodeAnimation slices a sprite sheet into timed frames, each sampled
// through the face's uv. Frames are laid out row-major on a regular grid.
//
// A mirrored uv mirrors the whole grid, so the frame indices are remapped
// to keep pointing at the same frames: right to left within a row for a
// horizontal flip, bottom to top for a vertical one.
func DecodeAnimation(img image.Image, meta *rp.AnimationMeta, uv UV, rotation int) (*AnimatedFace, error) {
	b := img.Bounds()
	fw, fh := frameSize(meta, b.Dx(), b.Dy())
	if fw <= 0 || fh <= 0 || b.Dx()%fw != 0 || b.Dy()%fh != 0 {
		return nil, errors.Wrapf(rp.ErrDimensionMismatch, "%dx%d frames on a %dx%d sheet", fw, fh, b.Dx(), b.Dy())
	}
	cols, rows := b.Dx()/fw, b.Dy()/fh
	count := cols * rows

	sub := uv.pixelRect(fw, fh)
	if !sub.In(image.Rect(0, 0, fw, fh)) {
		return nil, errors.Wrapf(rp.ErrDimensionMismatch, "uv %v reaches outside a %dx%d frame", uv, fw, fh)
	}

	flipH, flipV := uv.FlipH(), uv.FlipV()
	grid := image.Rect(0, 0, cols*fw, rows*fh).Add(b.Min)
	sheet := sampleRect(img, grid, flipH, flipV)
	ox, oy := sub.Min.X, sub.Min.Y
	if flipH {
		ox = fw - sub.Max.X
	}
	if flipV {
		oy = fh - sub.Max.Y
	}

	order := meta.Frames
	if order == nil {
		order = make([]rp.AnimationFrame, count)
		for i := range order {
			order[i].Index = i
		}
	}
	defaultTime := 1
	if meta.FrameTime != nil {
		defaultTime = *meta.FrameTime
	}

	out := &AnimatedFace{
		FrameWidth:  sub.Dx(),
		FrameHeight: sub.Dy(),
		Interpolate: meta.Interpolate,
		Rotation:    rotation,
		Frames:      make([]Frame, 0, len(order)),
	}
	for _, f := range order {
		index := f.Index
		if index < 0 || index >= count {
			return nil, errors.Wrapf(rp.ErrMalformed, "frame %d of a %d frame sheet", index, count)
		}
		if flipH {
			index = index/cols*cols + (cols - index%cols - 1)
		}
		if flipV {
			index = index%cols + (rows-index/cols-1)*cols
		}
		cell := image.Rect(0, 0, sub.Dx(), sub.Dy()).Add(image.Pt(index%cols*fw+ox, index/cols*fh+oy))
		pixels, err := samplePixels(sheet.SubImage(cell).(*image.NRGBA), sub.Dx(), sub.Dy())
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", f.Index)
		}
		duration := defaultTime
		if f.Time != nil {
			duration = *f.Time
		}
		out.Frames = append(out.Frames, Frame{Duration: duration, Pixels: pixels})
	}
	return out, nil
}
