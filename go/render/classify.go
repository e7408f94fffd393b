package render

import "encoding/json"

// Opacity classifies a face's pixels. An opaque face hides whatever is
// behind it.
type Opacity int

const (
	OpacityUnknown Opacity = iota
	Opaque
	Cutout
	Translucent
)

var opacityNames = []string{"unknown", "opaque", "cutout", "translucent"}

func (o Opacity) String() string {
	if o < 0 || int(o) >= len(opacityNames) {
		return opacityNames[0]
	}
	return opacityNames[o]
}

func (o Opacity) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// classify returns Opaque when every pixel is fully opaque, Cutout when
// pixels are only fully opaque or fully clear, and Translucent otherwise.
func classify(pixels []Pixel) Opacity {
	if len(pixels) == 0 {
		return OpacityUnknown
	}
	ty := Opaque
	for _, p := range pixels {
		switch a := p[3]; {
		case a == 0:
			if ty == Opaque {
				ty = Cutout
			}
		case a < 0xff:
			return Translucent
		}
	}
	return ty
}

// Opacity of a static face.
func (f *StaticFace) Opacity() Opacity {
	return classify(f.Pixels)
}

// Opacity of an animated face is the least opaque of its frames.
func (f *AnimatedFace) Opacity() Opacity {
	out := OpacityUnknown
	for _, frame := range f.Frames {
		if o := classify(frame.Pixels); o > out {
			out = o
		}
	}
	return out
}
