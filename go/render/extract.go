package render

import (
	"context"
	stderrors "errors"
	"image"

	"github.com/pkg/errors"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

type textureSource interface {
	Texture(ctx context.Context, path string) (image.Image, error)
	TextureMeta(ctx context.Context, path string) (*rp.TextureMeta, error)
}

// Extractor turns the faces of a merged model into pixels.
type Extractor struct {
	Source textureSource
	// RejectTinted fails faces that declare a tintindex instead of
	// returning their untinted pixels.
	RejectTinted bool
	// Concurrency bounds the faces extracted at once; <= 0 means NumCPU.
	Concurrency int
}

// FaceRender is one extracted face. Face is the direction it is seen from,
// ModelFace the face of the model it was taken from; they differ only for
// rotated model references.
type FaceRender struct {
	Face      Direction    `json:"face"`
	ModelFace Direction    `json:"model_face"`
	Texture   string       `json:"texture"`
	Image     ResolvedFace `json:"image"`
	Opacity   Opacity      `json:"opacity"`
}

// CuboidFaces holds the extracted faces of one element, in the order they
// were requested. Faces the element doesn't declare are skipped.
type CuboidFaces []FaceRender

// Faces extracts the requested faces of every element of model.
func (e *Extractor) Faces(ctx context.Context, model *Model, faces []Direction) ([]CuboidFaces, error) {
	return e.RotatedFaces(ctx, model, faces, 0, 0)
}

// RotatedFaces is Faces for a model placed with an x/y rotation: faces
// names world directions and each is taken from the model face that ends up
// pointing that way.
//
// Every face is extracted, even after one fails; the error then joins the
// failures of all of them.
func (e *Extractor) RotatedFaces(ctx context.Context, model *Model, faces []Direction, x, y int) ([]CuboidFaces, error) {
	type job struct {
		cuboid      int
		world, face Direction
		elem        *rp.ModelElement
		def         rp.BlockModelFace
	}
	var jobs []job
	for i, elem := range model.Elements {
		if elem == nil {
			continue
		}
		for _, world := range faces {
			face := RotatedFace(world, x, y)
			if def, ok := elem.Faces[string(face)]; ok {
				jobs = append(jobs, job{i, world, face, elem, def})
			}
		}
	}

	renders, errs := collect(jobs, e.Concurrency, func(j job) (FaceRender, error) {
		r, err := e.face(ctx, model, j.elem, j.face, j.def)
		if err != nil {
			return r, errors.Wrapf(err, "element %d %s face", j.cuboid, j.face)
		}
		r.Face = j.world
		return r, nil
	})
	if err := stderrors.Join(errs...); err != nil {
		return nil, errors.Wrapf(err, "model %s", model.Name)
	}

	out := make([]CuboidFaces, len(model.Elements))
	for i := range out {
		out[i] = CuboidFaces{}
	}
	for i, j := range jobs {
		out[j.cuboid] = append(out[j.cuboid], renders[i])
	}
	return out, nil
}

func (e *Extractor) face(ctx context.Context, model *Model, elem *rp.ModelElement, dir Direction, def rp.BlockModelFace) (FaceRender, error) {
	r := FaceRender{ModelFace: dir}
	if e.RejectTinted && def.TintIndex != nil {
		return r, errors.Wrapf(rp.ErrUnsupported, "tintindex %d", *def.TintIndex)
	}
	if def.Texture == "" {
		return r, errors.Wrap(rp.ErrMalformed, "face has no texture")
	}
	uv, err := FaceUV(elem, dir, def)
	if err != nil {
		return r, err
	}
	rotation := 0
	if def.Rotation != nil {
		rotation = *def.Rotation
	}

	r.Texture, err = model.Texture(def.Texture)
	if err != nil {
		return r, err
	}
	img, err := e.Source.Texture(ctx, r.Texture)
	if err != nil {
		return r, err
	}
	meta, err := e.Source.TextureMeta(ctx, r.Texture)
	if err != nil && !errors.Is(err, rp.ErrNotFound) {
		return r, err
	}

	if meta != nil && meta.Animation != nil {
		r.Image, err = DecodeAnimation(img, meta.Animation, uv, rotation)
	} else {
		r.Image, err = ExtractStatic(img, uv, rotation)
	}
	if err != nil {
		return r, errors.Wrapf(err, "texture %s", r.Texture)
	}
	r.Opacity = r.Image.Opacity()
	return r, nil
}
