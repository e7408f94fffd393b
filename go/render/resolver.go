package render

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

type Options struct {
	// Concurrency bounds each fan-out batch; <= 0 means NumCPU.
	Concurrency  int
	RejectTinted bool
	Logger       *slog.Logger
}

// Resolver runs the whole pipeline against one pack: blockstate selection,
// model merging, texture alias resolution and face extraction. Definitions
// are loaded at most once per Resolver.
type Resolver struct {
	src       *cachedSource
	extractor *Extractor
	opts      Options
	logger    *slog.Logger
}

func NewResolver(src rp.Source, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := newCachedSource(src, logger)
	return &Resolver{
		src: cache,
		extractor: &Extractor{
			Source:       cache,
			RejectTinted: opts.RejectTinted,
			Concurrency:  opts.Concurrency,
		},
		opts:   opts,
		logger: logger,
	}
}

func (r *Resolver) BlockNames(ctx context.Context) ([]string, error) {
	return r.src.BlockNames(ctx)
}

func (r *Resolver) BlockState(ctx context.Context, block string) (*rp.BlockState, error) {
	return r.src.BlockState(ctx, block)
}

func (r *Resolver) StateOptions(ctx context.Context, block string) ([]StateOption, error) {
	st, err := r.src.BlockState(ctx, block)
	if err != nil {
		return nil, err
	}
	return StateOptions(st), nil
}

func (r *Resolver) Select(ctx context.Context, block string, state VariantState) (Selection, error) {
	st, err := r.src.BlockState(ctx, block)
	if err != nil {
		return nil, err
	}
	sel, err := Select(st, state)
	if err != nil {
		return nil, errors.Wrapf(err, "block %s", block)
	}
	return sel, nil
}

func (r *Resolver) Model(ctx context.Context, ref string) (*Model, error) {
	return Merge(ctx, r.src, ref)
}

// Faces extracts the requested world faces of the model ref points at,
// with its rotation applied.
func (r *Resolver) Faces(ctx context.Context, ref ModelRef, faces []Direction) ([]CuboidFaces, error) {
	model, err := r.Model(ctx, ref.Model)
	if err != nil {
		return nil, err
	}
	return r.extractor.RotatedFaces(ctx, model, faces, ref.X, ref.Y)
}

// RenderedModel is one model of a selection with its extracted faces, or
// the error that stopped it.
type RenderedModel struct {
	Ref     ModelRef
	Cuboids []CuboidFaces
	Err     error
}

func (m RenderedModel) MarshalJSON() ([]byte, error) {
	out := struct {
		Ref     ModelRef      `json:"ref"`
		Cuboids []CuboidFaces `json:"cuboids,omitempty"`
		Err     string        `json:"error,omitempty"`
	}{Ref: m.Ref, Cuboids: m.Cuboids}
	if m.Err != nil {
		out.Err = m.Err.Error()
	}
	return json.Marshal(out)
}

// Rendered mirrors Selection with every model rendered: one of
// RenderedSingle, RenderedWeighted or RenderedMultipart.
type Rendered interface {
	isRendered()
	Models() []RenderedModel
}

type RenderedSingle struct {
	Model RenderedModel
}

// RenderedWeighted holds every option of a weighted variant; picking one is
// up to the caller.
type RenderedWeighted struct {
	Options []RenderedModel
}

type RenderedMultipart struct {
	Parts [][]RenderedModel
}

func (RenderedSingle) isRendered()    {}
func (RenderedWeighted) isRendered()  {}
func (RenderedMultipart) isRendered() {}

func (s RenderedSingle) Models() []RenderedModel   { return []RenderedModel{s.Model} }
func (w RenderedWeighted) Models() []RenderedModel { return w.Options }
func (m RenderedMultipart) Models() []RenderedModel {
	return lo.Flatten(m.Parts)
}

func (s RenderedSingle) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string        `json:"kind"`
		Model RenderedModel `json:"model"`
	}{"single", s.Model})
}

func (w RenderedWeighted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string          `json:"kind"`
		Options []RenderedModel `json:"options"`
	}{"weighted", w.Options})
}

func (m RenderedMultipart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string            `json:"kind"`
		Parts [][]RenderedModel `json:"parts"`
	}{"multipart", m.Parts})
}

// Render resolves block in state down to pixels for the requested faces.
//
// A single variant fails with its model. In weighted and multipart
// selections a failing model is kept with its Err set and logged, and the
// others are still rendered; only when every model fails does Render fail.
func (r *Resolver) Render(ctx context.Context, block string, state VariantState, faces []Direction) (Rendered, error) {
	sel, err := r.Select(ctx, block, state)
	if err != nil {
		return nil, err
	}

	switch sel := sel.(type) {
	case Single:
		m := r.renderModel(ctx, sel.Ref, faces)
		if m.Err != nil {
			return nil, errors.Wrapf(m.Err, "block %s", block)
		}
		return RenderedSingle{Model: m}, nil

	case WeightedSet:
		models := r.renderModels(ctx, sel.Options, faces)
		if err := r.allFailed(block, state, models); err != nil {
			return nil, err
		}
		return RenderedWeighted{Options: models}, nil

	case MultipartSet:
		var refs []ModelRef
		for _, part := range sel.Parts {
			refs = append(refs, part...)
		}
		models := r.renderModels(ctx, refs, faces)
		if err := r.allFailed(block, state, models); err != nil {
			return nil, err
		}
		out := RenderedMultipart{Parts: make([][]RenderedModel, len(sel.Parts))}
		for i, part := range sel.Parts {
			out.Parts[i], models = models[:len(part)], models[len(part):]
		}
		return out, nil
	}
	return nil, errors.Errorf("unknown selection %T", sel)
}

func (r *Resolver) renderModel(ctx context.Context, ref ModelRef, faces []Direction) RenderedModel {
	cuboids, err := r.Faces(ctx, ref, faces)
	return RenderedModel{Ref: ref, Cuboids: cuboids, Err: err}
}

func (r *Resolver) renderModels(ctx context.Context, refs []ModelRef, faces []Direction) []RenderedModel {
	models, _ := collect(refs, r.opts.Concurrency, func(ref ModelRef) (RenderedModel, error) {
		return r.renderModel(ctx, ref, faces), nil
	})
	return models
}

// allFailed logs the failed models of a collection, and returns an error
// when none succeeded.
func (r *Resolver) allFailed(block string, state VariantState, models []RenderedModel) error {
	var errs []error
	for _, m := range models {
		if m.Err != nil {
			r.logger.Warn("dropping model", "block", block, "state", state.String(), "model", m.Ref.Model, "err", m.Err)
			errs = append(errs, m.Err)
		}
	}
	if len(errs) < len(models) {
		return nil
	}
	return errors.Wrapf(stderrors.Join(errs...), "block %s: every model failed", block)
}
