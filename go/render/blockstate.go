package render

import (
	"strings"

	"github.com/pkg/errors"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

// ModelRef points at a model, with the placement a blockstate gives it.
type ModelRef struct {
	Model  string `json:"model"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	UVLock bool   `json:"uvlock"`
	Weight int    `json:"weight"`
}

func refFromSpec(ms rp.ModelSpec) ModelRef {
	return ModelRef{
		Model:  ms.Model,
		X:      ms.XRot(),
		Y:      ms.YRot(),
		UVLock: ms.UVLocked(),
		Weight: ms.SelectionWeight(),
	}
}

func refsFromSpecs(specs rp.SingleOrSlice[rp.ModelSpec]) []ModelRef {
	refs := make([]ModelRef, len(specs))
	for i, ms := range specs {
		refs[i] = refFromSpec(ms)
	}
	return refs
}

// Selection is what a blockstate picks for a state: one of Single,
// WeightedSet or MultipartSet.
type Selection interface {
	isSelection()
}

// Single is a variant with exactly one model.
type Single struct {
	Ref ModelRef
}

// WeightedSet is a variant offering several models to choose from at
// random, each with its Weight.
type WeightedSet struct {
	Options []ModelRef
}

// MultipartSet holds one slot per applicable multipart entry; the models of
// a slot are applied together.
type MultipartSet struct {
	Parts [][]ModelRef
}

func (Single) isSelection()       {}
func (WeightedSet) isSelection()  {}
func (MultipartSet) isSelection() {}

// Select picks the models st applies for state.
func Select(st *rp.BlockState, state VariantState) (Selection, error) {
	if st.Multipart != nil {
		return selectMultipart(st.Multipart, state)
	}
	if st.Variants != nil {
		specs, ok := selectVariant(st.Variants, state)
		if !ok {
			return nil, errors.Wrapf(rp.ErrNoMatchingVariant, "state %q", state.String())
		}
		return selectionFromSpecs(specs)
	}
	return nil, errors.Wrap(rp.ErrMalformed, "blockstate has neither variants nor multipart")
}

func selectMultipart(entries []rp.MultipartEntry, state VariantState) (Selection, error) {
	set := MultipartSet{}
	for i, entry := range entries {
		if !Matches(entry.When, state) {
			continue
		}
		if len(entry.Apply) == 0 {
			return nil, errors.Wrapf(rp.ErrMalformed, "multipart entry %d applies nothing", i)
		}
		set.Parts = append(set.Parts, refsFromSpecs(entry.Apply))
	}
	if len(set.Parts) == 0 {
		return nil, errors.Wrapf(rp.ErrNoMatchingVariant, "no multipart entry applies to %q", state.String())
	}
	return set, nil
}

// selectVariant returns the models of the first variant key whose pairs
// all appear in state. The "" key stands for the empty state only.
func selectVariant(variants rp.Variants, state VariantState) (rp.SingleOrSlice[rp.ModelSpec], bool) {
	if len(state) == 0 {
		if specs, ok := variants.Lookup(""); ok {
			return specs, true
		}
	}
	for _, v := range variants {
		if variantKeyMatches(v.Key, state) {
			return v.Models, true
		}
	}
	return nil, false
}

func variantKeyMatches(key string, state VariantState) bool {
	for _, pair := range strings.Split(key, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return false
		}
		if cur, present := state[k]; !present || cur != v {
			return false
		}
	}
	return true
}

func selectionFromSpecs(specs rp.SingleOrSlice[rp.ModelSpec]) (Selection, error) {
	switch len(specs) {
	case 0:
		return nil, errors.Wrap(rp.ErrMalformed, "variant lists no models")
	case 1:
		return Single{Ref: refFromSpec(specs[0])}, nil
	}
	return WeightedSet{Options: refsFromSpecs(specs)}, nil
}
