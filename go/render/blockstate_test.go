package render

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

func blockstate(t *testing.T, s string) *rp.BlockState {
	t.Helper()
	var st rp.BlockState
	require.NoError(t, json.Unmarshal([]byte(s), &st))
	return &st
}

func TestSelectVariants(t *testing.T) {
	oakLog := blockstate(t, `{"variants": {
		"axis=x": {"model": "minecraft:block/A"},
		"axis=y": {"model": "minecraft:block/B"},
		"axis=z": {"model": "minecraft:block/C", "x": 90}
	}}`)
	for _, tc := range []struct {
		state    string
		expected ModelRef
	}{
		{"axis=y", ModelRef{Model: "minecraft:block/B", Weight: 1}},
		{"axis=x", ModelRef{Model: "minecraft:block/A", Weight: 1}},
		{"axis=z", ModelRef{Model: "minecraft:block/C", X: 90, Weight: 1}},
		{"axis=y,waterlogged=false", ModelRef{Model: "minecraft:block/B", Weight: 1}},
	} {
		state, err := ParseState(tc.state)
		require.NoError(t, err)
		sel, err := Select(oakLog, state)
		require.NoError(t, err, tc.state)
		assert.Equal(t, Single{Ref: tc.expected}, sel, tc.state)
	}

	_, err := Select(oakLog, VariantState{"axis": "w"})
	assert.True(t, errors.Is(err, rp.ErrNoMatchingVariant), "got %v", err)
	_, err = Select(oakLog, VariantState{})
	assert.True(t, errors.Is(err, rp.ErrNoMatchingVariant), "got %v", err)
}

func TestSelectFirstMatchWins(t *testing.T) {
	st := blockstate(t, `{"variants": {
		"facing=east,half=top": {"model": "first"},
		"facing=east": {"model": "second"}
	}}`)
	sel, err := Select(st, VariantState{"facing": "east", "half": "top"})
	require.NoError(t, err)
	assert.Equal(t, "first", sel.(Single).Ref.Model)

	sel, err = Select(st, VariantState{"facing": "east", "half": "bottom"})
	require.NoError(t, err)
	assert.Equal(t, "second", sel.(Single).Ref.Model)
}

func TestSelectEmptyState(t *testing.T) {
	st := blockstate(t, `{"variants": {
		"snowy=true": {"model": "snowy"},
		"": {"model": "M"}
	}}`)
	sel, err := Select(st, VariantState{})
	require.NoError(t, err)
	assert.Equal(t, Single{Ref: ModelRef{Model: "M", Weight: 1}}, sel)

	// "" only stands for the empty state.
	_, err = Select(st, VariantState{"snowy": "false"})
	assert.True(t, errors.Is(err, rp.ErrNoMatchingVariant), "got %v", err)
}

func TestSelectWeighted(t *testing.T) {
	st := blockstate(t, `{"variants": {"": [
		{"model": "a"},
		{"model": "b", "weight": 3, "y": 180, "uvlock": true}
	]}}`)
	sel, err := Select(st, VariantState{})
	require.NoError(t, err)
	assert.Equal(t, WeightedSet{Options: []ModelRef{
		{Model: "a", Weight: 1},
		{Model: "b", Y: 180, UVLock: true, Weight: 3},
	}}, sel)

	st = blockstate(t, `{"variants": {"": [{"model": "only"}]}}`)
	sel, err = Select(st, VariantState{})
	require.NoError(t, err)
	assert.Equal(t, Single{Ref: ModelRef{Model: "only", Weight: 1}}, sel)
}

func TestSelectMultipart(t *testing.T) {
	fence := blockstate(t, `{"multipart": [
		{"apply": {"model": "post"}},
		{"when": {"north": "true"}, "apply": {"model": "side", "uvlock": true}},
		{"when": {"east": "true"}, "apply": {"model": "side", "y": 90, "uvlock": true}},
		{"when": {"OR": [{"north": "true"}, {"east": "true"}]}, "apply": [{"model": "x"}, {"model": "y"}]}
	]}`)

	sel, err := Select(fence, VariantState{"north": "true", "east": "false"})
	require.NoError(t, err)
	assert.Equal(t, MultipartSet{Parts: [][]ModelRef{
		{{Model: "post", Weight: 1}},
		{{Model: "side", UVLock: true, Weight: 1}},
		{{Model: "x", Weight: 1}, {Model: "y", Weight: 1}},
	}}, sel)

	sel, err = Select(fence, VariantState{})
	require.NoError(t, err)
	assert.Len(t, sel.(MultipartSet).Parts, 1)

	conditional := blockstate(t, `{"multipart": [{"when": {"lit": "true"}, "apply": {"model": "flame"}}]}`)
	_, err = Select(conditional, VariantState{"lit": "false"})
	assert.True(t, errors.Is(err, rp.ErrNoMatchingVariant), "got %v", err)
}
