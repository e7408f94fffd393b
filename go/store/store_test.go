package store

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmmh/blockfaces/go/render"
	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testResolver(t *testing.T) *render.Resolver {
	fsys := fstest.MapFS{
		"blockstates/lamp.json": {Data: []byte(`{"variants": {
			"lit=false": {"model": "minecraft:block/lamp"},
			"lit=true": {"model": "minecraft:block/lamp_on"}
		}}`)},
		"blockstates/glass.json": {Data: []byte(`{"variants": {"": {"model": "minecraft:block/glass"}}}`)},
		"models/block/lamp.json": {Data: []byte(`{"textures": {"all": "block/lamp"}, "elements": [
			{"from": [0, 0, 0], "to": [16, 16, 16], "faces": {"up": {"texture": "#all"}, "north": {"texture": "#all"}}}
		]}`)},
		"models/block/lamp_on.json": {Data: []byte(`{"parent": "block/lamp", "textures": {"all": "block/lamp_on"}}`)},
		"models/block/glass.json": {Data: []byte(`{"textures": {"all": "block/glass"}, "elements": [
			{"from": [0, 0, 0], "to": [16, 16, 16], "faces": {"up": {"texture": "#all"}}}
		]}`)},
		"textures/block/lamp.png":           {Data: solidPNG(t, 16, 16, color.NRGBA{10, 20, 30, 255})},
		"textures/block/lamp_on.png":        {Data: solidPNG(t, 16, 32, color.NRGBA{200, 200, 100, 255})},
		"textures/block/lamp_on.png.mcmeta": {Data: []byte(`{"animation": {"frametime": 3}}`)},
	}
	return render.NewResolver(rp.NewFSSource(fsys), render.Options{})
}

func TestCompress(t *testing.T) {
	for _, buf := range [][]byte{
		{},
		{1, 2, 3, 4},
		bytes.Repeat([]byte{7, 7, 7, 255}, 256),
	} {
		comp, err := compress(buf)
		require.NoError(t, err)
		back, err := decompress(comp)
		require.NoError(t, err)
		assert.Equal(t, buf, back)
	}

	_, err := decompress([]byte{9, 1, 2})
	assert.Error(t, err)
}

func TestExportJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "blocks.jsonl.zst")
	sink, err := Open(path)
	require.NoError(t, err)

	n, err := Export(context.Background(), testResolver(t), sink, nil, []render.Direction{render.Up}, nil)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.Equal(t, 3, n)

	type line struct {
		Block     string          `json:"block"`
		State     string          `json:"state"`
		Rendering json.RawMessage `json:"rendering"`
		Err       string          `json:"error"`
	}
	var lines []line
	require.NoError(t, ReadJSONL(path, func(raw json.RawMessage) error {
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	}))
	require.Len(t, lines, 3)

	assert.Equal(t, "glass", lines[0].Block)
	assert.Empty(t, lines[0].State)
	assert.Contains(t, lines[0].Err, "definition not found")
	assert.Nil(t, lines[0].Rendering)

	assert.Equal(t, "lamp", lines[1].Block)
	assert.Equal(t, "lit=false", lines[1].State)
	assert.Empty(t, lines[1].Err)
	assert.Contains(t, string(lines[1].Rendering), `"kind":"single"`)

	assert.Equal(t, "lit=true", lines[2].State)
	assert.Contains(t, string(lines[2].Rendering), `"frames"`)
}

func TestExportSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.db")
	sink, err := Open(path)
	require.NoError(t, err)
	db := sink.(*SQLite)
	defer db.Close()

	faces := []render.Direction{render.Up, render.North}
	n, err := Export(context.Background(), testResolver(t), db, []string{"lamp"}, faces, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	off, err := db.Faces("lamp", "lit=false")
	require.NoError(t, err)
	require.Len(t, off, 2)
	assert.Equal(t, "up", off[0].Face)
	assert.Equal(t, "north", off[1].Face)
	assert.Equal(t, "textures/block/lamp.png", off[0].Texture)
	assert.Equal(t, 16, off[0].Width)
	assert.Equal(t, "opaque", off[0].Opacity)
	assert.Nil(t, off[0].Durations)
	require.Len(t, off[0].Pixels, 16*16*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, off[0].Pixels[:4])

	on, err := db.Faces("lamp", "lit=true")
	require.NoError(t, err)
	require.Len(t, on, 2)
	assert.Equal(t, []int{3, 3}, on[0].Durations)
	assert.Len(t, on[0].Pixels, 2*16*16*4)

	// exporting again replaces the old rows
	_, err = Export(context.Background(), testResolver(t), db, []string{"lamp"}, faces[:1], nil)
	require.NoError(t, err)
	off, err = db.Faces("lamp", "lit=false")
	require.NoError(t, err)
	assert.Len(t, off, 1)
}

func TestOpenUnknownExtension(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "blocks.csv"))
	assert.Error(t, err)
}
