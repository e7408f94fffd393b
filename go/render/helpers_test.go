package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

// gradient returns a w x h image whose pixel (x, y) is {x, y, 0, 255}.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	return img
}

// sheet returns a sprite sheet of size x size frames in a cols x rows grid.
// Pixel (x, y) of frame i is {i, x, y, 255}.
func sheet(cols, rows, size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols*size, rows*size))
	for y := 0; y < rows*size; y++ {
		for x := 0; x < cols*size; x++ {
			i := y/size*cols + x/size
			img.SetNRGBA(x, y, color.NRGBA{uint8(i), uint8(x % size), uint8(y % size), 255})
		}
	}
	return img
}

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

const cubeAll = `{
	"textures": {"particle": "#all"},
	"elements": [{"from": [0, 0, 0], "to": [16, 16, 16], "faces": {
		"down":  {"texture": "#down", "cullface": "down"},
		"up":    {"texture": "#up", "cullface": "up"},
		"north": {"texture": "#north", "cullface": "north"},
		"south": {"texture": "#south", "cullface": "south"},
		"west":  {"texture": "#west", "cullface": "west"},
		"east":  {"texture": "#east", "cullface": "east"}
	}}]
}`

// testPack is a small pack with a column block, a weighted block, a fence
// like multipart block and an animated texture.
func testPack(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"blockstates/oak_log.json": file(`{"variants": {
			"axis=x": {"model": "minecraft:block/oak_log_horizontal", "x": 90, "y": 90},
			"axis=y": {"model": "minecraft:block/oak_log"},
			"axis=z": {"model": "minecraft:block/oak_log_horizontal", "x": 90}
		}}`),
		"blockstates/stone.json": file(`{"variants": {"": [
			{"model": "minecraft:block/stone"},
			{"model": "minecraft:block/stone_mirrored", "weight": 3}
		]}}`),
		"blockstates/fence.json": file(`{"multipart": [
			{"apply": {"model": "minecraft:block/fence_post"}},
			{"when": {"north": "true"}, "apply": {"model": "minecraft:block/fence_side", "uvlock": true}},
			{"when": {"east": "true"}, "apply": {"model": "minecraft:block/missing_side", "y": 90}}
		]}`),
		"blockstates/ghost.json": file(`{"variants": {"": [
			{"model": "minecraft:block/nothing"},
			{"model": "minecraft:block/builtin_child"}
		]}}`),
		"blockstates/grass.json": file(`{"variants": {"": {"model": "minecraft:block/grass"}}}`),
		"blockstates/fire.json":  file(`{"variants": {"": {"model": "minecraft:block/fire"}}}`),

		"models/block/cube.json": file(cubeAll),
		"models/block/cube_all.json": file(`{"parent": "block/cube", "textures": {
			"down": "#all", "up": "#all", "north": "#all", "south": "#all", "west": "#all", "east": "#all"
		}}`),
		"models/block/cube_column.json": file(`{"parent": "block/cube", "textures": {
			"down": "#end", "up": "#end", "north": "#side", "south": "#side", "west": "#side", "east": "#side"
		}}`),
		"models/block/oak_log.json": file(`{"parent": "minecraft:block/cube_column", "textures": {
			"end": "minecraft:block/oak_log_top", "side": "minecraft:block/oak_log"
		}}`),
		"models/block/oak_log_horizontal.json": file(`{"parent": "minecraft:block/oak_log"}`),
		"models/block/stone.json":              file(`{"parent": "block/cube_all", "textures": {"all": "block/stone"}}`),
		"models/block/stone_mirrored.json": file(`{"textures": {"all": "block/stone"}, "elements": [
			{"from": [0, 0, 0], "to": [16, 16, 16], "faces": {"up": {"uv": [16, 0, 0, 16], "texture": "#all"}}}
		]}`),
		"models/block/fence_post.json": file(`{"textures": {"texture": "block/oak_planks"}, "elements": [
			{"from": [6, 0, 6], "to": [10, 16, 10], "faces": {
				"up": {"texture": "#texture"}, "north": {"texture": "#texture"}
			}}
		]}`),
		"models/block/fence_side.json": file(`{"textures": {"texture": "block/oak_planks"}, "elements": [
			{"from": [7, 12, 0], "to": [9, 15, 9], "faces": {"north": {"texture": "#texture"}}}
		]}`),
		"models/block/builtin_child.json": file(`{"parent": "builtin/entity"}`),
		"models/block/grass.json": file(`{"textures": {"top": "block/grass_top"}, "elements": [
			{"from": [0, 0, 0], "to": [16, 16, 16], "faces": {"up": {"texture": "#top", "tintindex": 0}}}
		]}`),
		"models/block/fire.json": file(`{"textures": {"fire": "block/fire"}, "elements": [
			{"from": [0, 0, 0], "to": [16, 16, 16], "faces": {"north": {"uv": [0, 0, 16, 16], "texture": "#fire"}}}
		]}`),

		"textures/block/oak_log.png":     {Data: encode(t, gradient(16, 16))},
		"textures/block/oak_log_top.png": {Data: encode(t, gradient(16, 16))},
		"textures/block/stone.png":       {Data: encode(t, gradient(16, 16))},
		"textures/block/oak_planks.png":  {Data: encode(t, gradient(16, 16))},
		"textures/block/grass_top.png":   {Data: encode(t, gradient(16, 16))},
		"textures/block/fire.png":        {Data: encode(t, sheet(1, 4, 16))},
		"textures/block/fire.png.mcmeta": file(`{"animation": {"frametime": 2, "interpolate": true}}`),
	}
}
