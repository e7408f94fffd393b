package resourcepack

import (
	"path"
	"strings"
)

// StripNamespace removes a leading "namespace:" from a resource reference.
func StripNamespace(ref string) string {
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// RemoveDefaultPrefix drops the "minecraft:" namespace and nothing else.
func RemoveDefaultPrefix(ref string) string {
	return strings.TrimPrefix(ref, "minecraft:")
}

// ModelName maps a model reference like "minecraft:block/oak_log" to the
// name of its file under models/block ("oak_log").
func ModelName(ref string) string {
	return path.Base(StripNamespace(ref))
}

// IsBuiltin reports whether ref names a model that is rendered by code
// instead of being described by a file (builtin/entity, builtin/generated).
func IsBuiltin(ref string) bool {
	return strings.HasPrefix(StripNamespace(ref), "builtin/")
}

// TexturePath maps a texture reference like "minecraft:block/stone" to the
// image file it names, relative to the pack root.
func TexturePath(ref string) string {
	return "textures/block/" + path.Base(StripNamespace(ref)) + ".png"
}

// MetaPath is the animation/metadata sidecar of a texture file.
func MetaPath(texturePath string) string {
	return texturePath + ".mcmeta"
}

func blockStatePath(name string) string {
	return "blockstates/" + path.Base(StripNamespace(name)) + ".json"
}

func modelPath(name string) string {
	return "models/block/" + ModelName(name) + ".json"
}
