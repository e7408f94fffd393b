package render

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

type modelSource interface {
	Model(ctx context.Context, name string) (*rp.Model, error)
}

// TextureMap maps "#name" to either a texture path or another "#name".
type TextureMap map[string]string

// Model is a block model with its whole parent chain folded in.
type Model struct {
	Name     string             `json:"name"`
	Textures TextureMap         `json:"textures"`
	Elements []*rp.ModelElement `json:"elements"`
}

// Merge loads the model ref names and folds in its parents, root first.
// Child textures override same-named parent ones; child elements, when
// declared, replace the parent's instead of adding to them.
func Merge(ctx context.Context, src modelSource, ref string) (*Model, error) {
	return mergeChain(ctx, src, ref, nil)
}

func mergeChain(ctx context.Context, src modelSource, ref string, chain []string) (*Model, error) {
	if rp.IsBuiltin(ref) {
		return nil, errors.Wrapf(rp.ErrUnsupported, "%s is rendered by code, not a model file", ref)
	}
	name := rp.ModelName(ref)
	for _, seen := range chain {
		if seen == name {
			return nil, errors.Wrapf(rp.ErrCycle, "parent chain %s -> %s", strings.Join(chain, " -> "), name)
		}
	}
	def, err := src.Model(ctx, name)
	if err != nil {
		return nil, err
	}

	model := &Model{Name: name, Textures: TextureMap{}}
	if def.Parent != "" {
		parent, err := mergeChain(ctx, src, def.Parent, append(chain[:len(chain):len(chain)], name))
		if err != nil {
			return nil, errors.Wrapf(err, "parent of %s", name)
		}
		model.Textures = parent.Textures
		model.Elements = parent.Elements
	}

	for key, value := range def.Textures {
		if key == "particle" {
			continue
		}
		if strings.HasPrefix(value, "#") {
			model.Textures["#"+key] = value
		} else {
			model.Textures["#"+key] = rp.TexturePath(value)
		}
	}
	if def.Elements != nil {
		model.Elements = def.Elements
	}
	return model, nil
}

// ResolveAlias follows key through textures until it reaches something
// that isn't an alias.
func ResolveAlias(textures TextureMap, key string) (string, error) {
	value := key
	seen := map[string]bool{}
	for strings.HasPrefix(value, "#") {
		if seen[value] {
			return "", errors.Wrapf(rp.ErrCycle, "texture alias %s", key)
		}
		seen[value] = true
		next, ok := textures[value]
		if !ok {
			return "", errors.Wrapf(rp.ErrNotFound, "texture alias %s (via %s)", value, key)
		}
		value = next
	}
	return value, nil
}

// Texture resolves a face's texture reference to the image path it names.
func (m *Model) Texture(ref string) (string, error) {
	value, err := ResolveAlias(m.Textures, ref)
	if err != nil {
		return "", errors.Wrapf(err, "model %s", m.Name)
	}
	if !strings.HasPrefix(value, "textures/") {
		value = rp.TexturePath(value)
	}
	return value, nil
}
