package resourcepack

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

type ModelSpec struct {
	Model  string `json:"model"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
	UVLock *bool  `json:"uvlock,omitempty"`
	Weight *int   `json:"weight,omitempty"`
}

func (m ModelSpec) XRot() int {
	if m.X == nil {
		return 0
	}
	return *m.X
}

func (m ModelSpec) YRot() int {
	if m.Y == nil {
		return 0
	}
	return *m.Y
}

func (m ModelSpec) UVLocked() bool {
	return m.UVLock != nil && *m.UVLock
}

// SelectionWeight is the weight used when picking between several
// specs at random. It defaults to 1.
func (m ModelSpec) SelectionWeight() int {
	if m.Weight == nil {
		return 1
	}
	return *m.Weight
}

// SingleOrSlice wraps a slice with custom JSON marshaling/unmarshaling behavior.
// Single-element slices are encoded as that element, otherwise it's encoded as an array.
type SingleOrSlice[T any] []T

func (s SingleOrSlice[T]) Slice() []T {
	return []T(s)
}

func (s SingleOrSlice[T]) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]T(s))
}

func (s *SingleOrSlice[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]T)(s))
	}
	*s = make([]T, 1)
	return json.Unmarshal(data, &(([]T)(*s))[0])
}

// Combinator says how the clauses of a MatchRule are combined.
type Combinator int

const (
	// CombineFlat rules hold exactly one clause.
	CombineFlat Combinator = iota
	CombineOr
	CombineAnd
)

func (c Combinator) String() string {
	switch c {
	case CombineOr:
		return "OR"
	case CombineAnd:
		return "AND"
	}
	return "flat"
}

// Condition maps a state key to its allowed values, "|" separated.
type Condition map[string]string

// MatchRule is the "when" clause of a multipart entry.
type MatchRule struct {
	Op      Combinator
	Clauses []Condition
}

func (r *MatchRule) UnmarshalJSON(data []byte) error {
	var temp map[string]json.RawMessage
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	orClauses, isOr := temp["OR"]
	andClauses, isAnd := temp["AND"]
	if (isOr || isAnd) && len(temp) != 1 {
		return errors.Wrap(ErrMalformed, "when clause mixes a combinator with other keys")
	}

	var raw []map[string]any
	switch {
	case isOr:
		r.Op = CombineOr
		if err := json.Unmarshal(orClauses, &raw); err != nil {
			return err
		}
	case isAnd:
		r.Op = CombineAnd
		if err := json.Unmarshal(andClauses, &raw); err != nil {
			return err
		}
	default:
		r.Op = CombineFlat
		var single map[string]any
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		raw = []map[string]any{single}
	}

	r.Clauses = make([]Condition, 0, len(raw))
	for _, clause := range raw {
		cond := Condition{}
		for key, value := range clause {
			switch v := value.(type) {
			case string:
				cond[key] = v
			case bool:
				cond[key] = strconv.FormatBool(v)
			case float64:
				cond[key] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				if key == "OR" || key == "AND" {
					return errors.Wrapf(ErrUnsupported, "nested %s combinator", key)
				}
				return errors.Wrapf(ErrMalformed, "when value for %q has type %T", key, value)
			}
		}
		r.Clauses = append(r.Clauses, cond)
	}
	return nil
}

func (r MatchRule) MarshalJSON() ([]byte, error) {
	switch r.Op {
	case CombineOr:
		return json.Marshal(map[string][]Condition{"OR": r.Clauses})
	case CombineAnd:
		return json.Marshal(map[string][]Condition{"AND": r.Clauses})
	}
	if len(r.Clauses) != 1 {
		return nil, errors.Wrapf(ErrMalformed, "flat rule with %d clauses", len(r.Clauses))
	}
	return json.Marshal(r.Clauses[0])
}

type VariantEntry struct {
	Key    string
	Models SingleOrSlice[ModelSpec]
}

// Variants keeps the variant keys of a blockstate in declaration order,
// since the first matching key wins.
type Variants []VariantEntry

func (v *Variants) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.Wrap(ErrMalformed, "invalid variants json")
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return errors.Wrapf(ErrMalformed, "variants is %s, not an object", res.Type)
	}
	out := Variants{}
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		var models SingleOrSlice[ModelSpec]
		if err = json.Unmarshal([]byte(value.Raw), &models); err != nil {
			err = errors.Wrapf(err, "variant %q", key.String())
			return false
		}
		out = append(out, VariantEntry{Key: key.String(), Models: models})
		return true
	})
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func (v Variants) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ent := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ent.Key)
		if err != nil {
			return nil, err
		}
		models, err := json.Marshal(ent.Models)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(models)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup returns the models of the first entry declared under key.
func (v Variants) Lookup(key string) (SingleOrSlice[ModelSpec], bool) {
	for _, ent := range v {
		if ent.Key == key {
			return ent.Models, true
		}
	}
	return nil, false
}

type MultipartEntry struct {
	When  *MatchRule               `json:"when,omitempty"`
	Apply SingleOrSlice[ModelSpec] `json:"apply"`
}

type BlockState struct {
	Variants  Variants         `json:"variants,omitempty"`
	Multipart []MultipartEntry `json:"multipart,omitempty"`
}

type BlockModelFace struct {
	UV        []float64 `json:"uv,omitempty"`
	Texture   string    `json:"texture"`
	CullFace  string    `json:"cullface,omitempty"`
	Rotation  *int      `json:"rotation,omitempty"`
	TintIndex *int      `json:"tintindex,omitempty"`
}

type ElementRotation struct {
	Origin  []float64 `json:"origin,omitempty"`
	Axis    string    `json:"axis,omitempty"`
	Angle   float64   `json:"angle"`
	Rescale *bool     `json:"rescale,omitempty"`
}

type ModelElement struct {
	From     []float64                 `json:"from"`
	To       []float64                 `json:"to"`
	Rotation *ElementRotation          `json:"rotation,omitempty"`
	Shade    *bool                     `json:"shade,omitempty"`
	Faces    map[string]BlockModelFace `json:"faces"`
	Comment  string                    `json:"__comment,omitempty"`
	Name     string                    `json:"name,omitempty"`
}

type ModelTransform struct {
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
	Translation []float64 `json:"translation,omitempty"`
}

type Model struct {
	Parent           string                     `json:"parent,omitempty"`
	AmbientOcclusion *bool                      `json:"ambientocclusion,omitempty"`
	Textures         map[string]string          `json:"textures,omitempty"`
	TextureSize      []int                      `json:"texture_size,omitempty"`
	Elements         []*ModelElement            `json:"elements,omitempty"`
	Display          map[string]*ModelTransform `json:"display,omitempty"`
	GuiLight         string                     `json:"gui_light,omitempty"`
}

// AnimationFrame is one entry of an animation's frame list, written either
// as a bare index or as {"index": n, "time": t}.
type AnimationFrame struct {
	Index int  `json:"index"`
	Time  *int `json:"time,omitempty"`
}

func (f *AnimationFrame) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain AnimationFrame
		return json.Unmarshal(data, (*plain)(f))
	}
	f.Time = nil
	return json.Unmarshal(data, &f.Index)
}

func (f AnimationFrame) MarshalJSON() ([]byte, error) {
	if f.Time == nil {
		return json.Marshal(f.Index)
	}
	type plain AnimationFrame
	return json.Marshal(plain(f))
}

type AnimationMeta struct {
	Width       *int             `json:"width,omitempty"`
	Height      *int             `json:"height,omitempty"`
	Interpolate bool             `json:"interpolate,omitempty"`
	FrameTime   *int             `json:"frametime,omitempty"`
	Frames      []AnimationFrame `json:"frames,omitempty"`
}

type TextureOptions struct {
	Blur  bool `json:"blur,omitempty"`
	Clamp bool `json:"clamp,omitempty"`
}

// TextureMeta is the .mcmeta sidecar of a texture.
type TextureMeta struct {
	Animation *AnimationMeta  `json:"animation,omitempty"`
	Texture   *TextureOptions `json:"texture,omitempty"`
}
