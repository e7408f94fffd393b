package render

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

// VariantState is the concrete key=value assignment of one block instance,
// like {"facing": "north", "lit": "true"}.
type VariantState map[string]string

// ParseState parses "k=v,k=v" (the blockstate variant key syntax).
// The empty string is the empty state.
func ParseState(s string) (VariantState, error) {
	state := VariantState{}
	if s == "" {
		return state, nil
	}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, errors.Wrapf(rp.ErrMalformed, "state pair %q", pair)
		}
		state[k] = v
	}
	return state, nil
}

// String renders the state in variant key syntax with sorted keys.
func (s VariantState) String() string {
	keys := lo.Keys(s)
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s[k]
	}
	return strings.Join(parts, ",")
}

// StateOption is one state key of a block and the values it can take.
type StateOption struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// StateOptions lists the state keys a blockstate distinguishes on, and
// every value mentioned for each, by variant keys or multipart rules.
func StateOptions(st *rp.BlockState) []StateOption {
	attrs := map[string][]string{}
	add := func(key, value string) {
		if !lo.Contains(attrs[key], value) {
			attrs[key] = append(attrs[key], value)
		}
	}

	for _, v := range st.Variants {
		if v.Key == "" {
			continue
		}
		for _, part := range strings.Split(v.Key, ",") {
			key, value, ok := strings.Cut(part, "=")
			if ok {
				add(key, value)
			}
		}
	}

	for _, part := range st.Multipart {
		if part.When == nil {
			continue
		}
		for _, cond := range part.When.Clauses {
			for key, alts := range cond {
				for _, value := range strings.Split(alts, "|") {
					add(key, value)
				}
			}
		}
	}

	out := make([]StateOption, 0, len(attrs))
	for key, values := range attrs {
		sort.Strings(values)
		out = append(out, StateOption{Key: key, Values: values})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DeclaredStates lists the states a blockstate spells out: one per variant
// key, or for a multipart blockstate the empty state plus one per "when"
// clause, taking the first alternative of each key. Duplicates are dropped.
func DeclaredStates(st *rp.BlockState) []VariantState {
	var out []VariantState
	seen := map[string]bool{}
	add := func(s VariantState) {
		if key := s.String(); !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}

	for _, v := range st.Variants {
		if s, err := ParseState(v.Key); err == nil {
			add(s)
		}
	}
	if st.Multipart != nil {
		add(VariantState{})
		for _, part := range st.Multipart {
			if part.When == nil {
				continue
			}
			for _, cond := range part.When.Clauses {
				s := VariantState{}
				for key, alts := range cond {
					s[key], _, _ = strings.Cut(alts, "|")
				}
				add(s)
			}
		}
	}
	return out
}
