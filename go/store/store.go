// Package store persists renderings: one Record per block state.
package store

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/rmmh/blockfaces/go/render"
)

type Record struct {
	Block     string          `json:"block"`
	State     string          `json:"state"`
	Rendering render.Rendered `json:"rendering,omitempty"`
	Err       string          `json:"error,omitempty"`
}

type Sink interface {
	Write(rec Record) error
	Close() error
}

// Open picks a sink by file extension: ".db" for SQLite and ".jsonl.zst"
// for compressed JSON lines.
func Open(path string) (Sink, error) {
	var sink Sink
	var err error
	switch {
	case strings.HasSuffix(path, ".jsonl.zst"):
		sink, err = CreateJSONL(path)
	case filepath.Ext(path) == ".db" || filepath.Ext(path) == ".sqlite":
		sink, err = OpenSQLite(path)
	default:
		return nil, errors.Errorf("don't know how to write %s (want .db or .jsonl.zst)", path)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}
