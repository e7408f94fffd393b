package resourcepack

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Source reads the definitions of one resource pack. Names and paths are
// the ones produced by the helpers in paths.go; implementations must be safe
// for concurrent use.
type Source interface {
	BlockNames(ctx context.Context) ([]string, error)
	BlockState(ctx context.Context, name string) (*BlockState, error)
	Model(ctx context.Context, name string) (*Model, error)
	Texture(ctx context.Context, path string) (image.Image, error)
	TextureMeta(ctx context.Context, path string) (*TextureMeta, error)
}

// FSSource reads a pack laid out as blockstates/, models/block/ and
// textures/block/ at the root of an fs.FS.
type FSSource struct {
	FS fs.FS

	// Validate checks every definition against the embedded JSON schemas
	// before decoding it.
	Validate bool
	// Strict re-encodes every decoded definition and logs any difference
	// from the file contents.
	Strict bool

	Logger *slog.Logger
}

func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{FS: fsys, Logger: slog.Default()}
}

const assetRoot = "assets/minecraft"

// OpenDir opens an extracted pack directory. Both the asset root itself and
// a directory containing assets/minecraft are accepted.
func OpenDir(dir string) *FSSource {
	if st, err := os.Stat(path.Join(dir, assetRoot)); err == nil && st.IsDir() {
		dir = path.Join(dir, assetRoot)
	}
	return NewFSSource(os.DirFS(dir))
}

// OpenJar opens a client jar (or any zip with an assets/minecraft tree).
// The returned closer releases the underlying file.
func OpenJar(jarPath string) (*FSSource, io.Closer, error) {
	jar, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", jarPath)
	}
	sub, err := fs.Sub(jar, assetRoot)
	if err != nil {
		jar.Close()
		return nil, nil, errors.Wrapf(err, "%s has no %s", jarPath, assetRoot)
	}
	return NewFSSource(sub), jar, nil
}

// Open picks OpenJar or OpenDir depending on what packPath is.
func Open(packPath string) (*FSSource, io.Closer, error) {
	st, err := os.Stat(packPath)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrNotFound, "pack %s: %v", packPath, err)
	}
	if st.IsDir() {
		return OpenDir(packPath), nopCloser{}, nil
	}
	return OpenJar(packPath)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (s *FSSource) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *FSSource) readFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return data, nil
}

func (s *FSSource) decode(kind schemaKind, name string, data []byte, v any) error {
	if s.Validate {
		if err := validateDefinition(kind, name, data); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		if errors.Is(err, ErrUnsupported) || errors.Is(err, ErrMalformed) {
			return errors.Wrapf(err, "%s", name)
		}
		return errors.Wrapf(ErrMalformed, "%s: %v", name, err)
	}
	if s.Strict {
		checkRoundTrip(s.logger(), name, data, v)
	}
	return nil
}

func (s *FSSource) BlockNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := fs.Glob(s.FS, "blockstates/*.json")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FSSource) BlockState(ctx context.Context, name string) (*BlockState, error) {
	p := blockStatePath(name)
	data, err := s.readFile(ctx, p)
	if err != nil {
		return nil, err
	}
	bs := &BlockState{}
	if err := s.decode(schemaBlockState, p, data, bs); err != nil {
		return nil, err
	}
	if bs.Variants == nil && bs.Multipart == nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: neither variants nor multipart", p)
	}
	return bs, nil
}

func (s *FSSource) Model(ctx context.Context, name string) (*Model, error) {
	p := modelPath(name)
	data, err := s.readFile(ctx, p)
	if err != nil {
		return nil, err
	}
	model := &Model{}
	if err := s.decode(schemaModel, p, data, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (s *FSSource) Texture(ctx context.Context, texPath string) (image.Image, error) {
	data, err := s.readFile(ctx, texPath)
	if err != nil {
		return nil, err
	}
	tex, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: %v", texPath, err)
	}
	return tex, nil
}

// TextureMeta returns the .mcmeta sidecar of texPath, or ErrNotFound when
// the texture has none.
func (s *FSSource) TextureMeta(ctx context.Context, texPath string) (*TextureMeta, error) {
	p := MetaPath(texPath)
	data, err := s.readFile(ctx, p)
	if err != nil {
		return nil, err
	}
	meta := &TextureMeta{}
	if err := s.decode(schemaMeta, p, data, meta); err != nil {
		return nil, err
	}
	return meta, nil
}
