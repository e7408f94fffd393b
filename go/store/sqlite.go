package store

import (
	"database/sql"
	"strconv"
	"strings"

	lz4 "github.com/DataDog/golz4-2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/rmmh/blockfaces/go/render"
)

const schema = `
CREATE TABLE IF NOT EXISTS rendering (
	block TEXT NOT NULL,
	state TEXT NOT NULL,
	kind TEXT,
	error TEXT,
	PRIMARY KEY (block, state)
);
CREATE TABLE IF NOT EXISTS face (
	block TEXT NOT NULL,
	state TEXT NOT NULL,
	model_index INTEGER NOT NULL,
	model TEXT NOT NULL,
	weight INTEGER NOT NULL,
	cuboid INTEGER NOT NULL,
	face TEXT NOT NULL,
	model_face TEXT NOT NULL,
	texture TEXT NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	rotation INTEGER NOT NULL,
	durations TEXT,
	interpolate INTEGER NOT NULL,
	opacity TEXT NOT NULL,
	pixels BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS face_state ON face (block, state);
`

// Pixel blob layouts. The first byte of every blob names one.
const (
	// frames of raw RGBA rows, back to back, lz4 compressed
	pixelsRGBALZ4 = 0
)

func compress(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return []byte{pixelsRGBALZ4}, nil
	}
	comp := make([]byte, lz4.CompressBoundHdr(buf)+1)
	n, err := lz4.CompressHCHdr(comp[1:], buf)
	if err != nil {
		return nil, err
	}
	comp[0] = pixelsRGBALZ4
	return comp[:n+1], nil
}

func decompress(buf []byte) ([]byte, error) {
	if len(buf) == 0 || buf[0] != pixelsRGBALZ4 {
		return nil, errors.New("unknown pixel blob format")
	}
	if len(buf) == 1 {
		return []byte{}, nil
	}
	return lz4.UncompressAllocHdr(nil, buf[1:])
}

func flatten(pixels []render.Pixel) []byte {
	out := make([]byte, 0, 4*len(pixels))
	for _, p := range pixels {
		out = append(out, p[:]...)
	}
	return out
}

// SQLite writes renderings to a database with one row per block state and
// one per extracted face.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating tables in %s", path)
	}
	return &SQLite{db: db}, nil
}

func renderingKind(r render.Rendered) string {
	switch r.(type) {
	case render.RenderedSingle:
		return "single"
	case render.RenderedWeighted:
		return "weighted"
	case render.RenderedMultipart:
		return "multipart"
	}
	return ""
}

// Write replaces whatever was stored for the record's block state.
func (s *SQLite) Write(rec Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM face WHERE block=? AND state=?", rec.Block, rec.State); err != nil {
		return err
	}
	_, err = tx.Exec("INSERT OR REPLACE INTO rendering (block, state, kind, error) VALUES (?, ?, ?, ?)",
		rec.Block, rec.State, renderingKind(rec.Rendering), rec.Err)
	if err != nil {
		return err
	}

	if rec.Rendering != nil {
		stmt, err := tx.Prepare(`INSERT INTO face (block, state, model_index, model, weight, cuboid, face, model_face,
			texture, width, height, rotation, durations, interpolate, opacity, pixels)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, m := range rec.Rendering.Models() {
			for cuboid, faces := range m.Cuboids {
				for _, f := range faces {
					row, err := faceRow(f)
					if err != nil {
						return errors.Wrapf(err, "%s[%s] %s", rec.Block, rec.State, m.Ref.Model)
					}
					_, err = stmt.Exec(rec.Block, rec.State, i, m.Ref.Model, m.Ref.Weight, cuboid,
						string(f.Face), string(f.ModelFace), f.Texture, row.width, row.height, row.rotation,
						row.durations, row.interpolate, f.Image.Opacity().String(), row.pixels)
					if err != nil {
						return err
					}
				}
			}
		}
	}
	return tx.Commit()
}

type faceColumns struct {
	width, height, rotation int
	durations               sql.NullString
	interpolate             bool
	pixels                  []byte
}

func faceRow(f render.FaceRender) (faceColumns, error) {
	var row faceColumns
	var raw []byte
	switch img := f.Image.(type) {
	case *render.StaticFace:
		row.width, row.height, row.rotation = img.Width, img.Height, img.Rotation
		raw = flatten(img.Pixels)
	case *render.AnimatedFace:
		row.width, row.height, row.rotation = img.FrameWidth, img.FrameHeight, img.Rotation
		row.interpolate = img.Interpolate
		durations := make([]string, len(img.Frames))
		for i, frame := range img.Frames {
			durations[i] = strconv.Itoa(frame.Duration)
			raw = append(raw, flatten(frame.Pixels)...)
		}
		row.durations = sql.NullString{String: strings.Join(durations, ","), Valid: true}
	default:
		return row, errors.Errorf("unknown face image %T", f.Image)
	}
	var err error
	row.pixels, err = compress(raw)
	return row, err
}

// StoredFace is a face read back from the database. Pixels holds every
// frame's RGBA rows back to back.
type StoredFace struct {
	Model     string
	Cuboid    int
	Face      string
	Texture   string
	Width     int
	Height    int
	Durations []int
	Opacity   string
	Pixels    []byte
}

func (s *SQLite) Faces(block, state string) ([]StoredFace, error) {
	rows, err := s.db.Query(`SELECT model, cuboid, face, texture, width, height, durations, opacity, pixels
		FROM face WHERE block=? AND state=? ORDER BY rowid`, block, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredFace
	for rows.Next() {
		var f StoredFace
		var durations sql.NullString
		var blob []byte
		if err := rows.Scan(&f.Model, &f.Cuboid, &f.Face, &f.Texture, &f.Width, &f.Height, &durations, &f.Opacity, &blob); err != nil {
			return nil, err
		}
		if durations.Valid && durations.String != "" {
			for _, d := range strings.Split(durations.String, ",") {
				n, err := strconv.Atoi(d)
				if err != nil {
					return nil, errors.Wrapf(err, "durations of %s %s", block, f.Face)
				}
				f.Durations = append(f.Durations, n)
			}
		}
		if f.Pixels, err = decompress(blob); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
