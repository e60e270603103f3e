// Package gamefile reads and writes game lists: a JSON array of game records,
// optionally delivered inside a zip or gzip archive.
package gamefile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/models"
)

// ErrEmptyArchive is returned when a zip archive has no file entries.
var ErrEmptyArchive = errors.New("archive contains no files")

var (
	zipMagic  = []byte("PK\x03\x04")
	gzipMagic = []byte{0x1f, 0x8b}
)

// Read loads a JSON game list from path.
func Read(path string) ([]models.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read game file %s", path)
	}
	games, err := DecodeArchive(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode game file %s", path)
	}
	return games, nil
}

// Write stores games as a JSON list at path, creating parent directories.
func Write(path string, games []models.Game) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory for %s", path)
		}
	}
	if games == nil {
		games = []models.Game{}
	}
	data, err := sonic.Marshal(games)
	if err != nil {
		return errors.Wrap(err, "encode games")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write game file %s", path)
	}
	return nil
}

// Decode parses a JSON game list from r.
func Decode(r io.Reader) ([]models.Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read games")
	}
	return decodeJSON(data)
}

// DecodeArchive parses data that is a zip archive (first file entry), a gzip
// stream, or a plain JSON list.
func DecodeArchive(data []byte) ([]models.Game, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return decodeZip(data)
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer zr.Close()
		return Decode(zr)
	default:
		return decodeJSON(data)
	}
}

func decodeZip(data []byte) ([]models.Game, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "open zip archive")
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", f.Name)
		}
		defer rc.Close()
		return Decode(rc)
	}
	return nil, ErrEmptyArchive
}

func decodeJSON(data []byte) ([]models.Game, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Game{}, nil
	}
	var games []models.Game
	if err := sonic.Unmarshal(data, &games); err != nil {
		return nil, errors.Wrap(err, "decode game list")
	}
	return games, nil
}
