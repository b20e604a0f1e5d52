// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package snapshot persists the builder output and loads it back.
//
// A snapshot directory holds two files written atomically:
//
//	movies.json     manifest and movie table (id, title, tags) in corpus order
//	similarity.bin  "RMSIM001" | n (uint64 LE) | n*n float32 LE | CRC-32 (IEEE)
//
// Row i of the matrix always describes movies[i]. The matrix is written
// first and the movie table last; the manifest records the matrix checksum,
// so Read refuses a pair from different builds.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/ingest"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/similarity"
)

const (
	// FormatVersion is bumped on incompatible layout changes.
	FormatVersion = 2

	MoviesFile     = "movies.json"
	SimilarityFile = "similarity.bin"

	matrixMagic = "RMSIM001"
	headerSize  = len(matrixMagic) + 8
)

var (
	// ErrCorrupt means an artifact failed to parse or its checksum is wrong.
	ErrCorrupt = errors.New("snapshot corrupt")

	// ErrMismatch means the movie table and matrix do not describe the same corpus.
	ErrMismatch = errors.New("snapshot movie table and similarity matrix disagree")
)

// Manifest describes how a snapshot was built.
type Manifest struct {
	FormatVersion  int               `json:"format_version"`
	BuiltAt        time.Time         `json:"built_at"`
	Movies         int               `json:"movies"`
	VocabularySize int               `json:"vocabulary_size"`
	MaxVocabulary  int               `json:"max_vocabulary"`
	Merge          ingest.MergeStats `json:"merge"`
	DegradedFields map[string]int    `json:"degraded_fields,omitempty"`

	// MatrixChecksum is the CRC-32 trailer of the similarity file this
	// table was written with.
	MatrixChecksum uint32 `json:"matrix_crc32"`
}

// Snapshot is the full builder output.
type Snapshot struct {
	Manifest Manifest
	Movies   []models.Movie
	Matrix   *similarity.Matrix
}

type moviesDocument struct {
	Manifest Manifest       `json:"manifest"`
	Movies   []models.Movie `json:"movies"`
}

// Write stores snap under dir, creating it if needed. Each file is written
// to a temporary name and renamed into place. The movie table commits the
// snapshot: if any step fails the previous table stays in place and no
// longer matches the matrix checksum, so Read rejects the pair.
func Write(dir string, snap *Snapshot) error {
	if snap.Matrix == nil {
		return fmt.Errorf("%w: nil matrix", ErrMismatch)
	}
	if snap.Matrix.Len() != len(snap.Movies) {
		return fmt.Errorf("%w: %d movies, %d matrix rows", ErrMismatch, len(snap.Movies), snap.Matrix.Len())
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	doc := moviesDocument{Manifest: snap.Manifest, Movies: snap.Movies}
	doc.Manifest.FormatVersion = FormatVersion
	doc.Manifest.Movies = len(snap.Movies)
	if doc.Movies == nil {
		doc.Movies = []models.Movie{}
	}

	var checksum uint32
	if err := writeAtomic(filepath.Join(dir, SimilarityFile), func(w io.Writer) error {
		var err error
		checksum, err = encodeMatrix(w, snap.Matrix)
		return err
	}); err != nil {
		return fmt.Errorf("write similarity matrix: %w", err)
	}
	doc.Manifest.MatrixChecksum = checksum

	if err := writeAtomic(filepath.Join(dir, MoviesFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		return enc.Encode(doc)
	}); err != nil {
		return fmt.Errorf("write movie table: %w", err)
	}

	logging.Info().
		Str("dir", dir).
		Int("movies", len(snap.Movies)).
		Msg("Snapshot written")
	return nil
}

// Read loads and verifies the snapshot in dir.
func Read(dir string) (*Snapshot, error) {
	raw, err := os.ReadFile(filepath.Join(dir, MoviesFile))
	if err != nil {
		return nil, fmt.Errorf("read movie table: %w", err)
	}
	var doc moviesDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: movie table: %v", ErrCorrupt, err)
	}
	if doc.Manifest.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, doc.Manifest.FormatVersion)
	}

	f, err := os.Open(filepath.Join(dir, SimilarityFile))
	if err != nil {
		return nil, fmt.Errorf("open similarity matrix: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat similarity matrix: %w", err)
	}

	matrix, checksum, err := decodeMatrix(bufio.NewReaderSize(f, 1<<20), info.Size())
	if err != nil {
		return nil, err
	}

	if matrix.Len() != len(doc.Movies) || doc.Manifest.Movies != len(doc.Movies) {
		return nil, fmt.Errorf("%w: manifest %d, movies %d, matrix rows %d",
			ErrMismatch, doc.Manifest.Movies, len(doc.Movies), matrix.Len())
	}
	if checksum != doc.Manifest.MatrixChecksum {
		return nil, fmt.Errorf("%w: matrix checksum %08x, manifest expects %08x",
			ErrMismatch, checksum, doc.Manifest.MatrixChecksum)
	}

	return &Snapshot{Manifest: doc.Manifest, Movies: doc.Movies, Matrix: matrix}, nil
}

func writeAtomic(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	w := bufio.NewWriterSize(tmp, 1<<20)
	if err := fill(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// encodeMatrix writes m and returns the checksum it appended.
func encodeMatrix(w io.Writer, m *similarity.Matrix) (uint32, error) {
	crc := crc32.NewIEEE()
	out := io.MultiWriter(w, crc)

	header := make([]byte, headerSize)
	copy(header, matrixMagic)
	binary.LittleEndian.PutUint64(header[len(matrixMagic):], uint64(m.Len()))
	if _, err := out.Write(header); err != nil {
		return 0, err
	}

	buf := make([]byte, 4*m.Len())
	for i := 0; i < m.Len(); i++ {
		for j, v := range m.Row(i) {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(v))
		}
		if _, err := out.Write(buf); err != nil {
			return 0, err
		}
	}

	checksum := crc.Sum32()
	var sum [4]byte
	binary.LittleEndian.PutUint32(sum[:], checksum)
	if _, err := w.Write(sum[:]); err != nil {
		return 0, err
	}
	return checksum, nil
}

const maxRows = 1 << 20

// decodeMatrix reads a matrix file of the given total size and returns it
// with its verified checksum. The size is checked against the header before
// anything is allocated.
func decodeMatrix(r io.Reader, size int64) (*similarity.Matrix, uint32, error) {
	crc := crc32.NewIEEE()
	in := io.TeeReader(r, crc)

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(in, header); err != nil {
		return nil, 0, fmt.Errorf("%w: matrix header: %v", ErrCorrupt, err)
	}
	if string(header[:len(matrixMagic)]) != matrixMagic {
		return nil, 0, fmt.Errorf("%w: bad matrix magic", ErrCorrupt)
	}
	n64 := binary.LittleEndian.Uint64(header[len(matrixMagic):])
	if n64 > maxRows {
		return nil, 0, fmt.Errorf("%w: matrix dimension %d too large", ErrCorrupt, n64)
	}
	n := int(n64)
	if want := int64(headerSize) + 4*int64(n)*int64(n) + 4; size != want {
		return nil, 0, fmt.Errorf("%w: matrix file is %d bytes, want %d for n=%d", ErrCorrupt, size, want, n)
	}

	data := make([]float32, n*n)
	buf := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(in, buf); err != nil {
			return nil, 0, fmt.Errorf("%w: matrix row %d: %v", ErrCorrupt, i, err)
		}
		row := data[i*n : (i+1)*n]
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
	}

	var sum [4]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: matrix checksum: %v", ErrCorrupt, err)
	}
	if binary.LittleEndian.Uint32(sum[:]) != crc.Sum32() {
		return nil, 0, fmt.Errorf("%w: matrix checksum mismatch", ErrCorrupt)
	}

	m, err := similarity.NewMatrix(n, data)
	if err != nil {
		return nil, 0, err
	}
	return m, crc.Sum32(), nil
}
