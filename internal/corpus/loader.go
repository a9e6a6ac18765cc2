package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	apperrors "github.com/uigen/patternmatch/internal/errors"
)

// Loader reads a corpus file and produces validated snapshots. It is the
// engine's only pattern source: this subsystem never fetches or persists
// patterns itself.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given corpus file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the corpus file path.
func (l *Loader) Path() string { return l.path }

// Load reads, decodes, and validates the corpus file into a Snapshot.
func (l *Loader) Load() (*Snapshot, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidCorpus,
			fmt.Sprintf("open corpus file %s", l.path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close corpus file", slog.String("error", cerr.Error()))
		}
	}()

	snap, err := Decode(f)
	if err != nil {
		return nil, err
	}

	slog.Info("corpus loaded",
		slog.String("path", l.path),
		slog.Int("patterns", snap.Len()),
		slog.Int("embedded", len(snap.Embeddings())),
		slog.Int("dimensions", snap.Dimensions()))

	return snap, nil
}

// Decode reads a corpus File document from r and builds a Snapshot.
// An empty corpus is valid and yields an empty snapshot.
func Decode(r io.Reader) (*Snapshot, error) {
	var file File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidCorpus, "decode corpus", err)
	}

	snap, err := NewSnapshot(file.Patterns, file.Embeddings)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidCorpus, "validate corpus", err)
	}
	return snap, nil
}
