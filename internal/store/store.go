// Package store hydrates the in-process corpus structures (docs, dense
// indices, BM25 stores) from a store directory at startup. Index
// construction and incremental updates are out of scope; Load only ever
// reads a directory produced ahead of time by the offline corpus-ingestion
// pipeline.
package store

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseon-annals/rag-service/internal/model"
	"github.com/joseon-annals/rag-service/internal/retrieval/bm25"
	"github.com/joseon-annals/rag-service/internal/retrieval/dense"
)

// Store bundles everything the retrieval pipeline needs: the corpus,
// the three logical dense-index variants (any may be nil), and the
// two BM25 variants (either may be nil).
type Store struct {
	Docs []model.Doc

	Full    *dense.Index
	Summary *dense.Index
	Title   *dense.Index

	BM25      *bm25.Store
	BM25Title *bm25.Store
}

// NamedIndex pairs a dense index with its logical channel name.
type NamedIndex struct {
	Name  string
	Index *dense.Index
}

// Indices returns the non-nil named dense-index variants this store
// has available, in a stable iteration order (full, sum, title).
func (s *Store) Indices() []NamedIndex {
	var out []NamedIndex
	if s.Full != nil {
		out = append(out, NamedIndex{"full", s.Full})
	}
	if s.Summary != nil {
		out = append(out, NamedIndex{"sum", s.Summary})
	}
	if s.Title != nil {
		out = append(out, NamedIndex{"title", s.Title})
	}
	return out
}

// Load hydrates a Store from dir. index.faiss (Go-native gob encoding of
// a dense.Index, despite the filename kept for on-disk compatibility with
// the offline builder's directory layout) is required; index_summary.faiss,
// index_title.faiss, bm25.pkl, and bm25_title.pkl are optional and treated
// as absent channels when missing. meta.jsonl is one JSON object per line,
// blank lines skipped.
func Load(dir string) (*Store, error) {
	full, err := loadDenseIndex(filepath.Join(dir, "index.faiss"))
	if err != nil {
		return nil, fmt.Errorf("store.Load: required index.faiss: %w", err)
	}

	docs, err := loadMetas(filepath.Join(dir, "meta.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("store.Load: meta.jsonl: %w", err)
	}

	s := &Store{Docs: docs, Full: full}

	if idx, ok, err := tryLoadDenseIndex(filepath.Join(dir, "index_summary.faiss")); err != nil {
		return nil, fmt.Errorf("store.Load: index_summary.faiss: %w", err)
	} else if ok {
		s.Summary = idx
	}

	if idx, ok, err := tryLoadDenseIndex(filepath.Join(dir, "index_title.faiss")); err != nil {
		return nil, fmt.Errorf("store.Load: index_title.faiss: %w", err)
	} else if ok {
		s.Title = idx
	}

	if b, ok, err := tryLoadBM25(filepath.Join(dir, "bm25.pkl")); err != nil {
		return nil, fmt.Errorf("store.Load: bm25.pkl: %w", err)
	} else if ok {
		s.BM25 = b
	}

	if b, ok, err := tryLoadBM25(filepath.Join(dir, "bm25_title.pkl")); err != nil {
		return nil, fmt.Errorf("store.Load: bm25_title.pkl: %w", err)
	} else if ok {
		s.BM25Title = b
	}

	return s, nil
}

func loadMetas(path string) ([]model.Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []model.Doc
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		trimmed := bytesTrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		var d model.Doc
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func bytesTrimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func loadDenseIndex(path string) (*dense.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var idx dense.Index
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

func tryLoadDenseIndex(path string) (*dense.Index, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	idx, err := loadDenseIndex(path)
	if err != nil {
		return nil, false, err
	}
	return idx, true, nil
}

func tryLoadBM25(path string) (*bm25.Store, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	var b bm25.Store
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, false, err
	}
	return &b, true, nil
}

// Save writes a Store to dir in the gob-native encoding Load expects.
// Used by tests and by any offline tooling that wants to materialize a
// store directory without going through the original Python builder.
func Save(dir string, s *Store) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}
	if err := saveDenseIndex(filepath.Join(dir, "index.faiss"), s.Full); err != nil {
		return fmt.Errorf("store.Save: index.faiss: %w", err)
	}
	if s.Summary != nil {
		if err := saveDenseIndex(filepath.Join(dir, "index_summary.faiss"), s.Summary); err != nil {
			return fmt.Errorf("store.Save: index_summary.faiss: %w", err)
		}
	}
	if s.Title != nil {
		if err := saveDenseIndex(filepath.Join(dir, "index_title.faiss"), s.Title); err != nil {
			return fmt.Errorf("store.Save: index_title.faiss: %w", err)
		}
	}
	if s.BM25 != nil {
		if err := saveBM25(filepath.Join(dir, "bm25.pkl"), s.BM25); err != nil {
			return fmt.Errorf("store.Save: bm25.pkl: %w", err)
		}
	}
	if s.BM25Title != nil {
		if err := saveBM25(filepath.Join(dir, "bm25_title.pkl"), s.BM25Title); err != nil {
			return fmt.Errorf("store.Save: bm25_title.pkl: %w", err)
		}
	}
	if err := saveMetas(filepath.Join(dir, "meta.jsonl"), s.Docs); err != nil {
		return fmt.Errorf("store.Save: meta.jsonl: %w", err)
	}
	return nil
}

func saveDenseIndex(path string, idx *dense.Index) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(idx)
}

func saveBM25(path string, b *bm25.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(b)
}

func saveMetas(path string, docs []model.Doc) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return w.Flush()
}
