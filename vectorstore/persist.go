package vectorstore

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// The index persists as two co-located artifacts: the raw vectors at path
// and the id/text side-table at path+metaSuffix. Both are written
// whole-file; there is no partial or streaming load, and a crash between
// the two writes leaves them inconsistent. The loader checks only the
// header and dimension; vector positions without a side-table entry are
// skipped at search time.
const metaSuffix = ".meta.json"

var indexMagic = [4]byte{'C', 'A', 'V', 'X'}

type metaFile struct {
	Dimension int      `json:"dimension"`
	ClauseIDs []int    `json:"clause_ids"`
	Texts     []string `json:"texts"`
}

// MetaPath returns the side-table path for an index path.
func MetaPath(indexPath string) string {
	return indexPath + metaSuffix
}

// Save writes the index and its side-table next to each other.
func (s *Store) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(indexMagic[:]); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(s.dim)); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.vectors))); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	for _, vec := range s.vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("failed to write vectors: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush index file: %w", err)
	}

	meta := metaFile{
		Dimension: s.dim,
		ClauseIDs: s.ids,
		Texts:     s.texts,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal index metadata: %w", err)
	}
	if err := os.WriteFile(MetaPath(path), data, 0644); err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}

	return nil
}

// Load restores a saved index in place, replacing any current contents.
// It needs no embedder; only Add and Search do.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("failed to read index header: %w", err)
	}
	if magic != indexMagic {
		return fmt.Errorf("not an index file: %s", path)
	}

	var dim, count uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("failed to read index header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("failed to read index header: %w", err)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("failed to read vector %d: %w", i, err)
		}
		vectors[i] = vec
	}

	metaData, err := os.ReadFile(MetaPath(path))
	if err != nil {
		return fmt.Errorf("failed to read index metadata: %w", err)
	}
	var meta metaFile
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return fmt.Errorf("failed to parse index metadata: %w", err)
	}
	if meta.Dimension != int(dim) {
		return fmt.Errorf("metadata dimension %d does not match index %d", meta.Dimension, dim)
	}

	s.dim = int(dim)
	s.vectors = vectors
	s.ids = meta.ClauseIDs
	s.texts = meta.Texts
	return nil
}
