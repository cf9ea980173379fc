// Package sqlitestore persists the vector index in a SQLite database so
// that re-running the agent against unchanged documents skips re-embedding.
// Vectors are held in memory for search; the database is the durable copy.
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"

	"hragent/internal/domain"
)

// Storage is an on-disk vector store. Search behaves like the in-memory
// store: brute-force cosine with ties broken by insertion order.
type Storage struct {
	mu        sync.RWMutex
	db        *sql.DB
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

// Open opens or creates a SQLite index at the given path and loads any
// previously persisted chunks into memory.
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Storage{db: db}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			ord INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			start_off INTEGER NOT NULL,
			end_off INTEGER NOT NULL,
			text TEXT NOT NULL,
			pages_json TEXT NOT NULL,
			vector_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS index_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *Storage) load() error {
	var dimStr string
	err := s.db.QueryRow(`SELECT value FROM index_meta WHERE key = 'dimension'`).Scan(&dimStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fresh index
	}
	if err != nil {
		return fmt.Errorf("reading index metadata: %w", err)
	}
	dim, err := strconv.Atoi(dimStr)
	if err != nil {
		return fmt.Errorf("corrupt dimension metadata: %w", err)
	}
	s.dimension = dim

	rows, err := s.db.Query(`SELECT chunk_id, document_id, chunk_index, start_off, end_off, text, pages_json, vector_json
		FROM chunks ORDER BY ord`)
	if err != nil {
		return fmt.Errorf("loading chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ch domain.Chunk
		var pagesJSON, vectorJSON string
		if err := rows.Scan(&ch.ChunkID, &ch.DocumentID, &ch.Index, &ch.Start, &ch.End, &ch.Text, &pagesJSON, &vectorJSON); err != nil {
			return fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(pagesJSON), &ch.Pages); err != nil {
			return fmt.Errorf("decoding pages for %s: %w", ch.ChunkID, err)
		}
		var vec []float64
		if err := json.Unmarshal([]byte(vectorJSON), &vec); err != nil {
			return fmt.Errorf("decoding vector for %s: %w", ch.ChunkID, err)
		}
		s.chunks = append(s.chunks, ch)
		s.vectors = append(s.vectors, vec)
	}
	return rows.Err()
}

// Count reports how many chunks are currently indexed. Callers use this to
// decide whether a rebuild is needed on startup.
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Dimension returns the persisted vector dimension, or 0 for a fresh index.
func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Chunks returns the indexed chunks in insertion order.
func (s *Storage) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chunks`); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO index_meta (key, value) VALUES ('dimension', ?)`,
		strconv.Itoa(dimension)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO chunks (chunk_id, document_id, chunk_index, start_off, end_off, text, pages_json, vector_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for i, ch := range chunks {
		pagesJSON, err := json.Marshal(ch.Pages)
		if err != nil {
			tx.Rollback()
			return err
		}
		vectorJSON, err := json.Marshal(vectors[i])
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.Exec(ch.ChunkID, ch.DocumentID, ch.Index, ch.Start, ch.End, ch.Text, string(pagesJSON), string(vectorJSON)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting chunk %s: %w", ch.ChunkID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	idxs := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		idxs[i] = i
		scores[i] = dot(s.vectors[i], vector)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM chunks`); err != nil {
		return err
	}
	s.vectors = nil
	s.chunks = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
