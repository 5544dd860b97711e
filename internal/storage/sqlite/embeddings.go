// ABOUTME: Embedding storage for the frame and core vector collections
// ABOUTME: Vectors are BLOBs ranked in-process by cosine similarity
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"
)

// EmbeddingStore handles both vector collections: per-user frame
// embeddings and the fixed, pre-seeded core knowledge collection.
type EmbeddingStore struct {
	db *DB
}

// NewEmbeddingStore creates a new EmbeddingStore
func NewEmbeddingStore(db *DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// UpsertFrame stores the vector for a frame document, replacing any
// previous vector for the same frame.
func (s *EmbeddingStore) UpsertFrame(frameID, userID int64, document string, vector []float64, emotion, blocks string) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty embedding vector for frame %d", frameID)
	}

	_, err := s.db.Exec(`
		INSERT INTO frame_embeddings (frame_id, user_id, document, vector, emotion, blocks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(frame_id) DO UPDATE SET
			user_id = excluded.user_id,
			document = excluded.document,
			vector = excluded.vector,
			emotion = excluded.emotion,
			blocks = excluded.blocks
	`, frameID, userID, document, vectorToBlob(vector), emotion, blocks, time.Now())

	return err
}

// SearchFrames ranks a user's frame vectors against the query vector.
// Only rows owned by userID are considered.
func (s *EmbeddingStore) SearchFrames(queryVector []float64, userID int64, maxResults int) ([]FrameSearchResult, error) {
	rows, err := s.db.Query(`
		SELECT frame_id, document, vector
		FROM frame_embeddings
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []FrameSearchResult
	for rows.Next() {
		var (
			frameID  int64
			document string
			blob     []byte
		)
		if err := rows.Scan(&frameID, &document, &blob); err != nil {
			return nil, err
		}
		results = append(results, FrameSearchResult{
			FrameID:    frameID,
			Document:   document,
			Similarity: CosineSimilarity(queryVector, blobToVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// UpsertCore stores one chunk of the fixed core collection
func (s *EmbeddingStore) UpsertCore(chunkID, document string, vector []float64, tags, block string) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty embedding vector for chunk %s", chunkID)
	}

	_, err := s.db.Exec(`
		INSERT INTO core_embeddings (chunk_id, document, vector, tags, block, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			document = excluded.document,
			vector = excluded.vector,
			tags = excluded.tags,
			block = excluded.block
	`, chunkID, document, vectorToBlob(vector), tags, block, time.Now())

	return err
}

// SearchCore ranks the core collection against the query vector.
// The collection is shared: no owner filter.
func (s *EmbeddingStore) SearchCore(queryVector []float64, maxResults int) ([]CoreSearchResult, error) {
	rows, err := s.db.Query(`SELECT chunk_id, document, vector FROM core_embeddings`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []CoreSearchResult
	for rows.Next() {
		var (
			chunkID  string
			document string
			blob     []byte
		)
		if err := rows.Scan(&chunkID, &document, &blob); err != nil {
			return nil, err
		}
		results = append(results, CoreSearchResult{
			ChunkID:    chunkID,
			Document:   document,
			Similarity: CosineSimilarity(queryVector, blobToVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// CoreCount returns how many core chunks are seeded
func (s *EmbeddingStore) CoreCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM core_embeddings`).Scan(&count)
	return count, err
}

// DeleteFrame removes the vector for a frame
func (s *EmbeddingStore) DeleteFrame(frameID int64) error {
	_, err := s.db.Exec(`DELETE FROM frame_embeddings WHERE frame_id = ?`, frameID)
	return err
}

// GetFrameVector retrieves a stored frame vector, nil when absent
func (s *EmbeddingStore) GetFrameVector(frameID int64) ([]float64, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT vector FROM frame_embeddings WHERE frame_id = ?`, frameID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blobToVector(blob), nil
}

// FrameSearchResult is one ranked frame vector match
type FrameSearchResult struct {
	FrameID    int64
	Document   string
	Similarity float64
}

// CoreSearchResult is one ranked core chunk match
type CoreSearchResult struct {
	ChunkID    string
	Document   string
	Similarity float64
}

// vectorToBlob converts a float64 slice to a binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob back to a float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
