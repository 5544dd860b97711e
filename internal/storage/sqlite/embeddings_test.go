// ABOUTME: Tests for the vector collections
// ABOUTME: Covers owner filtering, cosine ranking, core collection independence
package sqlite

import (
	"testing"

	"github.com/soberpath/recall/internal/models"
)

func addFrameWithVector(t *testing.T, storage *Storage, userID int64, content string, vector []float64) int64 {
	t.Helper()
	frame := &models.Frame{UserID: userID, Content: content, Weight: 5}
	if err := storage.Frames.Add(frame, []string{"тест"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := storage.Embeddings.UpsertFrame(frame.ID, userID, content, vector, "", "тест"); err != nil {
		t.Fatalf("UpsertFrame error: %v", err)
	}
	return frame.ID
}

func TestSearchFrames_RanksByCosine(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	near := addFrameWithVector(t, storage, user.ID, "близкое", []float64{1, 0, 0})
	far := addFrameWithVector(t, storage, user.ID, "далекое", []float64{0, 1, 0})

	results, err := storage.Embeddings.SearchFrames([]float64{0.9, 0.1, 0}, user.ID, 10)
	if err != nil {
		t.Fatalf("SearchFrames error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].FrameID != near {
		t.Errorf("best match = frame %d, want %d", results[0].FrameID, near)
	}
	if results[1].FrameID != far {
		t.Errorf("second match = frame %d, want %d", results[1].FrameID, far)
	}
	if results[0].Similarity <= results[1].Similarity {
		t.Errorf("similarities not descending: %f, %f", results[0].Similarity, results[1].Similarity)
	}
}

func TestSearchFrames_OwnerFilter(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)
	other, err := storage.Users.FindOrCreate("tg-other")
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}

	addFrameWithVector(t, storage, user.ID, "мое", []float64{1, 0, 0})
	addFrameWithVector(t, storage, other.ID, "чужое", []float64{1, 0, 0})

	results, err := storage.Embeddings.SearchFrames([]float64{1, 0, 0}, user.ID, 10)
	if err != nil {
		t.Fatalf("SearchFrames error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result for owner, got %d", len(results))
	}
	if results[0].Document != "мое" {
		t.Errorf("Document = %q", results[0].Document)
	}
}

func TestUpsertFrame_Replaces(t *testing.T) {
	storage := newTestStorage(t)
	user := testUser(t, storage)

	id := addFrameWithVector(t, storage, user.ID, "первый", []float64{1, 0, 0})
	if err := storage.Embeddings.UpsertFrame(id, user.ID, "второй", []float64{0, 1, 0}, "", ""); err != nil {
		t.Fatalf("UpsertFrame error: %v", err)
	}

	vector, err := storage.Embeddings.GetFrameVector(id)
	if err != nil {
		t.Fatalf("GetFrameVector error: %v", err)
	}
	if vector[0] != 0 || vector[1] != 1 {
		t.Errorf("vector not replaced: %v", vector)
	}
}

func TestUpsertFrame_EmptyVector(t *testing.T) {
	storage := newTestStorage(t)
	if err := storage.Embeddings.UpsertFrame(1, 1, "doc", nil, "", ""); err == nil {
		t.Error("expected error for empty vector")
	}
}

func TestCoreCollection(t *testing.T) {
	storage := newTestStorage(t)

	count, err := storage.Embeddings.CoreCount()
	if err != nil {
		t.Fatalf("CoreCount error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty core collection, got %d", count)
	}

	if err := storage.Embeddings.UpsertCore("core_identity_1", "Ты — спокойный наставник.", []float64{1, 0}, "identity", "роль"); err != nil {
		t.Fatalf("UpsertCore error: %v", err)
	}
	if err := storage.Embeddings.UpsertCore("core_strategy_craving", "При тяге — замедлить диалог.", []float64{0, 1}, "craving", "стратегии"); err != nil {
		t.Fatalf("UpsertCore error: %v", err)
	}

	count, err = storage.Embeddings.CoreCount()
	if err != nil {
		t.Fatalf("CoreCount error: %v", err)
	}
	if count != 2 {
		t.Errorf("CoreCount = %d, want 2", count)
	}

	results, err := storage.Embeddings.SearchCore([]float64{0.1, 0.9}, 1)
	if err != nil {
		t.Fatalf("SearchCore error: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "core_strategy_craving" {
		t.Errorf("SearchCore results = %+v", results)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"mismatched length", []float64{1, 0}, []float64{1}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vector := []float64{0.25, -1.5, 3.14159, 0}
	got := blobToVector(vectorToBlob(vector))
	if len(got) != len(vector) {
		t.Fatalf("length = %d, want %d", len(got), len(vector))
	}
	for i := range vector {
		if got[i] != vector[i] {
			t.Errorf("index %d: %f != %f", i, got[i], vector[i])
		}
	}
}
