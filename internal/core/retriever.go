// ABOUTME: Context retrieval merging tag-based and semantic strategies
// ABOUTME: Tag matches take precedence; results are weight-ranked and capped
package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/soberpath/recall/internal/models"
	"github.com/soberpath/recall/internal/storage/sqlite"
)

// coreSearchLimit bounds how many core chunks join the context
const coreSearchLimit = 3

// EmbedProvider is the slice of the LLM client the retriever needs
type EmbedProvider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// RetrievedContext is the assembled memory context for one message
type RetrievedContext struct {
	Frames      []models.Frame
	CoreContext string
}

// Retriever finds the frames most relevant to a message
type Retriever struct {
	store    *sqlite.Storage
	provider EmbedProvider
	limit    int
	log      zerolog.Logger
}

// NewRetriever creates a Retriever. limit caps the merged frame list.
func NewRetriever(store *sqlite.Storage, provider EmbedProvider, limit int, log zerolog.Logger) *Retriever {
	if limit <= 0 {
		limit = 5
	}
	return &Retriever{
		store:    store,
		provider: provider,
		limit:    limit,
		log:      log.With().Str("component", "retriever").Logger(),
	}
}

// Retrieve merges tag-based and semantic lookups for the message.
// Embedding failures are not fatal: the tag strategy still runs and
// the semantic contribution is simply absent.
func (r *Retriever) Retrieve(ctx context.Context, userID int64, text string, blockTitles []string) (*RetrievedContext, error) {
	tagFrames, err := r.store.Frames.RelevantByBlocks(userID, blockTitles, r.limit)
	if err != nil {
		return nil, fmt.Errorf("tag retrieval: %w", err)
	}

	var queryVector []float64
	if vector, err := r.provider.GenerateEmbedding(ctx, text); err != nil {
		r.log.Warn().Err(err).Msg("embedding unavailable, tag-only retrieval")
	} else {
		queryVector = vector
	}

	var semanticFrames []models.Frame
	if queryVector != nil {
		hits, err := r.store.Embeddings.SearchFrames(queryVector, userID, r.limit)
		if err != nil {
			r.log.Warn().Err(err).Msg("semantic search failed, tag-only retrieval")
		} else if len(hits) > 0 {
			ids := make([]int64, 0, len(hits))
			for _, hit := range hits {
				ids = append(ids, hit.FrameID)
			}
			semanticFrames, err = r.store.Frames.GetByIDs(ids)
			if err != nil {
				return nil, fmt.Errorf("semantic frame fetch: %w", err)
			}
		}
	}

	frames := mergeFrames(tagFrames, semanticFrames, r.limit)

	coreContext := ""
	if queryVector != nil {
		coreContext = r.coreContext(queryVector)
	}

	r.log.Debug().
		Int("tag", len(tagFrames)).
		Int("semantic", len(semanticFrames)).
		Int("merged", len(frames)).
		Bool("core", coreContext != "").
		Msg("context retrieved")

	return &RetrievedContext{Frames: frames, CoreContext: coreContext}, nil
}

// coreContext searches the fixed knowledge collection. Any failure
// means no core contribution, never a failed retrieval.
func (r *Retriever) coreContext(queryVector []float64) string {
	count, err := r.store.Embeddings.CoreCount()
	if err != nil || count == 0 {
		return ""
	}

	hits, err := r.store.Embeddings.SearchCore(queryVector, coreSearchLimit)
	if err != nil {
		r.log.Warn().Err(err).Msg("core search failed")
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Базовые принципы ответа:\n")
	for _, hit := range hits {
		b.WriteString("- ")
		b.WriteString(hit.Document)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// mergeFrames unions the two strategies. Tag matches win collisions,
// the union is sorted by weight descending, and the result is capped.
func mergeFrames(tagFrames, semanticFrames []models.Frame, limit int) []models.Frame {
	seen := make(map[int64]bool, len(tagFrames)+len(semanticFrames))
	merged := make([]models.Frame, 0, len(tagFrames)+len(semanticFrames))

	for _, frame := range tagFrames {
		if seen[frame.ID] {
			continue
		}
		seen[frame.ID] = true
		merged = append(merged, frame)
	}
	for _, frame := range semanticFrames {
		if seen[frame.ID] {
			continue
		}
		seen[frame.ID] = true
		merged = append(merged, frame)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Weight > merged[j].Weight
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// FormatHelperPrompt renders retrieved frames as the context block
// handed to the response model.
func FormatHelperPrompt(retrieved *RetrievedContext) string {
	if retrieved == nil || (len(retrieved.Frames) == 0 && retrieved.CoreContext == "") {
		return ""
	}

	var b strings.Builder
	if len(retrieved.Frames) > 0 {
		b.WriteString("Контекст: важные события и состояния пользователя из прошлых разговоров:\n")
		for _, frame := range retrieved.Frames {
			fmt.Fprintf(&b, "- (%s, важность %.0f) %s\n", frame.Emotion, frame.Weight, frame.Content)
		}
	}
	if retrieved.CoreContext != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(retrieved.CoreContext)
	}
	return strings.TrimRight(b.String(), "\n")
}
