// ABOUTME: Engine facade wiring classifier, retriever, tracker, and personalizer
// ABOUTME: Exposes the memory operations and the full per-message pipeline
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soberpath/recall/internal/config"
	"github.com/soberpath/recall/internal/models"
	"github.com/soberpath/recall/internal/storage/sqlite"
)

// historyLimit caps the chat history returned with a turn context
const historyLimit = 20

// Provider is everything the engine needs from the LLM client
type Provider interface {
	Classify(ctx context.Context, text string) (models.ClassificationResult, error)
	AnalyzeProfile(ctx context.Context, message, currentProfile string) (models.ProfileAnalysis, error)
	Summarize(ctx context.Context, info string) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Engine is the memory engine facade. All components share one storage
// handle and one provider, both injected at construction.
type Engine struct {
	store        *sqlite.Storage
	provider     Provider
	classifier   *Classifier
	retriever    *Retriever
	tracker      *Tracker
	personalizer *Personalizer
	log          zerolog.Logger
}

// NewEngine wires an Engine from its dependencies
func NewEngine(store *sqlite.Storage, provider Provider, cfg *config.Config, log zerolog.Logger) *Engine {
	return &Engine{
		store:        store,
		provider:     provider,
		classifier:   NewClassifier(provider, log),
		retriever:    NewRetriever(store, provider, cfg.RetrievalLimit, log),
		tracker:      NewTracker(store, cfg.MinToConfirm, log),
		personalizer: NewPersonalizer(store, provider, log),
		log:          log.With().Str("component", "engine").Logger(),
	}
}

// StoreResult is the outcome of ClassifyAndStore
type StoreResult struct {
	Result   models.ClassificationResult
	FrameIDs []int64
}

// Derivation is the outcome of TrackAndDerive
type Derivation struct {
	Archetypes []string
	MetaFlags  []string
}

// TurnContext is the assembled context for one message, handed to the
// external response layer.
type TurnContext struct {
	TurnID         string
	UserID         int64
	Result         models.ClassificationResult
	FrameIDs       []int64
	Frames         []models.Frame
	CoreContext    string
	HelperPrompt   string
	PersonalPrompt string
	Archetypes     []string
	MetaFlags      []string
	History        []models.Message
}

// ClassifyAndStore classifies a message and persists one frame per
// part that carries at least one topic block; tagless parts stay in
// the result but leave no frame row. Embedding upserts are
// best-effort: a failed vector never rolls back the frame.
func (e *Engine) ClassifyAndStore(ctx context.Context, userID int64, text string) (*StoreResult, error) {
	result, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	frameIDs := make([]int64, 0, len(result.Parts))
	for _, part := range result.Parts {
		if len(part.Blocks) == 0 {
			continue
		}
		frame := frameFromPart(userID, part)
		if err := e.store.Frames.Add(frame, part.Blocks); err != nil {
			return nil, fmt.Errorf("store frame: %w", err)
		}
		frameIDs = append(frameIDs, frame.ID)
		e.embedFrame(ctx, frame)
	}

	e.log.Debug().Int64("user", userID).Int("frames", len(frameIDs)).Msg("message stored")
	return &StoreResult{Result: result, FrameIDs: frameIDs}, nil
}

// RetrieveContext classifies the message for topic tags and runs the
// merged tag+semantic retrieval.
func (e *Engine) RetrieveContext(ctx context.Context, userID int64, text string) (*RetrievedContext, error) {
	result, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	return e.retriever.Retrieve(ctx, userID, text, result.BlockTitles())
}

// TrackAndDerive submits theme sightings and recomputes archetypes and
// meta flags from the resulting confirmed set.
func (e *Engine) TrackAndDerive(ctx context.Context, userID int64, contents []string) (*Derivation, error) {
	for _, content := range contents {
		if strings.TrimSpace(content) == "" {
			continue
		}
		if _, err := e.tracker.Observe(userID, content, nil); err != nil {
			return nil, err
		}
	}

	state, err := e.tracker.Derive(userID)
	if err != nil {
		return nil, err
	}
	return &Derivation{Archetypes: state.Archetypes, MetaFlags: state.MetaFlags}, nil
}

// RebuildPersonalization regenerates the user's personalization document
func (e *Engine) RebuildPersonalization(ctx context.Context, userID int64) (string, error) {
	return e.personalizer.Rebuild(ctx, userID)
}

// HandleTurn runs the full per-message pipeline: resolve the user,
// classify once, persist frames, track thinking frames, retrieve
// context, analyze for profile updates, and log the incoming message.
// The returned context is what the response layer builds its reply on.
func (e *Engine) HandleTurn(ctx context.Context, messengerID, text string) (*TurnContext, error) {
	user, err := e.store.Users.FindOrCreate(messengerID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	result, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	frameIDs := make([]int64, 0, len(result.Parts))
	var thinkingFrames []string
	for _, part := range result.Parts {
		if len(part.Blocks) == 0 {
			continue
		}
		frame := frameFromPart(user.ID, part)
		if err := e.store.Frames.Add(frame, part.Blocks); err != nil {
			return nil, fmt.Errorf("store frame: %w", err)
		}
		frameIDs = append(frameIDs, frame.ID)
		e.embedFrame(ctx, frame)

		if part.ThinkingFrame != "" {
			thinkingFrames = append(thinkingFrames, part.ThinkingFrame)
		}
	}

	var archetypes, metaFlags []string
	if len(thinkingFrames) > 0 {
		derived, err := e.TrackAndDerive(ctx, user.ID, thinkingFrames)
		if err != nil {
			e.log.Warn().Err(err).Msg("tracking failed for turn")
		} else {
			archetypes = derived.Archetypes
			metaFlags = derived.MetaFlags
		}
	}

	retrieved, err := e.retriever.Retrieve(ctx, user.ID, text, result.BlockTitles())
	if err != nil {
		return nil, err
	}

	personalPrompt := user.PersonalPrompt
	analysis, err := e.provider.AnalyzeProfile(ctx, text, personalPrompt)
	if err != nil {
		e.log.Warn().Err(err).Msg("profile analysis unavailable, skipping update")
	} else if analysis.UpdateNeeded {
		document, err := e.personalizer.RebuildWithAnalysis(ctx, user.ID, analysis)
		if err != nil {
			e.log.Warn().Err(err).Msg("personalization rebuild failed")
		} else {
			personalPrompt = document
		}
	}

	if _, err := e.store.Messages.Add(user.ID, models.RoleUser, text); err != nil {
		return nil, fmt.Errorf("log message: %w", err)
	}

	history, err := e.store.Messages.Recent(user.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	return &TurnContext{
		TurnID:         fmt.Sprintf("turn_%s", uuid.New().String()[:8]),
		UserID:         user.ID,
		Result:         result,
		FrameIDs:       frameIDs,
		Frames:         retrieved.Frames,
		CoreContext:    retrieved.CoreContext,
		HelperPrompt:   FormatHelperPrompt(retrieved),
		PersonalPrompt: personalPrompt,
		Archetypes:     archetypes,
		MetaFlags:      metaFlags,
		History:        history,
	}, nil
}

// LogReply appends the assistant's reply to the chat log
func (e *Engine) LogReply(userID int64, reply string) error {
	_, err := e.store.Messages.Add(userID, models.RoleAssistant, reply)
	return err
}

// embedFrame stores the frame vector. Failures degrade to "no semantic
// signal" for this frame and are only logged.
func (e *Engine) embedFrame(ctx context.Context, frame *models.Frame) {
	vector, err := e.provider.GenerateEmbedding(ctx, frame.Content)
	if err != nil {
		e.log.Warn().Err(err).Int64("frame", frame.ID).Msg("embedding unavailable, frame stored without vector")
		return
	}

	blocks := strings.Join(frame.BlockTitles(), ",")
	if err := e.store.Embeddings.UpsertFrame(frame.ID, frame.UserID, frame.Content, vector, frame.Emotion, blocks); err != nil {
		e.log.Warn().Err(err).Int64("frame", frame.ID).Msg("vector store failed, frame stored without vector")
	}
}

func frameFromPart(userID int64, part models.Part) *models.Frame {
	return &models.Frame{
		UserID:        userID,
		Content:       part.Text,
		Emotion:       part.Emotion,
		Weight:        float64(part.Importance),
		ThinkingFrame: part.ThinkingFrame,
		LevelOfMind:   part.LevelOfMind,
		MemoryType:    part.MemoryType,
		TargetBlock:   part.TargetBlock,
		Action:        part.Action,
		StrategyHint:  part.StrategyHint,
	}
}
