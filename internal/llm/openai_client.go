// ABOUTME: OpenAI client for classification, profile analysis, and embeddings
// ABOUTME: Retries with backoff; malformed model output degrades to safe fallbacks
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/soberpath/recall/internal/config"
	"github.com/soberpath/recall/internal/models"
	"github.com/soberpath/recall/internal/util"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

const classifySystemPrompt = `Ты — классификатор сообщений в боте поддержки выздоровления по программе 12 шагов.
Разбей сообщение пользователя на смысловые части. Для каждой части определи:
- part: текст фрагмента
- blocks: список тем на русском в нижнем регистре (например "семья", "работа", "состояния", "12 шагов")
- emotion: одна эмоция (neutral, joy, sadness, anger, fear, shame, guilt, hope)
- importance: целое число 0-10, насколько это важно помнить
- thinking_frame: когнитивная рамка, если она видна (например "жертва", "контроль"), иначе пусто
- level_of_mind: 1 — событие, 2 — отношение к событию, 3 — представление о себе
- memory_type: stable, dynamic или volatile
- action: что сделать с памятью (create, merge, skip), иначе пусто
- strategy_hint: короткая подсказка для ответа, иначе пусто

Дополнительно определи metadata: intention, urgency (low/medium/high), cognitive_mode, suggested_response_mode.

Верни ТОЛЬКО JSON объект вида {"parts": [...], "metadata": {...}} без пояснений.`

const analyzeProfileSystemPrompt = `Ты анализируешь сообщение пользователя бота поддержки выздоровления.
Сравни его с текущим профилем и реши, содержит ли сообщение новую устойчивую информацию о пользователе
(факты о нем, его окружении, привычках, важных событиях), которой еще нет в профиле.
Мимолетные состояния и бытовые реплики обновления не требуют.

Верни ТОЛЬКО JSON: {"update_needed": true/false, "extracted_info": "...", "reason": "..."}.`

const summarizeSystemPrompt = `Сожми переданную информацию о пользователе в 1-2 предложения на русском языке.
Пиши в третьем лице, только факты, без оценок. Верни только текст.`

// Client wraps the OpenAI API with retry logic
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	log            zerolog.Logger
}

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// FromConfig builds a ClientConfig from the application config
func FromConfig(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	}
}

// NewClient creates a new OpenAI client
func NewClient(cfg *ClientConfig, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:         openai.NewClient(cfg.APIKey),
		chatModel:      chatModel,
		embeddingModel: openai.EmbeddingModel(embeddingModel),
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		log:            log.With().Str("component", "llm").Logger(),
	}, nil
}

// Classify splits a message into classified parts. Malformed model
// output is a format error and degrades to the single-part fallback;
// only transport/availability failures surface as errors.
func (c *Client) Classify(ctx context.Context, text string) (models.ClassificationResult, error) {
	content, err := c.chatJSON(ctx, classifySystemPrompt, text)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("classification request failed: %w", err)
	}

	var result models.ClassificationResult
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &result); err != nil {
		c.log.Warn().Err(err).Msg("unparseable classification output, using fallback")
		return models.FallbackClassification(text), nil
	}
	if len(result.Parts) == 0 {
		c.log.Warn().Msg("classification returned no parts, using fallback")
		return models.FallbackClassification(text), nil
	}
	return result, nil
}

// AnalyzeProfile decides whether a message carries new profile-worthy
// information. Malformed output means "no update needed".
func (c *Client) AnalyzeProfile(ctx context.Context, message, currentProfile string) (models.ProfileAnalysis, error) {
	userPrompt := fmt.Sprintf("Текущий профиль:\n%s\n\nСообщение пользователя:\n%s", currentProfile, message)

	content, err := c.chatJSON(ctx, analyzeProfileSystemPrompt, userPrompt)
	if err != nil {
		return models.ProfileAnalysis{}, fmt.Errorf("profile analysis request failed: %w", err)
	}

	var analysis models.ProfileAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &analysis); err != nil {
		c.log.Warn().Err(err).Msg("unparseable profile analysis, skipping update")
		return models.ProfileAnalysis{Reason: "unparseable analysis output"}, nil
	}
	return analysis, nil
}

// Summarize condenses extracted profile information into a short preamble line
func (c *Client) Summarize(ctx context.Context, info string) (string, error) {
	content, err := c.chat(ctx, summarizeSystemPrompt, info, nil)
	if err != nil {
		return "", fmt.Errorf("summarize request failed: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// Respond generates an assistant reply from the assembled context.
// Used by the debug chat command; the engine itself never responds.
func (c *Client) Respond(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	content, err := c.chat(ctx, systemPrompt, "", messages)
	if err != nil {
		return "", fmt.Errorf("response request failed: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// GenerateEmbedding generates an embedding vector for the text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.Backoff(c.retryDelay, attempt))
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateEmbeddings(attemptCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}
		return embedding64, nil
	}

	return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, lastErr)
}

// chatJSON runs a completion constrained to a JSON object response
func (c *Client) chatJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.Backoff(c.retryDelay, attempt))
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("chat completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// chat runs a plain completion. When messages is nil, a single user
// message is built from userPrompt.
func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string, messages []openai.ChatCompletionMessage) (string, error) {
	if messages == nil {
		messages = []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		}
	}
	all := append([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}, messages...)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.Backoff(c.retryDelay, attempt))
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model:    c.chatModel,
			Messages: all,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("chat completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// stripCodeFence removes a markdown code fence wrapper if present
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
