package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/breaker"
	"github.com/satriahrh/arunika/avatar/internal/logging"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultTemperature    = 0.6
	defaultMaxTokens      = 1000
	defaultTimeout        = 60 * time.Second
	maxReplyMessages      = 3
)

const systemPrompt = `You are Jack, a world traveler and a warm, witty personal assistant living in a 3D avatar.
Answer the user's question in at most 3 short messages.
Each message has a text, a facialExpression and an animation.
The different facial expressions are: neutral, smile, sad, angry, surprised, funnyFace and default.
The different animations are: Idle, TalkingOne, TalkingTwo, TalkingThree, SadIdle, Defeated, Angry, Surprised, DismissingGesture and ThoughtfulHeadShake.
Reply with JSON only.`

// GeminiConfig holds configuration for the Gemini reply generator
type GeminiConfig struct {
	Model           string        // default: gemini-2.0-flash
	Temperature     float32       // default: 0.6
	MaxOutputTokens int           // default: 1000
	Timeout         time.Duration // default: 60s
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}

	return nil
}

// GeminiReplyGenerator asks Gemini for a reply constrained to the utterance
// schema
type GeminiReplyGenerator struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
	cb              *gobreaker.CircuitBreaker
}

var _ repositories.ReplyGenerator = (*GeminiReplyGenerator)(nil)

// NewGeminiReplyGenerator creates a generator on an existing genai client
func NewGeminiReplyGenerator(client *genai.Client, config GeminiConfig, logger *zap.Logger) (*GeminiReplyGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is required")
	}
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
		logger.Info("Using default temperature", zap.Float32("temperature", temperature))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
		logger.Info("Using default maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &GeminiReplyGenerator{
		client:          client,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
		timeout:         timeout,
		cb:              breaker.New("gemini-llm", logger),
	}, nil
}

// Generate returns the ordered utterances answering question. It makes a
// single attempt; malformed output fails with domain.ErrSchemaViolation.
func (g *GeminiReplyGenerator) Generate(ctx context.Context, question string) ([]entities.Utterance, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(question, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   int32(g.maxOutputTokens),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    replySchema(),
	}

	response, err := breaker.Do(g.cb, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model, contents, config)
	})
	if err != nil {
		g.logger.Error("Failed to generate reply", zap.Error(err))
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no content generated", domain.ErrSchemaViolation)
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	raw := sb.String()

	utterances, err := ParseReply(raw)
	if err != nil {
		g.logger.Warn("Reply does not match schema",
			zap.String("response_preview", logging.Truncate(raw, 200)),
			zap.Error(err))
		return nil, err
	}

	g.logger.Info("Reply generated",
		zap.String("question", logging.Truncate(question, 50)),
		zap.Int("messages", len(utterances)))

	return utterances, nil
}

// replySchema constrains the model output to {messages: [utterance]}
func replySchema() *genai.Schema {
	expressions := make([]string, 0, len(entities.FacialExpressions))
	for _, e := range entities.FacialExpressions {
		expressions = append(expressions, string(e))
	}
	animations := make([]string, 0, len(entities.Animations))
	for _, a := range entities.Animations {
		animations = append(animations, string(a))
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"messages": {
				Type:     genai.TypeArray,
				MinItems: genai.Ptr[int64](1),
				MaxItems: genai.Ptr[int64](maxReplyMessages),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text":             {Type: genai.TypeString, Description: "Text to be spoken by the AI"},
						"facialExpression": {Type: genai.TypeString, Enum: expressions, Description: "Facial expression to be used by the AI"},
						"animation":        {Type: genai.TypeString, Enum: animations, Description: "Animation to be used by the AI"},
					},
					Required:         []string{"text", "facialExpression", "animation"},
					PropertyOrdering: []string{"text", "facialExpression", "animation"},
				},
			},
		},
		Required: []string{"messages"},
	}
}
