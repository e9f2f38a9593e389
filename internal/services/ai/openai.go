package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxPromptContentLength bounds how much resolved content is embedded in
	// the prompt. Looser than the content-resolution budget because the prompt
	// wrapper consumes part of the model's input window.
	MaxPromptContentLength = 15000

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the Generator interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GenerateMetadata analyzes resolved clip content and returns title, summary and tags
func (p *OpenAIProvider) GenerateMetadata(ctx context.Context, content string) (*ClipMetadata, error) {
	prompt := buildOrganizerPrompt(content)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are an automated content organizer for a digital brain app. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	requestID := ExtractRequestID(ctx)
	userIDStr := ExtractUserID(ctx)
	clipIDStr := ExtractClipID(ctx)

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "generate_metadata"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("user_id", userIDStr),
			zap.String("clip_id", clipIDStr),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "generate_metadata"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userIDStr),
				zap.String("clip_id", clipIDStr),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to generate metadata: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to generate metadata: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	raw := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "generate_metadata"),
			zap.String("model", p.model),
			zap.Int("response_length", len(raw)),
			zap.String("response_preview", SanitizeResponse(raw, true)),
			zap.String("user_id", userIDStr),
			zap.String("clip_id", clipIDStr),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	metadata, err := ParseMetadataResponse(raw)
	if err != nil {
		return nil, err
	}

	return metadata, nil
}

// ParseMetadataResponse parses the model's raw text into ClipMetadata.
// Models frequently wrap JSON answers in code fences, so fence markers are
// stripped before parsing.
func ParseMetadataResponse(raw string) (*ClipMetadata, error) {
	cleaned := StripCodeFences(raw)

	var metadata ClipMetadata
	if err := json.Unmarshal([]byte(cleaned), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata response: %w", err)
	}

	return &metadata, nil
}

// StripCodeFences removes markdown code-fence markers (```json ... ```)
// around a model response and trims surrounding whitespace.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// buildOrganizerPrompt builds the fixed-shape analysis instruction, embedding
// the resolved content truncated to the prompt budget.
func buildOrganizerPrompt(content string) string {
	if len(content) > MaxPromptContentLength {
		content = content[:MaxPromptContentLength]
	}

	return fmt.Sprintf(`You are an automated content organizer for a digital brain app.
Analyze the following content and extract metadata.
Response must be valid JSON with this structure:
{
  "title": "A concise, descriptive title (if original is poor)",
  "summary": "A one-sentence summary of what this is.",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}

Content:
%s`, content)
}
