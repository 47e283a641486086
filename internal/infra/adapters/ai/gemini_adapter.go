package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/adapter"
)

var (
	_ adapter.TranscriptionAdapter = (*GeminiAdapter)(nil)
	_ adapter.SummarizationAdapter = (*GeminiAdapter)(nil)
)

// GeminiAdapter implements both model ports with the official SDK. Audio is
// passed inline, so transcription and summarization share one client.
type GeminiAdapter struct {
	client          *genai.Client
	transcribeModel string
	summaryModel    string
	maxPromptTokens int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, transcribeModel, summaryModel string, maxPromptTokens int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if transcribeModel == "" {
		transcribeModel = "gemini-2.0-flash"
	}
	if summaryModel == "" {
		summaryModel = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{
		client:          c,
		transcribeModel: transcribeModel,
		summaryModel:    summaryModel,
		maxPromptTokens: maxPromptTokens,
	}, nil
}

func (g *GeminiAdapter) Transcribe(ctx context.Context, req adapter.TranscribeRequest) (string, error) {
	if len(req.Audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", domain.ErrTranscription)
	}
	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromText("Transcribe this call recording verbatim. Return only the transcript text."),
			genai.NewPartFromBytes(req.Audio, req.MIMEType),
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.transcribeModel, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: model returned empty transcript", domain.ErrTranscription)
	}
	return text, nil
}

func (g *GeminiAdapter) Summarize(ctx context.Context, transcript string) (*model.CallSummary, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("%w: empty transcript", domain.ErrSummarization)
	}
	// Best-effort budget; unknown models fall back to the cl100k encoding.
	transcript = truncateToTokens(transcript, g.summaryModel, g.maxPromptTokens)

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(summarySystemPrompt, genai.RoleUser),
	}
	content := genai.NewContentFromText(buildSummaryPrompt(transcript), genai.RoleUser)
	resp, err := g.client.Models.GenerateContent(ctx, g.summaryModel, []*genai.Content{content}, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSummarization, err)
	}
	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return nil, fmt.Errorf("%w: no content", domain.ErrSummarization)
	}
	summary, err := decodeSummary(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSummarization, err)
	}
	return summary, nil
}
