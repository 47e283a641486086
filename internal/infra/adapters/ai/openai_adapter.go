package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies both ports
var (
	_ adapter.TranscriptionAdapter = (*OpenAIAdapter)(nil)
	_ adapter.SummarizationAdapter = (*OpenAIAdapter)(nil)
)

// OpenAIAdapter implements transcription via the audio transcriptions API
// and summary extraction via JSON-mode Chat Completions. It works against
// any OpenAI-compatible endpoint.
type OpenAIAdapter struct {
	apiKey          string
	base            string // e.g., https://api.openai.com/v1
	transcribeModel string
	summaryModel    string
	maxPromptTokens int
	client          *http.Client
}

func NewOpenAIAdapter(apiKey, baseURL, transcribeModel, summaryModel string, maxPromptTokens int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if transcribeModel == "" {
		transcribeModel = "whisper-1"
	}
	if summaryModel == "" {
		summaryModel = "gpt-4o-mini"
	}
	return &OpenAIAdapter{
		apiKey:          apiKey,
		base:            strings.TrimRight(baseURL, "/"),
		transcribeModel: transcribeModel,
		summaryModel:    summaryModel,
		maxPromptTokens: maxPromptTokens,
		client:          &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenAIAdapter) Transcribe(ctx context.Context, req adapter.TranscribeRequest) (string, error) {
	if len(req.Audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", domain.ErrTranscription)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("model", o.transcribeModel)
	_ = w.WriteField("language", "en")
	_ = w.WriteField("temperature", "0.5")

	part, err := createAudioPart(w, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrTranscription, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http %d: %s", domain.ErrTranscription, resp.StatusCode, body)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrTranscription, err)
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return "", fmt.Errorf("%w: model returned empty transcript", domain.ErrTranscription)
	}
	return text, nil
}

func (o *OpenAIAdapter) Summarize(ctx context.Context, transcript string) (*model.CallSummary, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("%w: empty transcript", domain.ErrSummarization)
	}
	transcript = truncateToTokens(transcript, o.summaryModel, o.maxPromptTokens)

	reqBody := struct {
		Model          string        `json:"model"`
		Messages       []chatMessage `json:"messages"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}{
		Model: o.summaryModel,
		Messages: []chatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: buildSummaryPrompt(transcript)},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSummarization, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSummarization, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrSummarization, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d: %s", domain.ErrSummarization, resp.StatusCode, body)
	}

	var payload struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrSummarization, err)
	}
	var content string
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			content = c.Message.Content
			break
		}
	}
	if content == "" {
		return nil, fmt.Errorf("%w: no choice content", domain.ErrSummarization)
	}

	summary, err := decodeSummary(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSummarization, err)
	}
	return summary, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func createAudioPart(w *multipart.Writer, req adapter.TranscribeRequest) (io.Writer, error) {
	name := req.FileName
	if name == "" {
		name = "audio"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if req.MIMEType != "" {
		h.Set("Content-Type", req.MIMEType)
	}
	return w.CreatePart(h)
}
