package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPConfig configures an OpenAI-style responses endpoint.
type HTTPConfig struct {
	Endpoint   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPCompanion asks a remote model.
type HTTPCompanion struct {
	cfg    HTTPConfig
	logger *zap.Logger
}

func NewHTTP(cfg HTTPConfig, logger *zap.Logger) *HTTPCompanion {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPCompanion{cfg: cfg, logger: logger}
}

type responsesRequest struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions"`
	Input        string         `json:"input"`
	Text         *responsesText `json:"text,omitempty"`
}

type responsesText struct {
	Format struct {
		Type string `json:"type"`
	} `json:"format"`
}

// Ask posts the prompt and decodes the answer through ParseReply. In
// analysis mode the raw JSON text is returned for ParseAnalysis. A plan
// that fails validation comes back as text together with the error.
func (h *HTTPCompanion) Ask(ctx context.Context, prompt string, c Context) (Reply, error) {
	if strings.TrimSpace(h.cfg.Endpoint) == "" {
		return Reply{}, fmt.Errorf("companion: endpoint is required")
	}
	if strings.TrimSpace(h.cfg.APIKey) == "" {
		return Reply{}, fmt.Errorf("companion: api key is required")
	}

	body := responsesRequest{
		Model:        h.cfg.Model,
		Instructions: c.Instructions(),
		Input:        fmt.Sprintf("The user says: %q", prompt),
	}
	if c.Mode == ModeAnalysis {
		body.Input = prompt
	}
	if c.Mode != ModeChat {
		body.Text = &responsesText{}
		body.Text.Format.Type = "json_object"
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return Reply{}, fmt.Errorf("companion: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return Reply{}, fmt.Errorf("companion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)

	start := time.Now()
	res, err := h.cfg.HTTPClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("companion: request failed: %w", err)
	}
	defer res.Body.Close()
	h.logger.Debug("companion call",
		zap.String("mode", string(c.Mode)),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Reply{}, fmt.Errorf("companion: status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Reply{}, fmt.Errorf("companion: decode response: %w", err)
	}
	text := strings.TrimSpace(payload.OutputText)
	for _, item := range payload.Output {
		for _, content := range item.Content {
			if text == "" {
				text = strings.TrimSpace(content.Text)
			}
		}
	}
	if text == "" {
		return Reply{}, fmt.Errorf("companion: response missing output text")
	}

	if c.Mode == ModeAnalysis {
		return Reply{Text: text}, nil
	}
	return ParseReply(text)
}
