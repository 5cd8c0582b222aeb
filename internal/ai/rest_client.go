package ai

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xelth-com/eckassets/internal/config"
)

const apiKeyHeader = "x-goog-api-key"

// RESTClient calls the generateContent endpoint over plain HTTP. It makes
// exactly one request per call.
type RESTClient struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

type textPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string     `json:"role,omitempty"`
	Parts []textPart `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

// Every level may be absent in a real answer.
type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text,omitempty"`
			} `json:"parts,omitempty"`
		} `json:"content,omitempty"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates,omitempty"`
}

// NewRESTClient creates the default text-generation client
func NewRESTClient(cfg config.AIConfig, logger *zap.Logger) *RESTClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(apiKeyHeader, cfg.APIKey)

	return &RESTClient{
		httpClient: client,
		model:      cfg.Model,
		logger:     logger,
	}
}

// GenerateContent sends prompt and returns the text of the first candidate.
func (c *RESTClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	request := generateRequest{
		Contents: []content{{Role: "user", Parts: []textPart{{Text: prompt}}}},
	}

	var response generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(request).
		SetResult(&response).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		c.logger.Warn("text-generation request failed", zap.Error(err))
		return "", err
	}

	if !resp.IsSuccess() {
		c.logger.Warn("text-generation endpoint error",
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", resp.Time()),
		)
		return "", &EndpointError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	text, ok := response.firstText()
	if !ok {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("text-generation completed",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
		zap.Duration("latency", resp.Time()),
	)
	return text, nil
}

func (r *generateResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	first := r.Candidates[0].Content
	if first == nil || len(first.Parts) == 0 {
		return "", false
	}

	var sb strings.Builder
	for _, p := range first.Parts {
		if p.Text != nil {
			sb.WriteString(*p.Text)
		}
	}
	return sb.String(), true
}
