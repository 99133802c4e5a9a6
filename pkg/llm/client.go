package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Request describes one generation call to the model gateway.
type Request struct {
	Prompt      string
	Instruction string
	Temperature float64
	MaxTokens   int
	// WantJSON asks the gateway for a JSON-formatted reply. Callers must
	// still tolerate non-conforming output; see DecodeStructured.
	WantJSON bool
}

// Generator is the generation collaborator used by every agent. A single
// shared instance is passed into components at construction so tests can
// substitute deterministic stubs.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

type HTTPError struct {
	StatusCode int
	Status     string
	Err        error
}

func NewHTTPError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Err:        err,
	}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Status
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// GatewayConfig configures the connection to the LLM gateway.
type GatewayConfig struct {
	ApiUrl  string
	ApiKey  string
	Model   string
	Timeout time.Duration
}

// GatewayClient talks to the model gateway over HTTP. The HTTP timeout is the
// wall-clock bound on a single generation call; callers treat a timeout like
// any other generate failure.
type GatewayClient struct {
	Config *GatewayConfig
	Client *http.Client
	Logger *zap.Logger
}

func NewGatewayClient(config *GatewayConfig, logger *zap.Logger) *GatewayClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &GatewayClient{
		Config: config,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

type gatewayRequest struct {
	Model       string  `json:"model,omitempty"`
	Instruction string  `json:"instruction,omitempty"`
	Params      []Field `json:"params,omitempty"`
	Input       []Field `json:"input"`
}

type gatewayResponse struct {
	Output []Field `json:"output"`
}

func (c *GatewayClient) Generate(ctx context.Context, req Request) (string, error) {
	greq := &gatewayRequest{
		Model:       c.Config.Model,
		Instruction: req.Instruction,
		Input:       []Field{{Name: "prompt", Value: req.Prompt}},
	}
	if req.Temperature > 0 {
		greq.Params = append(greq.Params, Field{Name: "temperature", Value: req.Temperature})
	}
	if req.MaxTokens > 0 {
		greq.Params = append(greq.Params, Field{Name: "max_tokens", Value: req.MaxTokens})
	}
	if req.WantJSON {
		greq.Params = append(greq.Params, Field{Name: "response_format", Value: "json"})
	}

	reqBody, err := json.Marshal(greq)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, err)
	}

	serveUrl := c.Config.ApiUrl + "/serve/v1/generate"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", serveUrl, bytes.NewReader(reqBody))
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.Config.ApiKey)

	res, err := c.Client.Do(httpReq)
	if err != nil {
		c.Logger.Warn("gateway request failed", zap.Error(err))
		return "", NewHTTPError(http.StatusInternalServerError, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.Logger.Warn("gateway returned non-200",
			zap.Int("status_code", res.StatusCode),
			zap.String("status", res.Status))
		return "", NewHTTPError(res.StatusCode, nil)
	}

	resp := &gatewayResponse{}
	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, err)
	}
	if len(resp.Output) == 0 {
		return "", NewHTTPError(http.StatusInternalServerError, fmt.Errorf("empty gateway output"))
	}

	text, ok := resp.Output[0].Value.(string)
	if !ok {
		return "", NewHTTPError(http.StatusInternalServerError, fmt.Errorf("gateway output is not text"))
	}
	return text, nil
}
