package aitutor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

const inferenceBaseURL = "https://api-inference.huggingface.co/models/"

// ErrUnavailable wraps any failure of the inference call: network errors,
// timeouts, non-2xx responses, unusable payloads. Callers only need to
// know the call did not produce a billable result.
var ErrUnavailable = errors.New("ai service unavailable")

// Client generates a completion for an educational prompt. The production
// implementation talks to the Hugging Face Inference API; tests substitute
// fakes.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// HFClient is the Hugging Face Inference API client.
type HFClient struct {
	token string
	model string
	http  *http.Client
}

// Config holds Hugging Face client settings.
type Config struct {
	APIToken string
	Model    string
	Timeout  time.Duration
}

// NewHFClient creates a Hugging Face inference client.
func NewHFClient(cfg Config) *HFClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &HFClient{
		token: cfg.APIToken,
		model: cfg.Model,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Model returns the configured model identifier.
func (c *HFClient) Model() string {
	return c.model
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     bool    `json:"do_sample"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

// Generate queries the inference API and returns the generated text.
func (c *HFClient) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.token) == "" {
		return "", fmt.Errorf("%w: api token not configured", ErrUnavailable)
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxNewTokens: 500,
			Temperature:  0.7,
			TopP:         0.9,
			DoSample:     true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inferenceBaseURL+c.model, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: timeout: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, string(raw))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	text, err := parseInferenceResponse(raw)
	if err != nil {
		return "", err
	}
	return text, nil
}

// parseInferenceResponse handles both response shapes the API produces:
// a list of results or a single result object.
func parseInferenceResponse(raw []byte) (string, error) {
	var list []inferenceResult
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", fmt.Errorf("%w: empty result list", ErrUnavailable)
		}
		return strings.TrimSpace(list[0].GeneratedText), nil
	}

	var single inferenceResult
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single.GeneratedText), nil
	}

	return "", fmt.Errorf("%w: unexpected response shape", ErrUnavailable)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
