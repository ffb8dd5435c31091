package generator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BackendError reports a failed call to the text-generation backend.
type BackendError struct {
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("generator: backend returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generator: backend call failed: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Request describes one generation invocation.
type Request struct {
	SourceInterfaces string
	TargetInterface  string
	Size             int
}

// Client calls an OpenAI-compatible chat completions backend. It performs a
// single outbound call per invocation and never retries.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	httpc    *http.Client
}

// NewClient constructs a Client. endpoint is the API base URL without the
// trailing /chat/completions path.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(strings.TrimSpace(endpoint), "/"),
		apiKey:   apiKey,
		model:    model,
		httpc:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete performs a buffered generation call and returns the raw response
// text. The text is not parsed or validated here.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return "", &BackendError{Err: errRead}
	}
	var parsed chatResponse
	if errUnmarshal := json.Unmarshal(body, &parsed); errUnmarshal != nil {
		return "", &BackendError{Err: fmt.Errorf("decode response: %w", errUnmarshal)}
	}
	if len(parsed.Choices) == 0 {
		return "", &BackendError{Err: fmt.Errorf("response carries no choices")}
	}
	return parsed.Choices[0].Message.Content, nil
}

// Stream performs a streaming generation call and forwards content deltas to
// consumer in arrival order. It stops when the backend finishes, the consumer
// returns an error, or ctx is cancelled.
func (c *Client) Stream(ctx context.Context, req Request, consumer func(chunk string) error) error {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return nil
		}
		var chunk chatStreamChunk
		if errUnmarshal := json.Unmarshal([]byte(payload), &chunk); errUnmarshal != nil {
			return &BackendError{Err: fmt.Errorf("decode stream chunk: %w", errUnmarshal)}
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if errConsume := consumer(delta); errConsume != nil {
			return errConsume
		}
	}
	if errScan := scanner.Err(); errScan != nil {
		return &BackendError{Err: errScan}
	}
	return nil
}

func (c *Client) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(req.SourceInterfaces, req.TargetInterface, req.Size)},
		},
		Stream: stream,
	}
	body, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return nil, &BackendError{Err: errMarshal}
	}

	httpReq, errNew := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if errNew != nil {
		return nil, &BackendError{Err: errNew}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, errDo := c.httpc.Do(httpReq)
	if errDo != nil {
		return nil, &BackendError{Err: errDo}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(detail))),
		}
	}
	return resp, nil
}
