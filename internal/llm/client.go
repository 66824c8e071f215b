// Package llm talks to the message-generation service. The Client owns the
// HTTP transport and retry policy; Generator layers the commit-message
// instruction and reply parsing on top of it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
)

// maxOutputTokens caps the service reply. Commit messages are short; a
// larger budget only invites rambling bodies.
const maxOutputTokens = 400

// HTTPError is a non-2xx reply from the generation service. The body is
// kept verbatim so authentication and quota messages reach the user.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("generation service returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type failure int

const (
	failureFatal failure = iota
	failureRetryable
)

// classify sorts an attempt error into retryable (worth another attempt
// under backoff) or fatal (retrying cannot help). Transport-level errors
// such as timeouts and connection resets are retryable; HTTP 429 and 5xx
// are retryable; any other HTTP status is fatal.
func classify(err error) failure {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500 {
			return failureRetryable
		}
		return failureFatal
	}
	return failureRetryable
}

// Options configures a Client for one invocation. All fields come from the
// resolved configuration.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Policy  models.RetryPolicy
}

// Client issues generation requests with a per-attempt timeout and
// exponential backoff between retryable failures.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	policy     models.RetryPolicy
	httpClient *http.Client

	// rand feeds the backoff jitter; tests pin it.
	rand func() float64
}

func NewClient(opts Options) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		policy:     opts.Policy,
		httpClient: &http.Client{},
		rand:       rand.Float64,
	}
}

// Model returns the model name requests are issued with.
func (c *Client) Model() string {
	return c.model
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generationRequest struct {
	Model           string         `json:"model"`
	Input           []inputMessage `json:"input"`
	MaxOutputTokens int            `json:"max_output_tokens"`
}

// Send posts instruction + payload to the service and returns the reply
// text. Attempts are driven by the retry policy; the last error is
// returned once the budget is spent.
func (c *Client) Send(ctx context.Context, instruction, payload string) (string, error) {
	body, err := json.Marshal(generationRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: payload},
		},
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/responses"
	log.Printf("llm: POST %s model=%s payload=%d chars", url, c.model, len(payload))

	return c.retry(ctx, func(ctx context.Context) (string, error) {
		return c.attempt(ctx, url, body)
	})
}

// retry runs fn until it succeeds, fails fatally, exhausts the attempt
// budget, or ctx is cancelled. The delay before re-running attempt i is
// min(baseDelay * 2^i * jitter, maxDelay), jitter uniform in [0.85, 1.15).
func (c *Client) retry(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt - 1)
			log.Printf("llm: attempt %d/%d in %s after: %v", attempt+1, c.policy.MaxRetries, delay, lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if classify(err) == failureFatal {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	jitter := 0.85 + 0.3*c.rand()
	delay := time.Duration(float64(c.policy.BaseDelay.Std()) * math.Pow(2, float64(attempt)) * jitter)
	if maxDelay := c.policy.MaxDelay.Std(); delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func (c *Client) attempt(ctx context.Context, url string, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.policy.Timeout.Std())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return decodeOutput(data)
}

// decodeOutput concatenates the text blocks of a service reply. Blocks
// other than output_text and summary_text are skipped.
func decodeOutput(data []byte) (string, error) {
	var reply struct {
		Output []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}

	var b strings.Builder
	for _, item := range reply.Output {
		for _, block := range item.Content {
			if block.Type == "output_text" || block.Type == "summary_text" {
				b.WriteString(block.Text)
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("generation response contained no text output")
	}
	return text, nil
}
