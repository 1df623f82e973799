// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans department strings through an external
// text-normalization service before the diff join. Normalization is
// best-effort: every failure path falls back to the original value so the
// pipeline never stalls on a cleanup call.
package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/transfer-tracker/internal/httputil"
	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// Normalizer turns a raw string into a semantically equivalent cleaned one.
type Normalizer interface {
	Normalize(ctx context.Context, text string) (string, error)
}

// Noop returns its input unchanged. Used when normalization is disabled.
type Noop struct{}

// Normalize returns text as-is.
func (Noop) Normalize(_ context.Context, text string) (string, error) {
	return text, nil
}

// promptTmpl instructs the model to clean a department label without changing
// its meaning. The response must be the cleaned string alone.
var promptTmpl = template.Must(template.New("normalize").Parse(`You clean department names extracted from Japanese staff roster PDFs.
Fix extraction artifacts in the following department name: stray whitespace,
broken or duplicated characters, and full-width/half-width inconsistencies.
Do not translate, abbreviate, or otherwise change the meaning. Respond with
the cleaned department name only, no quotes and no explanation.

Department name:
{{.Text}}
`))

// AINormalizer cleans strings through an OpenAI-style chat-completions
// endpoint. The zero value is not usable; construct it with NewAINormalizer.
type AINormalizer struct {
	// UserAgent, when set, is sent with every request.
	UserAgent string

	endpoint string
	model    string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

// NewAINormalizer builds an AINormalizer from configuration. The HTTP client
// is injectable for tests; nil selects a default client. A missing API key is
// an error: a half-configured normalizer silently degrading every call is
// harder to notice than a refusal at startup.
func NewAINormalizer(cfg types.NormalizationConfig, client *http.Client) (*AINormalizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("normalization requires an API key (set .secrets/openai-api-key)")
	}
	if cfg.Endpoint == "" || cfg.Model == "" {
		return nil, errors.New("normalization requires an endpoint and a model")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &AINormalizer{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		timeout:  timeout,
		client:   client,
	}, nil
}

// chatRequest is the request body for the chat-completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Normalize sends one string to the service and returns the cleaned form. A
// non-2xx status, a malformed response body, or an empty completion is an
// error; the caller keeps the original value.
func (n *AINormalizer) Normalize(ctx context.Context, text string) (string, error) {
	var prompt bytes.Buffer
	if err := promptTmpl.Execute(&prompt, struct{ Text string }{Text: text}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:       n.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt.String()}},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, n.client, req, 2)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("normalization service returned status %d", resp.StatusCode)
	}

	cleaned := strings.TrimSpace(gjson.GetBytes(raw, "choices.0.message.content").String())
	if cleaned == "" {
		return "", errors.New("normalization response held no completion")
	}
	return cleaned, nil
}

// Batcher runs a Normalizer over many distinct values with bounded
// parallelism. It implements the diff stage's DepartmentNormalizer contract.
type Batcher struct {
	N Normalizer

	// Parallel bounds concurrent calls; values <= 0 mean sequential.
	Parallel int

	// Warn receives one line per value that fell back to its original form.
	Warn io.Writer
}

// NormalizeAll normalizes each value once and returns the value-to-cleaned
// mapping. Values whose call failed map to themselves; failures are reported
// to Warn and never abort the batch.
func (b *Batcher) NormalizeAll(ctx context.Context, values []string) map[string]string {
	warn := b.Warn
	if warn == nil {
		warn = io.Discard
	}
	parallel := b.Parallel
	if parallel <= 0 {
		parallel = 1
	}

	out := make(map[string]string, len(values))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)

	for _, value := range values {
		wg.Add(1)
		sem <- struct{}{}
		go func(value string) {
			defer wg.Done()
			defer func() { <-sem }()

			cleaned, err := b.N.Normalize(ctx, value)
			if err != nil {
				fmt.Fprintf(warn, "warning: keeping %q unnormalized: %v\n", value, err)
				cleaned = value
			}
			mu.Lock()
			out[value] = cleaned
			mu.Unlock()
		}(value)
	}
	wg.Wait()

	return out
}
