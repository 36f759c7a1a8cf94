package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultUpstashKey    = "restaurant:inventory"
	maxResponseSizeBytes = 2 << 20
)

type UpstashConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Key     string        `envconfig:"KEY" split_words:"true" default:"restaurant:inventory"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type UpstashOption func(*UpstashRepository)

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(r *UpstashRepository) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// UpstashRepository keeps the inventory document under one Redis key via
// the Upstash REST API. Reads and writes are whole-document GET/SET.
type UpstashRepository struct {
	baseURL    string
	token      string
	key        string
	httpClient *http.Client
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashRepository(cfg UpstashConfig, opts ...UpstashOption) (*UpstashRepository, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = defaultUpstashKey
	}

	repo := &UpstashRepository{
		baseURL:    baseURL,
		token:      token,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

func (r *UpstashRepository) Load(ctx context.Context) (*Inventory, error) {
	resp, err := r.exec(ctx, []any{"GET", r.key})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, fmt.Errorf("%w: key %s", ErrInventoryNotFound, r.key)
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode inventory payload: %w", err)
	}

	inv := New()
	if err := json.Unmarshal([]byte(encoded), inv); err != nil {
		return nil, fmt.Errorf("unmarshal inventory: %w", err)
	}
	return inv, nil
}

func (r *UpstashRepository) Save(ctx context.Context, inv *Inventory) error {
	if inv == nil {
		return errors.New("inventory is nil")
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	_, err = r.exec(ctx, []any{"SET", r.key, string(payload)})
	return err
}

func (r *UpstashRepository) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
