package statuscheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Pinger models the minimal capability we need for status checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Provider identifies the configured model provider.
type Provider struct {
	Name    string // "openai"|"anthropic"
	APIKey  string
	BaseURL string
}

// Checker aggregates health checks for external dependencies.
type Checker struct {
	redis      Pinger
	archive    Pinger
	provider   Provider
	httpClient *http.Client
}

// Options configures the Checker. Nil pingers report the subsystem as disabled.
type Options struct {
	Redis      Pinger
	Archive    Pinger
	Provider   Provider
	HTTPClient *http.Client
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK       bool   `json:"ok"`
	Disabled bool   `json:"disabled,omitempty"`
	Message  string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Redis    Status `json:"redis"`
	Archive  Status `json:"archive"`
	Provider Status `json:"provider"`
}

// Healthy reports whether every enabled subsystem is OK.
func (s Summary) Healthy() bool {
	for _, st := range []Status{s.Redis, s.Archive, s.Provider} {
		if !st.OK && !st.Disabled {
			return false
		}
	}
	return true
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	p := opts.Provider
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	return &Checker{
		redis:      opts.Redis,
		archive:    opts.Archive,
		provider:   p,
		httpClient: client,
	}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	return Summary{
		Redis:    ping(ctx, c.redis, 2*time.Second),
		Archive:  ping(ctx, c.archive, 5*time.Second),
		Provider: c.checkProvider(ctx),
	}
}

func ping(ctx context.Context, p Pinger, timeout time.Duration) Status {
	if p == nil {
		return Status{Disabled: true, Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func (c *Checker) checkProvider(ctx context.Context) Status {
	if c.provider.APIKey == "" {
		return Status{OK: false, Message: "API key missing"}
	}
	var (
		url    string
		header http.Header = make(http.Header)
	)
	switch c.provider.Name {
	case "anthropic":
		url = c.provider.BaseURL + "/v1/models"
		header.Set("x-api-key", c.provider.APIKey)
		header.Set("anthropic-version", "2023-06-01")
	default:
		url = c.provider.BaseURL + "/models?limit=1"
		header.Set("Authorization", "Bearer "+c.provider.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	req.Header = header
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Status{OK: false, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return Status{OK: true, Message: "Available"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
