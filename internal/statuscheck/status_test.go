package statuscheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := New(Options{
		Redis:    pingFunc(func(context.Context) error { return nil }),
		Provider: Provider{Name: "openai", APIKey: " good ", BaseURL: srv.URL + "/v1/"},
	})
	s := c.Summary(context.Background())
	assert.True(t, s.Redis.OK)
	assert.True(t, s.Archive.Disabled)
	assert.True(t, s.Provider.OK)
	assert.True(t, s.Healthy())

	c = New(Options{
		Redis:    pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
		Provider: Provider{Name: "openai", APIKey: "bad", BaseURL: srv.URL + "/v1"},
	})
	s = c.Summary(context.Background())
	assert.Equal(t, Status{Message: "dial tcp: refused"}, s.Redis)
	assert.Equal(t, "HTTP 401", s.Provider.Message)
	assert.False(t, s.Healthy())
}

func TestProviderMissingKey(t *testing.T) {
	s := New(Options{Provider: Provider{Name: "anthropic"}}).Summary(context.Background())
	assert.False(t, s.Provider.OK)
	assert.Equal(t, "API key missing", s.Provider.Message)
}
