package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	plain := []byte(`{"slides":[{"title":"Intro","bullets":[]}]}`)
	sealed, err := Seal(plain, "pw")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.Len(t, sealed, 8+16+12+len(plain)+16)

	got, err := Open(sealed, "pw")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = Open(sealed, "wrong")
	assert.Error(t, err)

	_, err = Open(plain, "pw")
	assert.ErrorIs(t, err, ErrNotSealed)
}

// fakeS3 is a path-style bucket that keeps objects in memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = b
		f.headers[r.URL.Path] = r.Header.Clone()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		b, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
			return
		}
		for k, v := range f.headers[r.URL.Path] {
			if strings.HasPrefix(strings.ToLower(k), "x-amz-meta-") {
				w.Header()[k] = v
			}
		}
		_, _ = w.Write(b)
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestArchive(t *testing.T, passphrase string) (*Archive, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, headers: map[string]http.Header{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  aws.AnonymousCredentials{},
	})
	return NewArchiveFromClient(client, Options{Bucket: "decks", Prefix: "/gen/", Passphrase: passphrase}), fake
}

func TestArchivePutGetSealed(t *testing.T) {
	a, fake := newTestArchive(t, "secret")
	ctx := context.Background()
	payload := []byte(`{"topic":"Cloud"}`)

	require.NoError(t, a.Put(ctx, "req-1", payload, map[string]string{"Slide-Count": "5"}))
	stored := fake.objects["/decks/gen/req-1.json"]
	require.NotNil(t, stored)
	assert.True(t, IsSealed(stored))

	got, info, err := a.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.True(t, info.Encrypted)
	assert.Equal(t, "gen/req-1.json", info.Key)
	assert.Equal(t, "5", info.Metadata["slide-count"])
}

func TestArchivePlain(t *testing.T) {
	a, fake := newTestArchive(t, "")
	ctx := context.Background()
	require.NoError(t, a.Put(ctx, "id", []byte(`{}`), nil))
	assert.Equal(t, []byte(`{}`), fake.objects["/decks/gen/id.json"])

	got, info, err := a.Get(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), got)
	assert.False(t, info.Encrypted)
}

func TestArchiveMissing(t *testing.T) {
	a, _ := newTestArchive(t, "")
	_, _, err := a.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	assert.NoError(t, a.Ping(context.Background()))
}

func TestArchiveKey(t *testing.T) {
	a := &Archive{}
	assert.Equal(t, "x.json", a.Key("x"))
	a.prefix = "p/q"
	assert.Equal(t, "p/q/x.json", a.Key("x"))
}
