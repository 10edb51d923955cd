package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/local/slidegen/internal/metrics"
	"github.com/local/slidegen/internal/slides"
	"github.com/local/slidegen/internal/storage"
)

// Archiver stores and retrieves generated decks.
type Archiver interface {
	Put(ctx context.Context, id string, payload []byte, meta map[string]string) error
	Get(ctx context.Context, id string) ([]byte, *storage.ObjectInfo, error)
}

type archiveRecord struct {
	RequestID  string          `json:"requestId"`
	Topic      string          `json:"topic"`
	Language   string          `json:"language"`
	Theme      string          `json:"theme,omitempty"`
	SlideCount int             `json:"slideCount"`
	Slides     []slides.Record `json:"slides"`
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// archiveAsync uploads the deck after the response has been produced. The
// upload outlives the request with its own timeout.
func (o *Orchestrator) archiveAsync(ctx context.Context, id string, rec archiveRecord) {
	payload, err := json.Marshal(rec)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("encode archive record failed")
		return
	}
	meta := map[string]string{
		"request-id":  id,
		"slide-count": strconv.Itoa(rec.SlideCount),
		"language":    rec.Language,
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.deps.ArchiveTimeout)
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		defer cancel()
		if err := o.deps.Archive.Put(bg, id, payload, meta); err != nil {
			metrics.IncArchive("error")
			zerolog.Ctx(bg).Error().Err(err).Str("generation_id", id).Msg("archive upload failed")
			return
		}
		metrics.IncArchive("success")
	}()
}

func (o *Orchestrator) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/archive/")
	if id == "" || strings.Contains(id, "/") || o.deps.Archive == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	data, info, err := o.deps.Archive.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("generation_id", id).Msg("archive download failed")
		http.Error(w, "failed to read archive", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if info != nil && info.Encrypted {
		w.Header().Set("X-Archive-Encryption", info.EncryptionFormat)
	}
	_, _ = w.Write(data)
}
