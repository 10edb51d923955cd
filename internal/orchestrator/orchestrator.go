package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/local/slidegen/internal/logger"
	"github.com/local/slidegen/internal/slides"
	"github.com/local/slidegen/internal/statuscheck"
)

const defaultMaxBodyBytes = 1 << 20

type Status struct {
	Status   string
	State    string
	Message  string
	Start    *time.Time
	End      *time.Time
	Metadata map[string]any
}

// StatusStore records the outcome of each request. Writes are best-effort.
type StatusStore interface {
	Set(ctx context.Context, id string, st Status) error
	Get(ctx context.Context, id string) (Status, bool, error)
}

// HealthChecker reports dependency status for /status.
type HealthChecker interface {
	Summary(ctx context.Context) statuscheck.Summary
}

type Dependencies struct {
	Pipeline *Pipeline
	// Optional collaborators; nil disables the feature.
	Status         StatusStore
	Archive        Archiver
	Health         HealthChecker
	MaxBodyBytes   int64
	ArchiveTimeout time.Duration
}

type Orchestrator struct {
	deps Dependencies
	bg   sync.WaitGroup
}

func New(deps Dependencies) *Orchestrator {
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = defaultMaxBodyBytes
	}
	if deps.ArchiveTimeout <= 0 {
		deps.ArchiveTimeout = 30 * time.Second
	}
	return &Orchestrator{deps: deps}
}

// Wait blocks until background archive uploads finish.
func (o *Orchestrator) Wait() { o.bg.Wait() }

func (o *Orchestrator) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("ok")) })
	mux.HandleFunc("/status", o.handleStatus)
	mux.Handle("/api/generate-slides", withRequestID(http.HandlerFunc(o.handleGenerate)))
	mux.Handle("/api/regenerate-slide", withRequestID(http.HandlerFunc(o.handleRegenerate)))
	mux.Handle("/api/generations/", withRequestID(http.HandlerFunc(o.handleGeneration)))
	mux.Handle("/api/archive/", withRequestID(http.HandlerFunc(o.handleArchive)))
}

type ctxKey struct{}

// withRequestID tags each request with an id, echoed in X-Request-ID and
// carried by the request-scoped logger.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logger.WithRequest(r.Context(), id)
		ctx = context.WithValue(ctx, ctxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type generateReq struct {
	Topic         string   `json:"topic"`
	SlideCount    *float64 `json:"slideCount"`
	Language      string   `json:"language"`
	SelectedTheme string   `json:"selectedTheme"`
}

type generateResp struct {
	Success   bool            `json:"success"`
	Slides    []slides.Record `json:"slides"`
	RequestID string          `json:"requestId"`
}

type slideContent struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

type regenerateReq struct {
	Topic              string       `json:"topic"`
	OriginalContent    slideContent `json:"originalContent"`
	Feedback           string       `json:"feedback"`
	Theme              string       `json:"theme"`
	Language           string       `json:"language"`
	PreserveLayoutType *bool        `json:"preserveLayoutType"`
}

type regenerateResp struct {
	Success   bool          `json:"success"`
	Slide     slides.Record `json:"slide"`
	RequestID string        `json:"requestId"`
}

type errorResp struct {
	Error               string `json:"error"`
	SuggestedSlideCount *int   `json:"suggestedSlideCount,omitempty"`
	RequestID           string `json:"requestId,omitempty"`
}

func (o *Orchestrator) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	id := requestIDFrom(ctx)
	var req generateReq
	if !o.decode(w, r, &req) {
		return
	}
	count, err := slideCountFrom(req.SlideCount)
	if err != nil {
		o.writeError(w, r, err)
		return
	}
	lang := strings.TrimSpace(req.Language)

	start := time.Now()
	o.setStatus(ctx, id, Status{Status: "processing", State: string(StateValidating), Message: "generating", Start: &start,
		Metadata: map[string]any{"kind": "generate", "slide_count": count, "language": lang}})
	obs := &stateRecorder{}
	res, err := o.deps.Pipeline.Generate(ctx, GenerateRequest{
		Topic:      req.Topic,
		SlideCount: count,
		Language:   lang,
		Theme:      req.SelectedTheme,
	}, obs)
	o.finishStatus(ctx, id, obs, err, len(res.Slides))
	if err != nil {
		o.writeError(w, r, err)
		return
	}

	if o.deps.Archive != nil {
		o.archiveAsync(ctx, id, archiveRecord{
			RequestID:  id,
			Topic:      strings.TrimSpace(req.Topic),
			Language:   lang,
			Theme:      req.SelectedTheme,
			SlideCount: count,
			Slides:     res.Slides,
			Provider:   res.Provider,
			Model:      res.Model,
			CreatedAt:  time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, generateResp{Success: true, Slides: res.Slides, RequestID: id})
}

func (o *Orchestrator) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	id := requestIDFrom(ctx)
	var req regenerateReq
	if !o.decode(w, r, &req) {
		return
	}
	lang := strings.TrimSpace(req.Language)
	bullets := req.OriginalContent.Bullets
	if bullets == nil {
		bullets = []string{}
	}

	start := time.Now()
	o.setStatus(ctx, id, Status{Status: "processing", State: string(StateValidating), Message: "regenerating", Start: &start,
		Metadata: map[string]any{"kind": "regenerate", "language": lang}})
	obs := &stateRecorder{}
	res, err := o.deps.Pipeline.Regenerate(ctx, RegenerateRequest{
		Topic:              req.Topic,
		Original:           slides.Record{Title: req.OriginalContent.Title, Bullets: bullets},
		Feedback:           req.Feedback,
		Theme:              req.Theme,
		Language:           lang,
		PreserveLayoutType: req.PreserveLayoutType,
	}, obs)
	o.finishStatus(ctx, id, obs, err, 1)
	if err != nil {
		o.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, regenerateResp{Success: true, Slide: res.Slide, RequestID: id})
}

func (o *Orchestrator) handleGeneration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/generations/")
	if id == "" || o.deps.Status == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	st, ok, err := o.deps.Status.Get(r.Context(), id)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("generation_id", id).Msg("status lookup failed")
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    st.Status == "success",
		"requestId":  id,
		"status":     st.Status,
		"state":      st.State,
		"message":    st.Message,
		"start_time": st.Start,
		"end_time":   st.End,
		"metadata":   st.Metadata,
	})
}

func (o *Orchestrator) handleStatus(w http.ResponseWriter, r *http.Request) {
	if o.deps.Health == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s := o.deps.Health.Summary(r.Context())
	code := http.StatusOK
	if !s.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, s)
}

// decode reads a size-capped JSON body into v, writing the error response on failure.
func (o *Orchestrator) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, o.deps.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp{Error: "request body too large", RequestID: requestIDFrom(r.Context())})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid json", RequestID: requestIDFrom(r.Context())})
		return false
	}
	return true
}

// slideCountFrom converts the decoded JSON number. Missing or fractional
// values are rejected with a suggestion; range checks happen in the pipeline.
func slideCountFrom(v *float64) (int, error) {
	if v == nil {
		one := MinSlideCount
		return 0, &ValidationError{Field: "slideCount", Message: "slideCount is required", SuggestedSlideCount: &one}
	}
	f := *v
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		suggested := int(math.Min(math.Max(math.Round(f), MinSlideCount), MaxSlideCount))
		if math.IsNaN(f) {
			suggested = MinSlideCount
		}
		return 0, &ValidationError{Field: "slideCount", Message: "slideCount must be an integer", SuggestedSlideCount: &suggested}
	}
	// Keep far out-of-range values representable; the pipeline rejects them.
	f = math.Min(math.Max(f, -1e6), 1e6)
	return int(f), nil
}

func (o *Orchestrator) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	resp := errorResp{Error: err.Error(), RequestID: requestIDFrom(r.Context())}
	var ve *ValidationError
	if errors.As(err, &ve) {
		resp.Error = ve.Message
		resp.SuggestedSlideCount = ve.SuggestedSlideCount
	}
	if status >= 500 {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}
