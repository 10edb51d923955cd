package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/local/slidegen/internal/ai"
	"github.com/local/slidegen/internal/metrics"
	"github.com/local/slidegen/internal/slides"
)

const (
	MinSlideCount = 1
	MaxSlideCount = 50
)

// State is a step of the generation or regeneration pipeline.
type State string

const (
	StateValidating     State = "validating"
	StatePrompting      State = "prompting"
	StateAwaitingModel  State = "awaiting-model"
	StateParsing        State = "parsing"
	StateNormalizing    State = "normalizing"
	StateDeduplicating  State = "deduplicating"
	StateEnforcingCount State = "enforcing-count"
	StateSuccess        State = "success"
	StateError          State = "error"
)

// Observer is told about every state a pipeline run enters. err is set only for StateError.
type Observer interface {
	Transition(ctx context.Context, s State, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, s State, err error)

func (f ObserverFunc) Transition(ctx context.Context, s State, err error) { f(ctx, s, err) }

type GenerateRequest struct {
	Topic      string
	SlideCount int
	Language   string
	Theme      string
}

type GenerateResult struct {
	Slides   []slides.Record
	Provider string
	Model    string
	Notes    []slides.Note
}

type RegenerateRequest struct {
	Topic    string
	Original slides.Record
	Feedback string
	Theme    string
	Language string
	// PreserveLayoutType forces a title-only result. Nil means "original had no bullets".
	PreserveLayoutType *bool
}

type RegenerateResult struct {
	Slide    slides.Record
	Provider string
	Model    string
	Notes    []slides.Note
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Client             ai.Client
	DuplicateThreshold float64
	MaxTokens          int
	Temperature        float64
}

// Pipeline turns a generation request into a validated deck. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	client      ai.Client
	filter      slides.Filter
	maxTokens   int
	temperature float64
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	return &Pipeline{
		client:      opts.Client,
		filter:      slides.NewFilter(opts.DuplicateThreshold),
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// run tracks the state of one pipeline execution.
type run struct {
	ctx   context.Context
	kind  string
	obs   Observer
	state State
}

func (r *run) enter(s State) {
	r.state = s
	if r.obs != nil {
		r.obs.Transition(r.ctx, s, nil)
	}
}

func (r *run) fail(err error) error {
	zerolog.Ctx(r.ctx).Warn().Err(err).Str("kind", r.kind).Str("state", string(r.state)).Msg("pipeline failed")
	metrics.IncGeneration(r.kind, "error")
	if r.obs != nil {
		r.obs.Transition(r.ctx, StateError, err)
	}
	return err
}

func (r *run) succeed() {
	metrics.IncGeneration(r.kind, "success")
	r.enter(StateSuccess)
}

// Generate produces exactly req.SlideCount slides. Errors are *ValidationError,
// *ConfigError, *UpstreamError or *ParseError.
func (p *Pipeline) Generate(ctx context.Context, req GenerateRequest, obs Observer) (GenerateResult, error) {
	r := &run{ctx: ctx, kind: "generate", obs: obs}
	l := zerolog.Ctx(ctx)

	r.enter(StateValidating)
	req.Topic = strings.TrimSpace(req.Topic)
	// Count first: an out-of-range count always carries a suggestion.
	if err := validateSlideCount(req.SlideCount); err != nil {
		return GenerateResult{}, r.fail(err)
	}
	lang, err := validateCommon(req.Topic, req.Language)
	if err != nil {
		return GenerateResult{}, r.fail(err)
	}
	if p.client == nil {
		return GenerateResult{}, r.fail(&ConfigError{Err: ai.ErrMissingCredential})
	}

	r.enter(StatePrompting)
	prompt := ai.Request{
		RequestID:    requestIDFrom(ctx),
		SystemPrompt: systemPrompt(lang),
		UserPrompt:   generatePrompt(req, lang),
		MaxTokens:    p.maxTokens,
		Temperature:  p.temperature,
	}

	r.enter(StateAwaitingModel)
	resp, err := p.call(ctx, prompt)
	if err != nil {
		return GenerateResult{}, r.fail(err)
	}

	r.enter(StateParsing)
	raws := slides.ParseSlides(resp.Text)
	if len(raws) == 0 {
		return GenerateResult{}, r.fail(&ParseError{ResponseLen: len(resp.Text)})
	}
	truncated := 0
	if limit := 2 * req.SlideCount; len(raws) > limit {
		truncated = len(raws) - limit
		raws = raws[:limit]
	}

	r.enter(StateNormalizing)
	var notes []slides.Note
	records := make([]slides.Record, len(raws))
	for i, raw := range raws {
		rec, n := slides.Normalize(raw, i, len(raws), lang)
		records[i] = rec
		notes = append(notes, n...)
	}

	r.enter(StateDeduplicating)
	deduped, dropped := p.filter.DeduplicateStats(records, req.SlideCount)

	r.enter(StateEnforcingCount)
	padded := max(req.SlideCount-len(deduped), 0)
	deck := slides.EnforceCount(deduped, req.SlideCount, req.Topic, lang)
	notes = append(notes, slides.ApplyRoles(deck)...)

	recordNotes(ctx, notes)
	metrics.AddAdjustments("duplicate_dropped", dropped)
	metrics.AddAdjustments("padded", padded)
	metrics.AddAdjustments("truncated", truncated)
	l.Info().
		Int("slide_count", req.SlideCount).
		Int("parsed", len(raws)+truncated).
		Int("duplicates", dropped).
		Int("padded", padded).
		Int("truncated", truncated).
		Str("model", resp.Model).
		Msg("deck generated")

	r.succeed()
	return GenerateResult{Slides: deck, Provider: p.client.Name(), Model: resp.Model, Notes: notes}, nil
}

// Regenerate rewrites one slide. When the layout is preserved the result is
// always title-only, whatever the model returned.
func (p *Pipeline) Regenerate(ctx context.Context, req RegenerateRequest, obs Observer) (RegenerateResult, error) {
	r := &run{ctx: ctx, kind: "regenerate", obs: obs}

	r.enter(StateValidating)
	req.Topic = strings.TrimSpace(req.Topic)
	lang, err := validateCommon(req.Topic, req.Language)
	if err != nil {
		return RegenerateResult{}, r.fail(err)
	}
	if p.client == nil {
		return RegenerateResult{}, r.fail(&ConfigError{Err: ai.ErrMissingCredential})
	}
	preserve := len(req.Original.Bullets) == 0
	if req.PreserveLayoutType != nil {
		preserve = *req.PreserveLayoutType
	}

	r.enter(StatePrompting)
	prompt := ai.Request{
		RequestID:    requestIDFrom(ctx),
		SystemPrompt: systemPrompt(lang),
		UserPrompt:   regeneratePrompt(req, lang, preserve),
		MaxTokens:    p.maxTokens,
		Temperature:  p.temperature,
	}

	r.enter(StateAwaitingModel)
	resp, err := p.call(ctx, prompt)
	if err != nil {
		return RegenerateResult{}, r.fail(err)
	}

	r.enter(StateParsing)
	raws := slides.ParseSlides(resp.Text)
	if len(raws) == 0 {
		return RegenerateResult{}, r.fail(&ParseError{ResponseLen: len(resp.Text)})
	}

	r.enter(StateNormalizing)
	role := slides.RoleContent
	if preserve {
		role = slides.RoleFirst
	}
	slide, notes := slides.NormalizeRole(raws[0], role)
	if slide.Title == "" {
		slide.Title = strings.TrimSpace(req.Original.Title)
		if slide.Title == "" {
			slide.Title = slides.SlideLabel(1, lang)
		}
		notes = append(notes, slides.Note{Kind: slides.NoteTitleSynthesized})
	}
	if preserve {
		slide.Bullets = []string{}
	}
	recordNotes(ctx, notes)

	r.succeed()
	return RegenerateResult{Slide: slide, Provider: p.client.Name(), Model: resp.Model, Notes: notes}, nil
}

// call performs the single model request of a run.
func (p *Pipeline) call(ctx context.Context, req ai.Request) (ai.Response, error) {
	start := time.Now()
	resp, err := p.client.Do(ctx, req)
	dur := time.Since(start)
	metrics.ObserveProvider(p.client.Name(), p.client.Model(), ai.Classify(err), dur)
	if err != nil {
		return ai.Response{}, upstreamError(p.client.Name(), err)
	}
	zerolog.Ctx(ctx).Debug().
		Str("provider", p.client.Name()).
		Str("model", resp.Model).
		Int("tokens_in", resp.TokensIn).
		Int("tokens_out", resp.TokensOut).
		Dur("latency", dur).
		Msg("model responded")
	return resp, nil
}

func validateCommon(topic, language string) (slides.Language, error) {
	if topic == "" {
		return "", &ValidationError{Field: "topic", Message: "topic is required"}
	}
	lang, ok := slides.ParseLanguage(language)
	if !ok {
		return "", &ValidationError{Field: "language", Message: "language must be one of: en, ar"}
	}
	return lang, nil
}

func validateSlideCount(n int) error {
	if n >= MinSlideCount && n <= MaxSlideCount {
		return nil
	}
	suggested := min(max(n, MinSlideCount), MaxSlideCount)
	return &ValidationError{
		Field:               "slideCount",
		Message:             "slideCount must be between 1 and 50",
		SuggestedSlideCount: &suggested,
	}
}

func recordNotes(ctx context.Context, notes []slides.Note) {
	l := zerolog.Ctx(ctx)
	for _, n := range notes {
		metrics.AddAdjustments(string(n.Kind), 1)
		l.Warn().Str("note", string(n.Kind)).Int("slide", n.Index).Str("detail", n.Detail).Msg("slide adjusted")
	}
}
