package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/local/slidegen/internal/store"
)

type redisStatusAdapter struct{ s *store.RedisStatus }

func NewStatusAdapter(s *store.RedisStatus) StatusStore { return &redisStatusAdapter{s: s} }

func (a *redisStatusAdapter) Set(ctx context.Context, id string, st Status) error {
	return a.s.Set(ctx, id, store.Status{
		Status:   st.Status,
		State:    st.State,
		Message:  st.Message,
		Start:    st.Start,
		End:      st.End,
		Metadata: st.Metadata,
	})
}

func (a *redisStatusAdapter) Get(ctx context.Context, id string) (Status, bool, error) {
	st, ok, err := a.s.Get(ctx, id)
	if !ok || err != nil {
		return Status{}, ok, err
	}
	return Status{
		Status:   st.Status,
		State:    st.State,
		Message:  st.Message,
		Start:    st.Start,
		End:      st.End,
		Metadata: st.Metadata,
	}, true, nil
}

// stateRecorder remembers the last state a pipeline run reached.
type stateRecorder struct {
	last   State
	failed State
}

func (s *stateRecorder) Transition(ctx context.Context, st State, err error) {
	zerolog.Ctx(ctx).Debug().Str("state", string(st)).Msg("pipeline state")
	if st == StateError {
		s.failed = s.last
	}
	s.last = st
}

const statusWriteTimeout = 2 * time.Second

func (o *Orchestrator) setStatus(ctx context.Context, id string, st Status) {
	if o.deps.Status == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()
	if err := o.deps.Status.Set(ctx, id, st); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("generation_id", id).Msg("status write failed")
	}
}

// finishStatus records the final outcome of a run.
func (o *Orchestrator) finishStatus(ctx context.Context, id string, rec *stateRecorder, err error, slideCount int) {
	end := time.Now()
	if err != nil {
		o.setStatus(ctx, id, Status{Status: "error", State: string(rec.failed), Message: err.Error(), End: &end,
			Metadata: map[string]any{"http_status": HTTPStatus(err)}})
		return
	}
	o.setStatus(ctx, id, Status{Status: "success", State: string(StateSuccess), Message: "completed", End: &end,
		Metadata: map[string]any{"slides": slideCount}})
}
