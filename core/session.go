package core

import (
	"context"
	"errors"
	"sync"

	"github.com/huangsam/tschart/schema"
)

// ErrSuperseded is returned by an evaluation that was overtaken by a newer one.
var ErrSuperseded = errors.New("evaluation superseded by a newer request")

// Session serializes view changes on one chart. Starting an evaluation
// cancels the one in flight, and only the newest evaluation may publish
// its state.
type Session struct {
	chart *Chart

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *schema.ChartState
}

// NewSession creates a session over chart.
func NewSession(chart *Chart) *Session {
	return &Session{chart: chart}
}

// Evaluate computes the chart state for view. It returns ErrSuperseded when
// another Evaluate call started before this one finished.
func (s *Session) Evaluate(ctx context.Context, view schema.ViewParameters) (schema.ChartState, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	generation := s.generation
	s.cancel = cancel
	s.mu.Unlock()

	state, err := s.chart.State(ctx, view)

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return schema.ChartState{}, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return schema.ChartState{}, err
	}
	s.latest = &state
	return state, nil
}

// Latest returns the most recent state published by Evaluate.
func (s *Session) Latest() (schema.ChartState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return schema.ChartState{}, false
	}
	return *s.latest, true
}

// Close cancels any evaluation in flight.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
}
