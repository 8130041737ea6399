package telemetry

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Timing aggregates every ended span sharing one name.
type Timing struct {
	Name   string
	Count  int
	Errors int
	Total  time.Duration
	Max    time.Duration
}

// Average returns the mean span duration.
func (t Timing) Average() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Count)
}

// Timings is a span processor that keeps per-name duration totals for the
// --timings report.
type Timings struct {
	mu     sync.Mutex
	byName map[string]*Timing
}

var _ sdktrace.SpanProcessor = (*Timings)(nil)

// NewTimings returns an empty Timings processor.
func NewTimings() *Timings {
	return &Timings{byName: make(map[string]*Timing)}
}

// OnStart is called when a span starts.
func (p *Timings) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd folds the finished span into its name's totals.
func (p *Timings) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}
	d := s.EndTime().Sub(s.StartTime())

	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.byName[s.Name()]
	if t == nil {
		t = &Timing{Name: s.Name()}
		p.byName[s.Name()] = t
	}
	t.Count++
	t.Total += d
	t.Max = max(t.Max, d)
	if s.Status().Code == codes.Error {
		t.Errors++
	}
}

// Summary returns the totals sorted by name.
func (p *Timings) Summary() []Timing {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Timing, 0, len(p.byName))
	for _, t := range p.byName {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b Timing) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// ForceFlush does nothing.
func (p *Timings) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (p *Timings) Shutdown(context.Context) error {
	return nil
}
