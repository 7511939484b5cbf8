package interpret

import (
	"context"
	"log/slog"
	"time"

	"github.com/pbaille/zhouyi/internal/logging"
	"github.com/pbaille/zhouyi/internal/metrics"
	"github.com/pbaille/zhouyi/internal/oracle"
)

// Interpreter asks a provider for a reading and segments the answer.
type Interpreter struct {
	provider  Provider
	segmenter oracle.Segmenter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithSegmenter replaces the default marker segmenter.
func WithSegmenter(s oracle.Segmenter) Option {
	return func(i *Interpreter) {
		i.segmenter = s
	}
}

// WithMetrics records provider calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Interpreter) {
		i.metrics = m
	}
}

// WithLogger configures a logger for provider failures.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// NewInterpreter creates an Interpreter over p.
func NewInterpreter(p Provider, opts ...Option) *Interpreter {
	i := &Interpreter{
		provider:  p,
		segmenter: oracle.MarkerSegmenter{},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Provider returns the provider's name.
func (i *Interpreter) Provider() string { return i.provider.Name() }

// Interpret fetches and segments an interpretation. Provider errors are
// returned as-is; nothing is retried.
func (i *Interpreter) Interpret(ctx context.Context, req Request) (oracle.Interpretation, error) {
	start := time.Now()
	text, err := i.provider.Interpret(ctx, req)
	i.metrics.Interpretation(i.provider.Name(), time.Since(start), err)
	if err != nil {
		i.logger.Warn("interpretation failed",
			"provider", i.provider.Name(),
			"hexagram", req.Hexagram.Number,
			"error", err,
		)
		return oracle.Interpretation{}, err
	}

	i.logger.Debug("interpretation received",
		"provider", i.provider.Name(),
		"hexagram", req.Hexagram.Number,
		"bytes", len(text),
	)
	return i.segmenter.Segment(text, req.Language), nil
}
