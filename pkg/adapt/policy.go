package adapt

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhvanilabs/sadhana/pkg/fusion"
)

const DefaultEnrichTimeout = 2 * time.Second

// Policy resolves adaptation requests. With no enricher configured every
// decision comes from the rule tables; with one configured the enrichment
// answer wins only when it arrives in time and validates.
type Policy struct {
	enricher Enricher
	timeout  time.Duration
	logger   *slog.Logger
}

type PolicyOption func(*Policy)

func WithEnricher(e Enricher) PolicyOption {
	return func(p *Policy) { p.enricher = e }
}

func WithEnrichTimeout(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) PolicyOption {
	return func(p *Policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{
		timeout: DefaultEnrichTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decide returns a decision for the snapshot. It never fails: enrichment
// problems are logged and answered by the deterministic tables tagged
// source=fallback.
func (p *Policy) Decide(ctx context.Context, snap fusion.Snapshot, obs Observed) Decision {
	if p.enricher != nil {
		enrichCtx, cancel := context.WithTimeout(ctx, p.timeout)
		decision, err := p.enricher.Enrich(enrichCtx, Request{Snapshot: snap, Observed: obs})
		cancel()
		if err == nil {
			decision.Source = SourceModel
			return decision
		}
		p.logger.Debug("enrichment failed, using rule tables", "error", err)
	}

	decision := ruleDecision(snap, obs)
	decision.Source = SourceFallback
	return decision
}
