package scoring

import (
	"math"

	"github.com/gophishfree/risk-engine/internal/domain"
	"github.com/gophishfree/risk-engine/internal/domain/features"
	"github.com/gophishfree/risk-engine/internal/domain/model"
)

// Engine runs the unified scoring pipeline: feature assembly, normalization,
// forest inference, calibration, rule overlay, reason derivation.
//
// The engine is pure computation over its inputs plus the immutable model
// artifact: no I/O, no mutable state, safe for any number of concurrent
// callers. Re-scoring after a deep scan is simply a second invocation with
// an augmented signal set.
type Engine struct {
	builder *features.Builder
	forest  *model.Forest // nil when no artifact could be loaded
}

// NewEngine creates a scoring engine. forest may be nil, in which case every
// scan falls back to the neutral probability — a conservative "unknown" score
// is more useful to callers than refusing to scan.
func NewEngine(forest *model.Forest, strict bool) *Engine {
	return &Engine{
		builder: features.NewBuilder(strict),
		forest:  forest,
	}
}

// HasModel reports whether a usable artifact is loaded
func (e *Engine) HasModel() bool {
	return e.forest != nil
}

// Score produces a RiskAssessment for one scan attempt. prov is the per-call
// read-only snapshot of the domain provenance sets. Identity and timestamps
// are left to the caller so the pipeline itself stays deterministic:
// identical inputs always produce an identical assessment.
func (e *Engine) Score(sig domain.Signals, prov ProvenanceSets) domain.RiskAssessment {
	dnsRan := sig.DNS != nil
	deepScanRan := sig.Page != nil

	vec := e.builder.Build(sig, dnsRan, deepScanRan)

	calibrated := model.NeutralProbability
	if e.forest != nil {
		normalized := e.forest.Scaler.Transform(vec)
		calibrated = e.forest.Calibrate(e.forest.Predict(normalized))
	}

	mlScore := int(math.Round(calibrated * 100))
	adj := ApplyAdjustments(mlScore, sig, prov)

	return domain.RiskAssessment{
		Score:              adj.Score,
		MLScore:            mlScore,
		Level:              domain.LevelForScore(adj.Score),
		Probability:        calibrated,
		Confidence:         math.Abs(calibrated-0.5) * 2,
		DNSRan:             dnsRan,
		DeepScanRan:        deepScanRan,
		AdjustmentReasons:  adj.Reasons,
		Reasons:            DeriveReasons(sig, calibrated),
		TrustedDomainMatch: adj.TrustedMatch,
		NewsletterSignals:  adj.NewsletterSignals,
	}
}
