package scoring

import (
	"testing"

	"github.com/gophishfree/risk-engine/internal/domain"
	"github.com/gophishfree/risk-engine/internal/domain/features"
	"github.com/gophishfree/risk-engine/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testForest builds a small ensemble with an identity scaler: one stump on
// NoHttps (slot 14) and one on IpAddress (slot 15), each voting strongly for
// phishing when the flag is set.
func testForest(t *testing.T) *model.Forest {
	t.Helper()

	stump := func(featureIdx int) model.Tree {
		return model.Tree{
			Feature:       []int{featureIdx, -2, -2},
			Threshold:     []float64{0.5, -2, -2},
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Value:         [][2]float64{{0, 0}, {95, 5}, {5, 95}},
		}
	}

	mean := make([]float64, features.Count)
	scale := make([]float64, features.Count)
	for i := range scale {
		scale[i] = 1
	}

	return &model.Forest{
		Trees:  []model.Tree{stump(14), stump(15)},
		Scaler: model.Scaler{Mean: mean, Scale: scale},
	}
}

func TestEngine_ScenarioA_LexicalSignalsElevateScore(t *testing.T) {
	engine := NewEngine(testForest(t), true)
	prov := emptyProv()

	baseline := engine.Score(domain.Signals{
		Lexical:      &domain.LexicalSignals{},
		SenderDomain: "unknown-sender.net",
	}, prov)

	risky := engine.Score(domain.Signals{
		Lexical:      &domain.LexicalSignals{NoHTTPS: 1, IPAddress: 1},
		SenderDomain: "unknown-sender.net",
	}, prov)

	assert.Greater(t, risky.MLScore, baseline.MLScore,
		"insecure IP link must score above the all-legitimate baseline")
}

func TestEngine_ScenarioB_BoostChainOverridesModel(t *testing.T) {
	engine := NewEngine(testForest(t), true)

	assessment := engine.Score(domain.Signals{
		Lexical: &domain.LexicalSignals{},
		BEC: &domain.BECSignals{
			FinancialRequestScore:       3,
			AuthorityImpersonationScore: 2,
		},
		SenderDomain: "unknown-sender.net",
	}, emptyProv())

	assert.GreaterOrEqual(t, assessment.Score, 80,
		"boost chain must force the floor regardless of the ML score")
	assert.Less(t, assessment.MLScore, 80, "precondition: model alone scored lower")
}

func TestEngine_ScenarioC_TrustedDomainCapped(t *testing.T) {
	engine := NewEngine(testForest(t), true)

	assessment := engine.Score(domain.Signals{
		Lexical:      &domain.LexicalSignals{NoHTTPS: 1, IPAddress: 1},
		Rules:        &domain.RuleSignals{},
		BEC:          &domain.BECSignals{},
		Attachment:   &domain.AttachmentSignals{},
		SenderDomain: "paypal.com",
	}, emptyProv())

	assert.LessOrEqual(t, assessment.Score, 30)
	assert.True(t, assessment.TrustedDomainMatch)
}

func TestEngine_ScenarioD_FreeProviderNotDampened(t *testing.T) {
	engine := NewEngine(testForest(t), true)

	sig := domain.Signals{
		Lexical:    &domain.LexicalSignals{NoHTTPS: 1, IPAddress: 1},
		Rules:      &domain.RuleSignals{},
		BEC:        &domain.BECSignals{},
		Attachment: &domain.AttachmentSignals{},
	}

	sig.SenderDomain = "gmail.com"
	free := engine.Score(sig, emptyProv())

	assert.Equal(t, free.MLScore, free.Score,
		"free provider gets the unmodified ML-derived score")
	assert.False(t, free.TrustedDomainMatch)
}

func TestEngine_ScenarioE_MissingCalibrationPassesRawThrough(t *testing.T) {
	forest := testForest(t) // no calibration table attached
	engine := NewEngine(forest, true)

	sig := domain.Signals{
		Lexical:      &domain.LexicalSignals{NoHTTPS: 1},
		SenderDomain: "unknown-sender.net",
	}

	assessment := engine.Score(sig, emptyProv())

	vec := features.NewBuilder(true).Build(sig, false, false)
	raw := forest.Predict(forest.Scaler.Transform(vec))
	assert.Equal(t, raw, assessment.Probability,
		"absent table means calibrated probability equals raw exactly")
}

func TestEngine_NoModelFallsBackToNeutral(t *testing.T) {
	engine := NewEngine(nil, true)
	assert.False(t, engine.HasModel())

	assessment := engine.Score(domain.Signals{
		Lexical:      &domain.LexicalSignals{NoHTTPS: 1},
		SenderDomain: "unknown-sender.net",
	}, emptyProv())

	assert.Equal(t, 0.5, assessment.Probability)
	assert.Equal(t, 50, assessment.MLScore)
	assert.Equal(t, 0.0, assessment.Confidence)
}

func TestEngine_Idempotence(t *testing.T) {
	engine := NewEngine(testForest(t), true)
	prov := NewProvenanceSets([]string{"corp.example.com"}, []string{"bad.example.org"})

	sig := domain.Signals{
		Lexical:      &domain.LexicalSignals{NoHTTPS: 1, NumDots: 4},
		Rules:        &domain.RuleSignals{UrgencyScore: 2, LinkCount: 3},
		DNS:          &domain.DNSSignals{DomainExists: 1, HasMXRecord: 1},
		BEC:          &domain.BECSignals{FinancialRequestScore: 1},
		SenderDomain: "shop.example.net",
	}

	first := engine.Score(sig, prov)
	second := engine.Score(sig, prov)
	assert.Equal(t, first, second, "identical inputs must yield identical assessments")
}

func TestEngine_RiskLevelBoundaries(t *testing.T) {
	tests := []struct {
		score int
		level domain.RiskLevel
	}{
		{0, domain.RiskLevelLow},
		{49, domain.RiskLevelLow},
		{50, domain.RiskLevelMedium},
		{75, domain.RiskLevelMedium},
		{76, domain.RiskLevelHigh},
		{89, domain.RiskLevelHigh},
		{90, domain.RiskLevelDangerous},
		{100, domain.RiskLevelDangerous},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, domain.LevelForScore(tt.score), "score %d", tt.score)
	}
}

func TestEngine_ContextFlagsRecorded(t *testing.T) {
	engine := NewEngine(testForest(t), true)

	withDNS := engine.Score(domain.Signals{
		Lexical:      &domain.LexicalSignals{},
		DNS:          &domain.DNSSignals{DomainExists: 1},
		SenderDomain: "unknown-sender.net",
	}, emptyProv())
	assert.True(t, withDNS.DNSRan)
	assert.False(t, withDNS.DeepScanRan)

	without := engine.Score(domain.Signals{
		Lexical:      &domain.LexicalSignals{},
		SenderDomain: "unknown-sender.net",
	}, emptyProv())
	assert.False(t, without.DNSRan)
}

func TestEngine_ScoreAlwaysValid(t *testing.T) {
	engine := NewEngine(testForest(t), true)
	prov := emptyProv()

	inputs := []domain.Signals{
		{},
		{Lexical: &domain.LexicalSignals{NoHTTPS: 1, IPAddress: 1}, SenderDomain: "a.b"},
		{BEC: &domain.BECSignals{FinancialRequestScore: 5, AuthorityImpersonationScore: 5, ReplyToMismatch: 1}},
		{Attachment: &domain.AttachmentSignals{DoubleExtensionFlag: 1}, SenderDomain: "google.com"},
	}

	for _, sig := range inputs {
		a := engine.Score(sig, prov)
		assert.GreaterOrEqual(t, a.Score, 0)
		assert.LessOrEqual(t, a.Score, 100)
		assert.GreaterOrEqual(t, a.Probability, 0.0)
		assert.LessOrEqual(t, a.Probability, 1.0)
		assert.GreaterOrEqual(t, a.Confidence, 0.0)
		assert.LessOrEqual(t, a.Confidence, 1.0)
	}
}

func TestEngine_ReasonsNeverDisagreeWithAdjustments(t *testing.T) {
	// The reason list is derived independently of the score. When the
	// adjustment layer fires on a signal, the same signal must be visible
	// to the reason deriver.
	engine := NewEngine(testForest(t), true)

	assessment := engine.Score(domain.Signals{
		Lexical:      &domain.LexicalSignals{},
		BEC:          &domain.BECSignals{FinancialRequestScore: 3, AuthorityImpersonationScore: 2},
		SenderDomain: "unknown-sender.net",
	}, emptyProv())

	require.NotEmpty(t, assessment.AdjustmentReasons)
	assert.Contains(t, assessment.Reasons, "Contains financial request language")
	assert.Contains(t, assessment.Reasons, "Impersonates an authority figure")
}

func TestDeriveReasons_CapAndOrder(t *testing.T) {
	// Light everything up: the list must stop at the display cap
	sig := domain.Signals{
		Lexical: &domain.LexicalSignals{IPAddress: 1, NoHTTPS: 1},
		Rules: &domain.RuleSignals{
			Punycode: 1, SuspiciousTLD: 1, ShortenerDomain: 1,
			LinkMismatchCount: 2, HeaderMismatch: 1,
			UrgencyScore: 4, CredentialRequestScore: 3,
		},
		BEC: &domain.BECSignals{
			ReplyToMismatch: 1, FinancialRequestScore: 3,
			AuthorityImpersonationScore: 2, PhoneCallbackPattern: 1,
		},
		Attachment: &domain.AttachmentSignals{RiskyAttachmentExtension: 1, DoubleExtensionFlag: 1},
		DNS:        &domain.DNSSignals{RandomStringDomain: 1, UnresolvedDomains: 2},
	}

	reasons := DeriveReasons(sig, 0.97)
	assert.Len(t, reasons, 8)
	assert.Equal(t, "Statistical model rates this email as high risk", reasons[0])
}

func TestDeriveReasons_NoSignalsNoReasons(t *testing.T) {
	assert.Empty(t, DeriveReasons(domain.Signals{}, 0.3))
}
