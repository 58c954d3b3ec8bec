package scoring

import "github.com/gophishfree/risk-engine/internal/domain"

// The post-model adjustment layer corrects known blind spots of the
// statistical model with an explainable, priority-ordered rule overlay:
//
//  1. A boost chain for social-engineering language where only the first
//     matching rule fires ("raise score to at least X"), so one textual cue
//     cannot compound into several overlapping boosts.
//  2. Unconditional boosts that apply independently of the chain.
//  3. Mutually exclusive dampening branches (trusted sender, newsletter),
//     evaluated only when nothing boosted the score.
//
// The floors, point values and caps below are empirically tuned constants
// carried over from the trained deployment; they are configuration data, not
// logic to revisit.

// Adjustment is the outcome of the rule overlay on one ML score
type Adjustment struct {
	Score             int
	Reasons           []string
	TrustedMatch      bool
	NewsletterSignals int
}

// boostRule raises the running score to at least Floor when Applies matches.
// Rules in the chain are mutually exclusive: evaluation stops at the first hit.
type boostRule struct {
	Applies func(in ruleInput) bool
	Floor   int
	Reason  string
}

// ruleInput flattens the signal groups the rules inspect. Missing groups
// are represented by zero values, which by convention never match a rule.
type ruleInput struct {
	financial  float64
	authority  float64
	phone      float64
	replyTo    float64
	linkless   float64
	urgency    float64
	headerMism float64
	riskyExt   float64
	doubleExt  float64
}

// boostChain is the priority-ordered social-engineering chain; first match wins
var boostChain = []boostRule{
	{
		Applies: func(in ruleInput) bool { return in.financial >= 3 && in.authority >= 2 },
		Floor:   80,
		Reason:  "Strong financial request combined with authority impersonation",
	},
	{
		Applies: func(in ruleInput) bool { return in.phone >= 1 && in.financial >= 2 },
		Floor:   75,
		Reason:  "Phone callback request tied to a financial matter",
	},
	{
		Applies: func(in ruleInput) bool { return in.linkless >= 1 && in.urgency >= 3 && in.financial >= 2 },
		Floor:   75,
		Reason:  "Linkless email pressing urgently for a financial action",
	},
	{
		Applies: func(in ruleInput) bool { return in.financial >= 4 },
		Floor:   60,
		Reason:  "High-intensity financial request language",
	},
	{
		Applies: func(in ruleInput) bool { return in.authority >= 3 },
		Floor:   55,
		Reason:  "Authority impersonation language",
	},
}

// attachmentFloors apply independently of the chain above
var attachmentFloors = []boostRule{
	{
		Applies: func(in ruleInput) bool { return in.riskyExt >= 1 && in.urgency >= 2 },
		Floor:   70,
		Reason:  "Risky attachment type combined with urgent language",
	},
	{
		Applies: func(in ruleInput) bool { return in.doubleExt >= 1 },
		Floor:   80,
		Reason:  "Attachment filename hides a double extension",
	},
}

const (
	replyToMismatchPoints = 15
	trustedDomainCap      = 30
	newsletterCap         = 45
	newsletterMinSignals  = 2
)

// ApplyAdjustments runs the rule overlay on the integer ML score and returns
// the final 0-100 score with the ordered list of adjustment reasons.
// All inputs were validated/defaulted upstream; there are no error paths here.
func ApplyAdjustments(mlScore int, sig domain.Signals, prov ProvenanceSets) Adjustment {
	in := flatten(sig)
	adj := Adjustment{
		Score:             clampScore(mlScore),
		NewsletterSignals: sig.Newsletter.Count(),
	}

	boosted := false

	// Priority chain: only the highest-priority matching condition applies
	for _, rule := range boostChain {
		if rule.Applies(in) {
			adj.raiseTo(rule.Floor, rule.Reason)
			boosted = true
			break
		}
	}

	// Additive boost: reply-to mismatch adds points on top of any floor
	if in.replyTo >= 1 {
		adj.addPoints(replyToMismatchPoints, "Reply-To domain differs from the sender domain")
		boosted = true
	}

	// Attachment floors apply regardless of the chain outcome
	for _, rule := range attachmentFloors {
		if rule.Applies(in) {
			adj.raiseTo(rule.Floor, rule.Reason)
			boosted = true
		}
	}

	// Dampening only when no boost-qualifying condition fired
	if !boosted {
		adj.dampen(sig, prov, in)
	} else if prov.IsTrusted(sig.SenderDomain) && !prov.IsFreeProvider(sig.SenderDomain) {
		adj.TrustedMatch = true
		adj.note("Possible spoofing of a trusted domain")
	}

	adj.Score = clampScore(adj.Score)
	return adj
}

func (a *Adjustment) dampen(sig domain.Signals, prov ProvenanceSets, in ruleInput) {
	// Free/public providers are scored purely on their own merits: anyone
	// can send from gmail.com, so trust-based dampening must never apply
	if prov.IsFreeProvider(sig.SenderDomain) {
		return
	}

	spoofSignals := hasSpoofingSignals(in)

	if prov.IsTrusted(sig.SenderDomain) {
		a.TrustedMatch = true
		if spoofSignals {
			// Trusted provenance does not excuse BEC/attachment/header
			// anomalies; surface the conflict instead of dampening
			a.note("Possible spoofing of a trusted domain")
			return
		}
		a.capAt(trustedDomainCap, "Sender domain is a recognized trusted sender")
		return
	}

	if a.NewsletterSignals >= newsletterMinSignals && !spoofSignals {
		a.capAt(newsletterCap, "Email matches common newsletter patterns")
	}
}

// hasSpoofingSignals reports whether any BEC, risky-attachment or
// header-mismatch evidence is present — the signals that disqualify a sender
// from trusted/newsletter dampening
func hasSpoofingSignals(in ruleInput) bool {
	return in.financial > 0 || in.authority > 0 || in.phone > 0 ||
		in.replyTo > 0 || in.headerMism > 0 ||
		in.riskyExt > 0 || in.doubleExt > 0
}

func (a *Adjustment) raiseTo(floor int, reason string) {
	if a.Score < floor {
		a.Score = floor
	}
	a.Reasons = append(a.Reasons, reason)
}

func (a *Adjustment) addPoints(points int, reason string) {
	a.Score += points
	if a.Score > 100 {
		a.Score = 100
	}
	a.Reasons = append(a.Reasons, reason)
}

func (a *Adjustment) capAt(limit int, reason string) {
	if a.Score > limit {
		a.Score = limit
	}
	a.Reasons = append(a.Reasons, reason)
}

func (a *Adjustment) note(reason string) {
	a.Reasons = append(a.Reasons, reason)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func flatten(sig domain.Signals) ruleInput {
	var in ruleInput
	if sig.BEC != nil {
		in.financial = sig.BEC.FinancialRequestScore
		in.authority = sig.BEC.AuthorityImpersonationScore
		in.phone = sig.BEC.PhoneCallbackPattern
		in.replyTo = sig.BEC.ReplyToMismatch
		in.linkless = sig.BEC.IsLinkless
	}
	if sig.Rules != nil {
		in.urgency = sig.Rules.UrgencyScore
		in.headerMism = sig.Rules.HeaderMismatch
	}
	if sig.Attachment != nil {
		in.riskyExt = sig.Attachment.RiskyAttachmentExtension
		in.doubleExt = sig.Attachment.DoubleExtensionFlag
	}
	return in
}
