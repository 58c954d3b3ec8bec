// Package application orchestrates the scan pipeline: parse, extract,
// optional DNS and deep-scan stages, scoring, persistence.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gophishfree/risk-engine/internal/adapters/email"
	"github.com/gophishfree/risk-engine/internal/domain"
	"github.com/gophishfree/risk-engine/internal/domain/extraction"
	"github.com/gophishfree/risk-engine/internal/domain/scoring"
	"github.com/gophishfree/risk-engine/internal/ports"
	"github.com/gophishfree/risk-engine/pkg/logger"
)

// ScanService runs full email scans and records their history.
//
// Error handling strategy:
//   - The optional stages (DNS, deep scan, persistence) degrade on failure:
//     the scan still produces an assessment, the miss is logged
//   - Only unparseable input fails a scan outright
type ScanService struct {
	parser    *email.Parser
	extractor *extraction.Extractor
	engine    *scoring.Engine
	prov      scoring.ProvenanceSets

	resolver ports.DomainResolver // nil disables the DNS stage
	pages    ports.PageScanner    // nil disables the deep-scan stage
	storage  ports.Storage        // nil disables scan history

	log   *logger.Logger
	now   func() time.Time
	newID func() uuid.UUID
}

// NewScanService creates the scan orchestrator with dependency injection.
// resolver, pages and storage may each be nil to disable that stage.
func NewScanService(
	engine *scoring.Engine,
	prov scoring.ProvenanceSets,
	resolver ports.DomainResolver,
	pages ports.PageScanner,
	storage ports.Storage,
	log *logger.Logger,
) *ScanService {
	return &ScanService{
		parser:    email.NewParser(),
		extractor: extraction.NewExtractor(),
		engine:    engine,
		prov:      prov,
		resolver:  resolver,
		pages:     pages,
		storage:   storage,
		log:       log.WithComponent("scan"),
		now:       time.Now,
		newID:     uuid.New,
	}
}

// ScanRaw scans one raw RFC 5322 message end to end. When the deep-scan
// stage is enabled and the email carries links, scoring runs twice: once
// without page signals and once with them, and the second assessment wins.
func (s *ScanService) ScanRaw(ctx context.Context, raw []byte) (*domain.RiskAssessment, error) {
	parsed, err := s.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing email: %w", err)
	}

	sig := s.extractor.Extract(parsed)
	links := linkTargets(parsed.Links)

	if s.resolver != nil {
		dnsSig, err := s.resolver.Scan(ctx, sig.SenderDomain, linkDomains(parsed.Links))
		if err != nil {
			s.log.Warn().Err(err).Str("sender_domain", sig.SenderDomain).
				Msg("dns stage skipped")
		} else {
			sig.DNS = dnsSig
		}
	}

	assessment := s.engine.Score(sig, s.prov)

	if s.pages != nil && len(links) > 0 {
		pageSig, err := s.pages.Scan(ctx, links)
		if err != nil {
			s.log.Warn().Err(err).Msg("deep-scan stage skipped")
		} else {
			sig.Page = pageSig
			assessment = s.engine.Score(sig, s.prov)
		}
	}

	emailID := s.newID()
	s.stamp(&assessment, emailID)

	s.persist(ctx, &domain.ScannedEmail{
		ID:          emailID,
		Subject:     parsed.Subject,
		SenderEmail: parsed.FromAddress,
		SenderName:  parsed.FromName,
		ScannedAt:   assessment.AnalyzedAt,
	}, &assessment)

	s.logOutcome(parsed.Subject, assessment)
	return &assessment, nil
}

// ScoreSignals scores a pre-extracted signal set, bypassing parsing and the
// collaborator stages. Used by callers that run their own extraction.
func (s *ScanService) ScoreSignals(ctx context.Context, sig domain.Signals) (*domain.RiskAssessment, error) {
	assessment := s.engine.Score(sig, s.prov)
	s.stamp(&assessment, uuid.Nil)

	if s.storage != nil {
		if err := s.storage.CreateAssessment(ctx, &assessment); err != nil {
			s.log.Warn().Err(err).Msg("failed to store assessment")
		}
	}
	return &assessment, nil
}

// RecentScans retrieves the latest stored assessments
func (s *ScanService) RecentScans(ctx context.Context, limit int) ([]domain.RiskAssessment, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("scan history is not enabled")
	}
	return s.storage.GetRecentAssessments(ctx, limit)
}

// HighRiskScans retrieves stored assessments at high or dangerous level
func (s *ScanService) HighRiskScans(ctx context.Context, limit int) ([]domain.RiskAssessment, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("scan history is not enabled")
	}
	return s.storage.GetHighRiskAssessments(ctx, limit)
}

// HasModel reports whether the engine is running with a loaded artifact
func (s *ScanService) HasModel() bool {
	return s.engine.HasModel()
}

// stamp assigns identity and time to a freshly computed assessment
func (s *ScanService) stamp(a *domain.RiskAssessment, emailID uuid.UUID) {
	a.ID = s.newID()
	a.EmailID = emailID
	a.AnalyzedAt = s.now()
}

// persist writes scan history; storage failures are logged, never fatal
func (s *ScanService) persist(ctx context.Context, email *domain.ScannedEmail, a *domain.RiskAssessment) {
	if s.storage == nil {
		return
	}
	if err := s.storage.CreateScannedEmail(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email_id", email.ID.String()).
			Msg("failed to store scanned email")
		return
	}
	if err := s.storage.CreateAssessment(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("assessment_id", a.ID.String()).
			Msg("failed to store assessment")
	}
}

func (s *ScanService) logOutcome(subject string, a domain.RiskAssessment) {
	event := s.log.Info()
	if a.Level == domain.RiskLevelHigh || a.Level == domain.RiskLevelDangerous {
		event = s.log.Warn()
	}
	event.
		Str("subject", subject).
		Int("score", a.Score).
		Int("ml_score", a.MLScore).
		Str("level", string(a.Level)).
		Bool("dns_ran", a.DNSRan).
		Bool("deep_scan_ran", a.DeepScanRan).
		Msg("scan complete")
}

func linkTargets(links []extraction.Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Href)
	}
	return out
}

func linkDomains(links []extraction.Link) []string {
	seen := make(map[string]bool, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		host := extraction.LinkHost(l.Href)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		out = append(out, host)
	}
	return out
}
