// Package deepscan fetches a bounded number of linked pages and derives the
// page-content signal group. Pages are fetched sequentially with a strict
// per-request timeout and body size cap; any page that cannot be fetched or
// parsed is skipped.
package deepscan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html"

	"github.com/gophishfree/risk-engine/internal/domain"
	"github.com/gophishfree/risk-engine/pkg/logger"
)

const defaultMaxBodyBytes = 2 << 20

// Scanner fetches linked pages for content analysis
type Scanner struct {
	http         *http.Client
	log          *logger.Logger
	maxPages     int
	perPage      time.Duration
	maxBodyBytes int64
}

// NewScanner creates a page scanner. maxPages bounds how many links one
// email may trigger fetches for; perPage is the per-request timeout.
func NewScanner(client *http.Client, log *logger.Logger, maxPages int, perPage time.Duration) *Scanner {
	if client == nil {
		client = http.DefaultClient
	}
	if maxPages < 1 {
		maxPages = 3
	}
	if perPage <= 0 {
		perPage = 5 * time.Second
	}
	return &Scanner{
		http:         client,
		log:          log.WithComponent("deepscan"),
		maxPages:     maxPages,
		perPage:      perPage,
		maxBodyBytes: defaultMaxBodyBytes,
	}
}

// Scan fetches up to maxPages of the given links and merges their page
// features, keeping the worst observation per signal. An error means no
// page could be analyzed at all; callers then score without the group.
func (s *Scanner) Scan(ctx context.Context, links []string) (*domain.PageSignals, error) {
	if len(links) == 0 {
		return nil, fmt.Errorf("no links to scan")
	}

	analyzed := 0
	var merged domain.PageSignals
	for _, link := range links {
		if analyzed >= s.maxPages {
			break
		}
		sig, err := s.scanPage(ctx, link)
		if err != nil {
			s.log.Warn().Str("url", link).Err(err).Msg("page fetch failed")
			continue
		}
		merged = mergeWorst(merged, *sig)
		analyzed++
	}
	if analyzed == 0 {
		return nil, fmt.Errorf("no page could be fetched")
	}
	return &merged, nil
}

func (s *Scanner) scanPage(ctx context.Context, link string) (*domain.PageSignals, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.perPage)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, s.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	finalURL := resp.Request.URL
	if finalURL == nil {
		finalURL, _ = url.Parse(link)
	}
	sig := pageFeatures(doc, finalURL)
	return &sig, nil
}

// mergeWorst keeps the riskiest observation per signal across pages:
// binary flags OR together, ratios take the maximum
func mergeWorst(a, b domain.PageSignals) domain.PageSignals {
	return domain.PageSignals{
		InsecureForms:                 maxF(a.InsecureForms, b.InsecureForms),
		RelativeFormAction:            maxF(a.RelativeFormAction, b.RelativeFormAction),
		ExtFormAction:                 maxF(a.ExtFormAction, b.ExtFormAction),
		AbnormalFormAction:            maxF(a.AbnormalFormAction, b.AbnormalFormAction),
		SubmitInfoToEmail:             maxF(a.SubmitInfoToEmail, b.SubmitInfoToEmail),
		PctExtHyperlinks:              maxF(a.PctExtHyperlinks, b.PctExtHyperlinks),
		PctExtResourceUrls:            maxF(a.PctExtResourceUrls, b.PctExtResourceUrls),
		ExtFavicon:                    maxF(a.ExtFavicon, b.ExtFavicon),
		PctNullSelfRedirectHyperlinks: maxF(a.PctNullSelfRedirectHyperlinks, b.PctNullSelfRedirectHyperlinks),
		IframeOrFrame:                 maxF(a.IframeOrFrame, b.IframeOrFrame),
		MissingTitle:                  maxF(a.MissingTitle, b.MissingTitle),
		ImagesOnlyInForm:              maxF(a.ImagesOnlyInForm, b.ImagesOnlyInForm),
		EmbeddedBrandName:             maxF(a.EmbeddedBrandName, b.EmbeddedBrandName),
	}
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
