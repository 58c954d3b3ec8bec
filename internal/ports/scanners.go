package ports

import (
	"context"

	"github.com/gophishfree/risk-engine/internal/domain"
)

// DomainResolver runs the DNS stage of a scan. A nil signal group with an
// error means the stage could not run; scoring proceeds without it.
type DomainResolver interface {
	Scan(ctx context.Context, senderDomain string, linkDomains []string) (*domain.DNSSignals, error)
}

// PageScanner runs the deep-scan stage against the email's links
type PageScanner interface {
	Scan(ctx context.Context, links []string) (*domain.PageSignals, error)
}
