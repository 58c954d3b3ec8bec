package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/gophishfree/risk-engine/internal/domain"
)

// PostgresStore implements ports.Storage for PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage instance
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates database tables if they don't exist.
// In production, use proper migration tools.
func (s *PostgresStore) InitSchema() error {
	schema := `
	-- Emails submitted for scanning. Only metadata is kept: full bodies can
	-- be MB-sized and are never needed after the assessment is produced.
	CREATE TABLE IF NOT EXISTS scanned_emails (
		id UUID PRIMARY KEY,
		subject TEXT,
		sender_email VARCHAR(254) NOT NULL,
		sender_name VARCHAR(100),
		received_at TIMESTAMP,
		scanned_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Investigation entry point: "all scans from this sender"
	CREATE INDEX IF NOT EXISTS idx_scanned_emails_sender ON scanned_emails(sender_email);
	CREATE INDEX IF NOT EXISTS idx_scanned_emails_scanned_at ON scanned_emails(scanned_at DESC);

	-- One row per scoring pass. A rescan after a deep scan inserts a second
	-- row for the same email_id rather than updating the first, so the
	-- before/after pair stays visible.
	--
	-- reasons and adjustment_reasons as JSONB string arrays: they are always
	-- read alongside their parent row, a dedicated table buys nothing here.
	CREATE TABLE IF NOT EXISTS risk_assessments (
		id UUID PRIMARY KEY,
		email_id UUID REFERENCES scanned_emails(id) ON DELETE CASCADE,
		score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
		ml_score INTEGER NOT NULL CHECK (ml_score BETWEEN 0 AND 100),
		risk_level VARCHAR(10) NOT NULL,
		probability DECIMAL(6,5) NOT NULL,
		confidence DECIMAL(6,5) NOT NULL,
		dns_ran BOOLEAN NOT NULL DEFAULT FALSE,
		deep_scan_ran BOOLEAN NOT NULL DEFAULT FALSE,
		trusted_domain_match BOOLEAN NOT NULL DEFAULT FALSE,
		newsletter_signals INTEGER NOT NULL DEFAULT 0,
		adjustment_reasons JSONB,
		reasons JSONB,
		analyzed_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Backs GetHighRiskAssessments: filter on level, newest first
	CREATE INDEX IF NOT EXISTS idx_assessments_level ON risk_assessments(risk_level, analyzed_at DESC);
	CREATE INDEX IF NOT EXISTS idx_assessments_email ON risk_assessments(email_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_analyzed_at ON risk_assessments(analyzed_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateScannedEmail inserts the metadata of one submitted email
func (s *PostgresStore) CreateScannedEmail(ctx context.Context, email *domain.ScannedEmail) error {
	query := `
		INSERT INTO scanned_emails (id, subject, sender_email, sender_name, received_at, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var receivedAt any
	if !email.ReceivedAt.IsZero() {
		receivedAt = email.ReceivedAt
	}
	_, err := s.db.ExecContext(ctx, query,
		email.ID, email.Subject, email.SenderEmail, email.SenderName,
		receivedAt, email.ScannedAt,
	)
	return err
}

// GetScannedEmail retrieves one email record by ID
func (s *PostgresStore) GetScannedEmail(ctx context.Context, id uuid.UUID) (*domain.ScannedEmail, error) {
	query := `
		SELECT id, subject, sender_email, sender_name, received_at, scanned_at
		FROM scanned_emails
		WHERE id = $1
	`
	email := &domain.ScannedEmail{}
	var receivedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&email.ID, &email.Subject, &email.SenderEmail, &email.SenderName,
		&receivedAt, &email.ScannedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if receivedAt.Valid {
		email.ReceivedAt = receivedAt.Time
	}
	return email, nil
}

// CreateAssessment inserts one scoring result
func (s *PostgresStore) CreateAssessment(ctx context.Context, a *domain.RiskAssessment) error {
	adjustmentJSON, err := json.Marshal(a.AdjustmentReasons)
	if err != nil {
		return fmt.Errorf("failed to marshal adjustment reasons: %w", err)
	}
	reasonsJSON, err := json.Marshal(a.Reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}

	query := `
		INSERT INTO risk_assessments (
			id, email_id, score, ml_score, risk_level, probability, confidence,
			dns_ran, deep_scan_ran, trusted_domain_match, newsletter_signals,
			adjustment_reasons, reasons, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	var emailID any
	if a.EmailID != uuid.Nil {
		emailID = a.EmailID
	}
	_, err = s.db.ExecContext(ctx, query,
		a.ID, emailID, a.Score, a.MLScore, a.Level, a.Probability, a.Confidence,
		a.DNSRan, a.DeepScanRan, a.TrustedDomainMatch, a.NewsletterSignals,
		adjustmentJSON, reasonsJSON, a.AnalyzedAt,
	)
	return err
}

// GetRecentAssessments retrieves the latest assessments, newest first
func (s *PostgresStore) GetRecentAssessments(ctx context.Context, limit int) ([]domain.RiskAssessment, error) {
	query := selectAssessments + `
		ORDER BY analyzed_at DESC
		LIMIT $1
	`
	return s.queryAssessments(ctx, query, limit)
}

// GetHighRiskAssessments retrieves high and dangerous assessments, newest first
func (s *PostgresStore) GetHighRiskAssessments(ctx context.Context, limit int) ([]domain.RiskAssessment, error) {
	query := selectAssessments + `
		WHERE risk_level IN ('high', 'dangerous')
		ORDER BY score DESC, analyzed_at DESC
		LIMIT $1
	`
	return s.queryAssessments(ctx, query, limit)
}

const selectAssessments = `
	SELECT id, email_id, score, ml_score, risk_level, probability, confidence,
	       dns_ran, deep_scan_ran, trusted_domain_match, newsletter_signals,
	       adjustment_reasons, reasons, analyzed_at
	FROM risk_assessments
`

func (s *PostgresStore) queryAssessments(ctx context.Context, query string, args ...any) ([]domain.RiskAssessment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assessments := make([]domain.RiskAssessment, 0)
	for rows.Next() {
		var a domain.RiskAssessment
		var emailID uuid.NullUUID
		var adjustmentJSON, reasonsJSON []byte

		err := rows.Scan(
			&a.ID, &emailID, &a.Score, &a.MLScore, &a.Level, &a.Probability,
			&a.Confidence, &a.DNSRan, &a.DeepScanRan, &a.TrustedDomainMatch,
			&a.NewsletterSignals, &adjustmentJSON, &reasonsJSON, &a.AnalyzedAt,
		)
		if err != nil {
			return nil, err
		}
		if emailID.Valid {
			a.EmailID = emailID.UUID
		}
		json.Unmarshal(adjustmentJSON, &a.AdjustmentReasons)
		json.Unmarshal(reasonsJSON, &a.Reasons)
		assessments = append(assessments, a)
	}

	return assessments, rows.Err()
}
