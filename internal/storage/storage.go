package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/mail-cci/phishguard/internal/types"
)

// New opens a MySQL connection using the provided URL and limits the number of
// open connections.
func New(dbURL string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("mysql", dbURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Store persists assessment history. Component scores, triggered reasons
// and details are stored as JSON columns; the hot fields (score, risk
// level, scheme) get their own columns for querying.
type Store struct{ DB *sql.DB }

// NewStore creates a Store using the provided DB.
func NewStore(db *sql.DB) *Store { return &Store{DB: db} }

// SaveAssessment persists one finished assessment together with selected
// message facts. It returns the generated row ID.
func (s *Store) SaveAssessment(ctx context.Context, view *types.MetadataView, assessment *types.Assessment) (int64, error) {
	components, err := json.Marshal(assessment.ComponentScores)
	if err != nil {
		return 0, err
	}
	reasons, err := json.Marshal(assessment.TriggeredReasons)
	if err != nil {
		return 0, err
	}
	details, err := json.Marshal(assessment.Details)
	if err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `INSERT INTO assessments
        (correlation_id, scheme, overall_score, risk_level, spf_present, dmarc_present, dkim_present,
         originating_ip, from_addr, subject, component_scores, triggered_reasons, details, assessed_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		assessment.CorrelationID, assessment.Scheme, assessment.OverallScore, assessment.RiskLevel,
		assessment.SPF, assessment.DMARC, assessment.DKIM,
		assessment.OriginatingIP, view.From, view.Subject,
		components, reasons, details, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAssessment loads an assessment by correlation ID. A missing row
// returns sql.ErrNoRows untouched so callers can map it to a 404.
func (s *Store) GetAssessment(ctx context.Context, correlationID string) (*types.Assessment, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT correlation_id, scheme, overall_score, risk_level,
        spf_present, dmarc_present, dkim_present, originating_ip,
        component_scores, triggered_reasons, details
        FROM assessments WHERE correlation_id = ?`, correlationID)

	var (
		assessment types.Assessment
		components []byte
		reasons    []byte
		details    []byte
	)
	if err := row.Scan(&assessment.CorrelationID, &assessment.Scheme, &assessment.OverallScore,
		&assessment.RiskLevel, &assessment.SPF, &assessment.DMARC, &assessment.DKIM,
		&assessment.OriginatingIP, &components, &reasons, &details); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(components, &assessment.ComponentScores); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reasons, &assessment.TriggeredReasons); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &assessment.Details); err != nil {
		return nil, err
	}

	return &assessment, nil
}
