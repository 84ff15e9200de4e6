package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/embedstack/wvtriage/internal/models"
)

// ErrNotFound is returned when a requested report does not exist.
var ErrNotFound = errors.New("report not found")

const schema = `
CREATE TABLE IF NOT EXISTS triage_reports (
	report_id  TEXT PRIMARY KEY,
	host_app   TEXT NOT NULL,
	root_cause TEXT NOT NULL,
	confidence REAL NOT NULL,
	created_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_triage_reports_created ON triage_reports(created_at DESC);
`

// HistoryStore persists completed reports to a local sqlite database.
type HistoryStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHistoryStore opens (and migrates) the sqlite database at path.
func NewHistoryStore(path string, logger *slog.Logger) (*HistoryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &HistoryStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// SaveReport stores a report; the full report is kept as a JSON payload
// alongside the queryable summary columns.
func (s *HistoryStore) SaveReport(ctx context.Context, report models.TriageReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO triage_reports (report_id, host_app, root_cause, confidence, created_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.ReportID,
		report.HostApp,
		report.RootCause(),
		report.Confidence.Final,
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

// ListReports returns summaries of stored reports, newest first.
func (s *HistoryStore) ListReports(ctx context.Context, req models.ListReportsRequest) ([]models.ReportSummary, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT report_id, host_app, root_cause, confidence, created_at
	          FROM triage_reports`
	args := make([]any, 0, 2)
	if req.HostApp != "" {
		query += ` WHERE host_app = ?`
		args = append(args, req.HostApp)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []models.ReportSummary
	for rows.Next() {
		var summary models.ReportSummary
		var created string
		if err := rows.Scan(&summary.ReportID, &summary.HostApp, &summary.RootCause, &summary.Confidence, &created); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			summary.CreatedAt = t
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// GetReport loads one full report by ID.
func (s *HistoryStore) GetReport(ctx context.Context, reportID string) (models.TriageReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM triage_reports WHERE report_id = ?`, reportID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TriageReport{}, ErrNotFound
	}
	if err != nil {
		return models.TriageReport{}, fmt.Errorf("load report: %w", err)
	}

	var report models.TriageReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return models.TriageReport{}, fmt.Errorf("decode report payload: %w", err)
	}
	return report, nil
}

// LoadReports loads the most recent full reports for pattern mining.
func (s *HistoryStore) LoadReports(ctx context.Context, limit int) ([]models.TriageReport, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM triage_reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	defer rows.Close()

	var out []models.TriageReport
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		var report models.TriageReport
		if err := json.Unmarshal([]byte(payload), &report); err != nil {
			s.logger.Warn("skipping undecodable report payload", slog.Any("error", err))
			continue
		}
		out = append(out, report)
	}
	return out, rows.Err()
}
