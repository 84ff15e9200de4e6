package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/embedstack/wvtriage/internal/cache"
	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/engine"
	"github.com/embedstack/wvtriage/internal/metrics"
	"github.com/embedstack/wvtriage/internal/models"
	"github.com/embedstack/wvtriage/internal/patterns"
	"github.com/embedstack/wvtriage/internal/repo"
	"github.com/embedstack/wvtriage/internal/utils"
)

// CatalogSource yields the catalog for the next run; a watcher-backed
// source may return a newer catalog between runs, never within one.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// StaticCatalog is a CatalogSource that always returns the same catalog.
type StaticCatalog struct{ Catalog *catalog.Catalog }

// Current implements CatalogSource.
func (s StaticCatalog) Current() *catalog.Catalog { return s.Catalog }

// HistoryRepo defines the persistence operations the service needs.
type HistoryRepo interface {
	SaveReport(ctx context.Context, report models.TriageReport) error
	ListReports(ctx context.Context, req models.ListReportsRequest) ([]models.ReportSummary, error)
	GetReport(ctx context.Context, reportID string) (models.TriageReport, error)
	LoadReports(ctx context.Context, limit int) ([]models.TriageReport, error)
}

// TriageService is the facade callers (CLI and HTTP API) go through: it
// reads input, runs the pipeline, records metrics, and optionally
// persists the report.
type TriageService struct {
	logger    *slog.Logger
	pipeline  *engine.Pipeline
	catalogs  CatalogSource
	history   HistoryRepo
	cache     *cache.ReportCache
	miner     *patterns.Miner
	latencies *utils.LatencyTracker
	maxLines  int
}

// NewTriageService constructs the facade. history may be nil (batch
// mode); cache may be nil to disable report caching.
func NewTriageService(
	logger *slog.Logger,
	pipeline *engine.Pipeline,
	catalogs CatalogSource,
	history HistoryRepo,
	reportCache *cache.ReportCache,
	maxLines int,
) *TriageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriageService{
		logger:    logger,
		pipeline:  pipeline,
		catalogs:  catalogs,
		history:   history,
		cache:     reportCache,
		miner:     patterns.NewMiner(logger),
		latencies: utils.NewLatencyTracker(1024),
		maxLines:  maxLines,
	}
}

// AnalyzeFile reads a trace dump from disk and analyzes it. A file read
// failure is fatal: the caller gets the error and no partial result.
func (s *TriageService) AnalyzeFile(ctx context.Context, path string, req models.AnalysisRequest) (models.TriageReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.TriageReport{}, utils.NewAppError("AnalyzeFile", "read trace dump", err)
	}
	return s.Analyze(ctx, splitLines(string(data)), req)
}

// Analyze runs one analysis over already-split lines.
func (s *TriageService) Analyze(ctx context.Context, lines []string, req models.AnalysisRequest) (models.TriageReport, error) {
	if s.maxLines > 0 && len(lines) > s.maxLines {
		return models.TriageReport{}, utils.NewAppError("Analyze",
			fmt.Sprintf("trace exceeds %d line limit", s.maxLines), nil)
	}

	start := time.Now()
	report, err := s.pipeline.Analyze(req, lines, s.catalogs.Current())
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(duration, len(lines), metrics.OutcomeError)
		s.logger.Error("analysis failed", slog.Any("error", err))
		return models.TriageReport{}, err
	}

	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration, len(lines), metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency",
			slog.Duration("p95", s.latencies.Percentile(95)),
			slog.Int("samples", count))
	}

	if s.history != nil {
		if err := s.history.SaveReport(ctx, report); err != nil {
			// Persistence is best-effort; the report is still returned.
			s.logger.Warn("failed to persist report", slog.Any("error", err))
		} else if s.cache != nil {
			s.cache.Put(report)
		}
	}

	return report, nil
}

// ListReports returns stored report summaries.
func (s *TriageService) ListReports(ctx context.Context, req models.ListReportsRequest) ([]models.ReportSummary, error) {
	if s.history == nil {
		return nil, utils.NewAppError("ListReports", "history store not configured", nil)
	}
	return s.history.ListReports(ctx, req)
}

// GetReport returns one stored report, serving repeats from the cache.
func (s *TriageService) GetReport(ctx context.Context, reportID string) (models.TriageReport, error) {
	if s.history == nil {
		return models.TriageReport{}, utils.NewAppError("GetReport", "history store not configured", nil)
	}
	if s.cache != nil {
		if report, ok := s.cache.Get(reportID); ok {
			return report, nil
		}
	}
	report, err := s.history.GetReport(ctx, reportID)
	if err != nil {
		return models.TriageReport{}, err
	}
	if s.cache != nil {
		s.cache.Put(report)
	}
	return report, nil
}

// MinePatterns aggregates stored reports into recurring failure
// patterns.
func (s *TriageService) MinePatterns(ctx context.Context, limit int) ([]models.FailurePattern, error) {
	if s.history == nil {
		return nil, utils.NewAppError("MinePatterns", "history store not configured", nil)
	}
	reports, err := s.history.LoadReports(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.miner.Mine(reports), nil
}

// LatencyP95 exposes the rolling p95 analysis latency.
func (s *TriageService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}

// IsNotFound reports whether err means a missing stored report.
func IsNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
