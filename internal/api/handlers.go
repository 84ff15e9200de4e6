package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/embedstack/wvtriage/internal/models"
	"github.com/embedstack/wvtriage/internal/services"
)

// maxTraceBody bounds request bodies; large captures should be trimmed
// by the extraction pipeline before upload.
const maxTraceBody = 256 << 20

// Handlers bundles the HTTP endpoints over the triage service.
type Handlers struct {
	svc    *services.TriageService
	logger *slog.Logger
}

// NewHandlers constructs the endpoint set.
func NewHandlers(svc *services.TriageService, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger}
}

// Analyze accepts the raw trace dump as a text/plain body. Run
// parameters arrive as query parameters: host_app, symptom, flow, from,
// to (microseconds).
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTraceBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	req := models.AnalysisRequest{
		HostApp: r.URL.Query().Get("host_app"),
		Symptom: r.URL.Query().Get("symptom"),
		Flow:    r.URL.Query().Get("flow"),
	}
	req.FromMicros = parseMicros(r.URL.Query().Get("from"))
	req.ToMicros = parseMicros(r.URL.Query().Get("to"))

	lines := splitBody(string(body))
	report, err := h.svc.Analyze(r.Context(), lines, req)
	if err != nil {
		h.logger.Error("analyze request failed", slog.Any("error", err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListReports returns stored report summaries.
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	req := models.ListReportsRequest{
		HostApp: r.URL.Query().Get("host_app"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Limit = n
		}
	}
	summaries, err := h.svc.ListReports(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// GetReport returns one stored report by ID.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		if services.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Patterns returns recurring failure patterns mined from stored
// reports.
func (h *Handlers) Patterns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	mined, err := h.svc.MinePatterns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mined)
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseMicros(v string) uint64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func splitBody(text string) []string {
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
