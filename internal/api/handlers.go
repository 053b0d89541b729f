package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"skillboard/internal/analysis"
	"skillboard/internal/llm"
	"skillboard/internal/models"
	"skillboard/internal/service"
	"skillboard/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Options are the row limits used by the views and the API
type Options struct {
	PreviewRows    int
	FilterLimit    int
	ExportRows     int
	ChartTop       int
	AssistantRate  float64
	AssistantBurst int
}

// Handler serves the dashboard views and the JSON API
type Handler struct {
	Tables    *state.TableCache
	Sessions  *state.Sessions
	Assistant *service.Assistant
	Resolver  *llm.Resolver
	Export    *service.ExportService
	Suggester *service.Suggester
	Options   Options

	logger   *zap.Logger
	limiter  *clientLimiter
	validate *validator.Validate
	views    map[string]*template.Template
}

// NewHandler wires the handler; zero options fall back to the defaults
func NewHandler(tables *state.TableCache, sessions *state.Sessions, assistant *service.Assistant,
	resolver *llm.Resolver, export *service.ExportService, opts Options, logger *zap.Logger) *Handler {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 10
	}
	if opts.FilterLimit <= 0 {
		opts.FilterLimit = 50
	}
	if opts.ExportRows <= 0 {
		opts.ExportRows = service.DefaultExportRows
	}
	if opts.ChartTop <= 0 {
		opts.ChartTop = 10
	}
	if opts.AssistantRate <= 0 {
		opts.AssistantRate = 1
	}
	if opts.AssistantBurst <= 0 {
		opts.AssistantBurst = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		Tables:    tables,
		Sessions:  sessions,
		Assistant: assistant,
		Resolver:  resolver,
		Export:    export,
		Suggester: service.NewSuggester(),
		Options:   opts,
		logger:    logger,
		limiter:   newClientLimiter(opts.AssistantRate, opts.AssistantBurst),
		validate:  validator.New(),
		views:     mustParseViews(),
	}
}

// RegisterRoutes mounts every route on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	// Views
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/", h.Index)
		r.Get("/page/{page}", h.Navigate)
		r.Get("/dashboard", h.viewFor(models.PageDashboard))
		r.Get("/explorer", h.viewFor(models.PageExplorer))
		r.Get("/assistant", h.viewFor(models.PageAssistant))
		r.Get("/export", h.viewFor(models.PageExport))
		r.With(h.limiter.limitWith(h.assistantRateLimited)).Post("/assistant", h.AssistantForm)
	})

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Get("/rules", h.GetRules)
		r.Get("/rules/search", h.SearchRules)
		r.Get("/stats", h.GetStats)
		r.Get("/chart/lift", h.GetLiftChart)
		r.With(h.limiter.middleware).Post("/assistant", h.Ask)
		r.Get("/model", h.GetModel)
		r.Post("/model/refresh", h.RefreshModel)
		r.Post("/reload", h.Reload)
		r.Get("/export.csv", h.ExportCSV)
		r.Get("/export.pdf", h.ExportPDF)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Get("/session/page", h.GetPage)
			r.Post("/session/page", h.SetPage)
		})
	})
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Status
// ============================================================================

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := models.StatusResponse{
		Model: h.Resolver.Model(r.Context()),
	}

	// A failed load is reported as "not loaded" rather than an error
	if table, err := h.Tables.Get(r.Context()); err == nil {
		resp.Loaded = true
		resp.Rules = table.Len()
		resp.Columns = len(table.Headers)
		resp.Source = table.Source
		resp.LoadedAt = table.LoadedAt.UTC().Format("2006-01-02T15:04:05Z")
	}

	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Rules
// ============================================================================

func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	limit := getIntParam(r, "limit", h.Options.PreviewRows)
	if limit <= 0 {
		limit = h.Options.PreviewRows
	}
	rules := table.Head(limit)
	writeJSON(w, http.StatusOK, models.RulesResponse{
		Total: table.Len(),
		Rows:  len(rules),
		Rules: rules,
	})
}

func (h *Handler) SearchRules(w http.ResponseWriter, r *http.Request) {
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	column, err := service.ParseColumn(r.URL.Query().Get("column"))
	if err != nil {
		writeError(w, err)
		return
	}
	query := r.URL.Query().Get("q")
	limit := getIntParam(r, "limit", h.Options.FilterLimit)
	if limit <= 0 || limit > h.Options.FilterLimit {
		limit = h.Options.FilterLimit
	}

	rules := service.FilterRules(table.Rules, column, query, limit)
	resp := models.RulesResponse{
		Query:  query,
		Column: string(column),
		Total:  service.CountMatches(table.Rules, column, query),
		Rows:   len(rules),
		Rules:  rules,
	}
	if len(rules) == 0 {
		resp.Suggestions = h.Suggester.Suggest(table.Rules, query)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Stats & Chart
// ============================================================================

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	summary := analysis.Summarize(table)
	writeJSON(w, http.StatusOK, models.StatsResponse{
		Rules:               summary.Rules,
		DistinctAntecedents: summary.DistinctAntecedents,
		DistinctConsequents: summary.DistinctConsequents,
		Metrics:             summary.Metrics,
		Columns:             service.ProfileTable(table),
	})
}

func (h *Handler) GetLiftChart(w http.ResponseWriter, r *http.Request) {
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	top := getIntParam(r, "top", h.Options.ChartTop)
	writeJSON(w, http.StatusOK, models.ChartResponse{
		Points: service.LiftChart(service.TopByLift(table.Rules, top)),
	})
}

// ============================================================================
// Assistant
// ============================================================================

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	table, err := h.Tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	answer, err := h.Assistant.Ask(r.Context(), table, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AssistantResponse{
		Answer:  answer.Text,
		Model:   answer.Model,
		Context: answer.Context,
	})
}

// ============================================================================
// Model
// ============================================================================

func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	model := h.Resolver.Model(r.Context())
	writeJSON(w, http.StatusOK, models.ModelResponse{
		Model:    model,
		Fallback: h.Resolver.IsFallback(model),
	})
}

func (h *Handler) RefreshModel(w http.ResponseWriter, r *http.Request) {
	model := h.Resolver.Refresh(r.Context())
	h.logger.Info("model refreshed", zap.String("model", model))
	writeJSON(w, http.StatusOK, models.ModelResponse{
		Model:    model,
		Fallback: h.Resolver.IsFallback(model),
	})
}

// ============================================================================
// Reload
// ============================================================================

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	table, err := h.Tables.Reload(r.Context())
	if err != nil {
		h.logger.Warn("reload failed", zap.Error(err))
		writeError(w, err)
		return
	}

	h.logger.Info("rule table reloaded", zap.String("source", table.Source), zap.Int("rules", table.Len()))
	writeJSON(w, http.StatusOK, models.StatusResponse{
		Loaded:   true,
		Rules:    table.Len(),
		Columns:  len(table.Headers),
		Source:   table.Source,
		LoadedAt: table.LoadedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Model:    h.Resolver.Model(r.Context()),
	})
}

// ============================================================================
// Export
// ============================================================================

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	rows := service.ClampRows(getIntParam(r, "rows", h.Options.ExportRows))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="skill_rules_top%d.csv"`, rows))
	if err := h.Export.WriteCSV(w, table, rows); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
	}
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	rows := service.ClampRows(getIntParam(r, "rows", h.Options.ExportRows))
	// Render first so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.Export.WritePDF(&buf, table, rows); err != nil {
		h.logger.Error("pdf export failed", zap.Error(err))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="skill_rules_top%d.pdf"`, rows))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// ============================================================================
// Session page
// ============================================================================

func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page := h.Sessions.Current(sessionID(r))
	writeJSON(w, http.StatusOK, models.PageResponse{Page: page, Title: page.Title()})
}

func (h *Handler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req models.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	page, err := models.ParsePage(req.Page)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Sessions.Navigate(sessionID(r), page)
	writeJSON(w, http.StatusOK, models.PageResponse{Page: page, Title: page.Title()})
}

// ============================================================================
// Helpers
// ============================================================================

func getIntParam(r *http.Request, name string, defaultVal int) int {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
