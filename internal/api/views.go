package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"skillboard/internal/analysis"
	"skillboard/internal/models"
	"skillboard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const errorView = "error"

var viewFuncs = template.FuncMap{
	"display": models.DisplaySet,
	"num": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"markdown": renderMarkdown,
}

// Raw HTML in the source is omitted unless html.WithUnsafe is set
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts a model answer to HTML, falling back to escaped text
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(buf.String())
}

// mustParseViews parses one template set per page; each set shares the layout
func mustParseViews() map[string]*template.Template {
	views := make(map[string]*template.Template)
	names := []string{errorView}
	for _, p := range models.Pages {
		names = append(names, string(p))
	}
	for _, name := range names {
		views[name] = template.Must(template.New("layout.html").Funcs(viewFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return views
}

type navItem struct {
	Page   models.Page
	Title  string
	Active bool
}

type barPoint struct {
	Label string
	Lift  float64
	Width float64
}

type dashboardData struct {
	Total   int
	Rules   []models.Rule
	Summary analysis.Summary
	Chart   []barPoint
}

type explorerData struct {
	Query       string
	Column      string
	Columns     []service.Column
	Total       int
	Rules       []models.Rule
	Suggestions []string
	Error       string
}

type assistantData struct {
	Query  string
	Answer *service.Answer
	Error  string
	Hint   string
	Notice string
}

type exportData struct {
	Rows    int
	MaxRows int
	Total   int
}

type viewData struct {
	Page      models.Page
	Title     string
	Model     string
	Nav       []navItem
	Dashboard *dashboardData
	Explorer  *explorerData
	Assistant *assistantData
	Export    *exportData
	Message   string
	Detail    string
}

func (h *Handler) baseData(r *http.Request, page models.Page) viewData {
	nav := make([]navItem, 0, len(models.Pages))
	for _, p := range models.Pages {
		nav = append(nav, navItem{Page: p, Title: p.Title(), Active: p == page})
	}
	return viewData{
		Page:  page,
		Title: page.Title(),
		Model: h.Resolver.Model(r.Context()),
		Nav:   nav,
	}
}

// Index renders the session's current page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, h.Sessions.Current(sessionID(r)), nil)
}

// Navigate switches the session's page and redirects to the index
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	page, err := models.ParsePage(chi.URLParam(r, "page"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.Sessions.Navigate(sessionID(r), page)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) viewFor(page models.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Sessions.Navigate(sessionID(r), page)
		h.renderPage(w, r, page, nil)
	}
}

// AssistantForm handles the question form of the assistant page
func (h *Handler) AssistantForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.Sessions.Navigate(sessionID(r), models.PageAssistant)

	data := &assistantData{Query: r.PostForm.Get("query")}
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	answer, err := h.Assistant.Ask(r.Context(), table, data.Query)
	var rce *service.RemoteCallError
	switch {
	case err == nil:
		data.Answer = answer
	case errors.As(err, &rce):
		data.Error = rce.Err.Error()
		data.Hint = rce.Hint
	case errors.Is(err, service.ErrEmptyQuery):
		data.Notice = "Please enter a career goal."
	default:
		h.renderError(w, r, err)
		return
	}

	h.renderPage(w, r, models.PageAssistant, data)
}

// assistantRateLimited answers an over-limit form post with the assistant page and a notice
func (h *Handler) assistantRateLimited(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Navigate(sessionID(r), models.PageAssistant)
	data := &assistantData{
		Query:  r.PostFormValue("query"),
		Notice: "Too many requests. Please wait a moment and try again.",
	}
	h.renderPageStatus(w, r, models.PageAssistant, data, http.StatusTooManyRequests)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page models.Page, assist *assistantData) {
	h.renderPageStatus(w, r, page, assist, http.StatusOK)
}

func (h *Handler) renderPageStatus(w http.ResponseWriter, r *http.Request, page models.Page, assist *assistantData, status int) {
	table, err := h.Tables.Get(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.baseData(r, page)
	switch page {
	case models.PageDashboard:
		data.Dashboard = h.dashboard(table)
	case models.PageExplorer:
		data.Explorer = h.explorer(r, table)
	case models.PageAssistant:
		if assist == nil {
			assist = &assistantData{}
		}
		data.Assistant = assist
	case models.PageExport:
		data.Export = &exportData{
			Rows:    service.ClampRows(h.Options.ExportRows),
			MaxRows: service.MaxExportRows,
			Total:   table.Len(),
		}
	}

	h.execute(w, string(page), status, data)
}

func (h *Handler) dashboard(table *analysis.RuleTable) *dashboardData {
	points := service.LiftChart(service.TopByLift(table.Rules, h.Options.ChartTop))
	maxLift := 0.0
	for _, p := range points {
		maxLift = max(maxLift, p.Lift)
	}
	bars := make([]barPoint, len(points))
	for i, p := range points {
		width := 0.0
		if maxLift > 0 {
			width = p.Lift / maxLift * 100
		}
		bars[i] = barPoint{Label: p.Label, Lift: p.Lift, Width: width}
	}

	return &dashboardData{
		Total:   table.Len(),
		Rules:   table.Head(h.Options.PreviewRows),
		Summary: analysis.Summarize(table),
		Chart:   bars,
	}
}

func (h *Handler) explorer(r *http.Request, table *analysis.RuleTable) *explorerData {
	data := &explorerData{
		Query:   r.URL.Query().Get("q"),
		Columns: []service.Column{service.ColumnAntecedents, service.ColumnConsequents},
	}
	column, err := service.ParseColumn(r.URL.Query().Get("column"))
	if err != nil {
		data.Error = err.Error()
		column = service.ColumnAntecedents
	}
	data.Column = string(column)
	data.Total = service.CountMatches(table.Rules, column, data.Query)
	data.Rules = service.FilterRules(table.Rules, column, data.Query, h.Options.FilterLimit)
	if len(data.Rules) == 0 {
		data.Suggestions = h.Suggester.Suggest(table.Rules, data.Query)
	}
	return data
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	data := h.baseData(r, h.Sessions.Current(sessionID(r)))
	data.Title = "Error"
	data.Detail = err.Error()
	switch {
	case errors.Is(err, analysis.ErrDataNotFound):
		data.Message = "Data file not found!"
	case errors.Is(err, analysis.ErrInvalidTable):
		data.Message = "Rule table could not be read."
	case errors.Is(err, models.ErrUnknownPage):
		data.Message = "Unknown page."
	default:
		data.Message = "Something went wrong."
	}
	h.execute(w, errorView, HTTPStatus(err), data)
}

func (h *Handler) execute(w http.ResponseWriter, view string, status int, data viewData) {
	var buf bytes.Buffer
	if err := h.views[view].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("render failed", zap.String("view", view), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
