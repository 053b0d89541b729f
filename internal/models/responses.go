package models

// StatusResponse is returned by /api/status endpoint
type StatusResponse struct {
	Loaded   bool   `json:"loaded"`
	Rules    int    `json:"rules"`
	Columns  int    `json:"columns"`
	Source   string `json:"source,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
	Model    string `json:"model"`
}

// RulesResponse is returned by /api/rules and /api/rules/search
type RulesResponse struct {
	Query       string   `json:"query,omitempty"`
	Column      string   `json:"column,omitempty"`
	Total       int      `json:"total"`
	Rows        int      `json:"rows"`
	Rules       []Rule   `json:"rules"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// MetricStats summarizes one numeric rule column
type MetricStats struct {
	Name   string  `json:"name"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// ColumnProfile describes data quality of one table column
type ColumnProfile struct {
	Column        string  `json:"column"`
	NullCount     int     `json:"null_count"`
	DistinctCount int     `json:"distinct_count"`
	Entropy       float64 `json:"entropy"`
	Numeric       bool    `json:"numeric"`
}

// StatsResponse is returned by /api/stats endpoint
type StatsResponse struct {
	Rules               int             `json:"rules"`
	DistinctAntecedents int             `json:"distinct_antecedents"`
	DistinctConsequents int             `json:"distinct_consequents"`
	Metrics             []MetricStats   `json:"metrics"`
	Columns             []ColumnProfile `json:"columns"`
}

// ChartPoint is one bar of the lift chart
type ChartPoint struct {
	Label string  `json:"label"`
	Lift  float64 `json:"lift"`
}

// ChartResponse is returned by /api/chart/lift endpoint
type ChartResponse struct {
	Points []ChartPoint `json:"points"`
}

// AssistantRequest for /api/assistant
type AssistantRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

// AssistantResponse for /api/assistant
type AssistantResponse struct {
	Answer  string `json:"answer"`
	Model   string `json:"model"`
	Context []Rule `json:"context"`
}

// ModelResponse for /api/model
type ModelResponse struct {
	Model    string `json:"model"`
	Fallback bool   `json:"fallback"`
}

// PageRequest for /api/session/page
type PageRequest struct {
	Page string `json:"page" validate:"required"`
}

// PageResponse for /api/session/page
type PageResponse struct {
	Page  Page   `json:"page"`
	Title string `json:"title"`
}

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}
