// Package normalize reduces the backend's variant response envelopes to one
// canonical list shape and one canonical chart shape. All functions are total:
// malformed or unknown input degrades to empty defaults, never an error, and
// returned slices and maps are always non-nil so consumers can iterate safely.
package normalize

import "encoding/json"

// Record is a single dynamic backend row (a log line, a screenshot entry).
type Record map[string]any

// ListResult is the canonical shape of every paginated list response.
type ListResult struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page,omitempty"`
}

// EmptyList returns the declared empty default for list results.
func EmptyList() ListResult {
	return ListResult{Items: []Record{}}
}

// List reduces the known list envelope variants to ListResult:
//
//	[...]                      bare array
//	{items, total, page}       flat envelope
//	{data: [...]}              wrapped array
//	{data: {items, total}}     wrapped envelope
//
// Anything else yields the empty default. A missing total falls back to the
// item count; a server-reported total always wins.
func List(raw []byte) ListResult {
	if len(raw) == 0 {
		return EmptyList()
	}

	var bare []Record
	if err := json.Unmarshal(raw, &bare); err == nil {
		if bare == nil {
			return EmptyList()
		}
		return ListResult{Items: bare, Total: len(bare)}
	}

	var env struct {
		Items []Record        `json:"items"`
		Total *int            `json:"total"`
		Page  int             `json:"page"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return EmptyList()
	}

	if env.Items != nil {
		total := len(env.Items)
		if env.Total != nil {
			total = *env.Total
		}
		return ListResult{Items: env.Items, Total: total, Page: env.Page}
	}

	// One wrapper level down; recursion terminates with the input's nesting.
	if len(env.Data) > 0 {
		return List(env.Data)
	}
	return EmptyList()
}

// ChartKind declares which canonical chart shape a source produces.
type ChartKind int

const (
	// KindSeries is a labelled line/trend chart: {labels: [...], series: [...]}.
	KindSeries ChartKind = iota
	// KindItems is a ranked bar/pie chart: {items: [{name, count}, ...]}.
	KindItems
	// KindHourly is an hour-of-day distribution: {hourly: {"0": n, ..., "23": n}}.
	KindHourly
)

// ChartItem is one ranked entry of an items chart.
type ChartItem struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

// Chart is the canonical chart payload. Only the fields matching Kind carry
// data; the rest stay at their empty defaults.
type Chart struct {
	Kind   ChartKind          `json:"-"`
	Labels []string           `json:"labels,omitempty"`
	Series []float64          `json:"series,omitempty"`
	Items  []ChartItem        `json:"items,omitempty"`
	Hourly map[string]float64 `json:"hourly,omitempty"`
}

// EmptyChart returns the declared empty default for a chart kind.
func EmptyChart(kind ChartKind) Chart {
	c := Chart{Kind: kind}
	switch kind {
	case KindSeries:
		c.Labels = []string{}
		c.Series = []float64{}
	case KindItems:
		c.Items = []ChartItem{}
	case KindHourly:
		c.Hourly = map[string]float64{}
	}
	return c
}

// ParseChart decodes a raw chart payload into the canonical shape for kind.
// Missing or malformed fields default to empty, never nil.
func ParseChart(raw []byte, kind ChartKind) Chart {
	out := EmptyChart(kind)
	if len(raw) == 0 {
		return out
	}

	switch kind {
	case KindSeries:
		var payload struct {
			Labels []string  `json:"labels"`
			Series []float64 `json:"series"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return out
		}
		if payload.Labels != nil {
			out.Labels = payload.Labels
		}
		if payload.Series != nil {
			out.Series = payload.Series
		}

	case KindItems:
		var payload struct {
			Items []ChartItem `json:"items"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return out
		}
		if payload.Items != nil {
			out.Items = payload.Items
		}

	case KindHourly:
		var payload struct {
			Hourly map[string]float64 `json:"hourly"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil && payload.Hourly != nil {
			out.Hourly = payload.Hourly
			return out
		}
		// Some backend versions return the hour map bare.
		var bare map[string]float64
		if err := json.Unmarshal(raw, &bare); err == nil && bare != nil {
			out.Hourly = bare
		}
	}
	return out
}

// Analysis splits a per-user analysis payload into its KPI map and chart
// set. The payload carries everything in one response:
//
//	{kpis: {...}, charts: {top_apps: {items}, activity_over_time: {labels, series}, ...}}
//
// Each chart's kind is inferred from its shape. Both returns are non-nil.
func Analysis(raw []byte) (map[string]any, map[string]Chart) {
	charts := map[string]Chart{}
	if len(raw) == 0 {
		return map[string]any{}, charts
	}

	var env struct {
		Charts map[string]json.RawMessage `json:"charts"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return map[string]any{}, charts
	}
	for name, body := range env.Charts {
		charts[name] = ParseChart(body, chartKind(body))
	}
	return KPIs(raw), charts
}

// chartKind classifies a raw chart payload by which field it carries.
func chartKind(raw []byte) ChartKind {
	var shape struct {
		Items  json.RawMessage `json:"items"`
		Hourly json.RawMessage `json:"hourly"`
	}
	if err := json.Unmarshal(raw, &shape); err == nil {
		if len(shape.Items) > 0 {
			return KindItems
		}
		if len(shape.Hourly) > 0 {
			return KindHourly
		}
	}
	return KindSeries
}

// KPIs extracts a flat scalar KPI map from a summary or analysis payload.
// It accepts `{kpis: {...}}`, `{totals: {...}}` and a bare scalar object;
// non-scalar values are dropped.
func KPIs(raw []byte) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}

	var env struct {
		KPIs   map[string]any `json:"kpis"`
		Totals map[string]any `json:"totals"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return out
	}

	source := env.KPIs
	if source == nil {
		source = env.Totals
	}
	if source == nil {
		var bare map[string]any
		if err := json.Unmarshal(raw, &bare); err != nil {
			return out
		}
		source = bare
	}

	for k, v := range source {
		switch v.(type) {
		case string, float64, bool, nil:
			out[k] = v
		}
	}
	return out
}
