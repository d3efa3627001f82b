// Package domain holds DTOs for timeline http and service contracts
package domain

import (
	"time"

	"brushline/internal/core/dualview"
	"brushline/internal/core/hover"
	"brushline/internal/core/refrange"
	"brushline/internal/core/selection"
	"brushline/internal/core/series"
)

// Dataset names the table and columns a session charts
// identifiers are validated again by the repo before they reach sql
type Dataset struct {
	Table      string `json:"table" validate:"required,ident" example:"events"`
	DateField  string `json:"date_field" validate:"required,ident" example:"created_at"`
	ValueField string `json:"value_field,omitempty" validate:"omitempty,ident" example:"amount"`
	GroupField string `json:"group_field,omitempty" validate:"omitempty,ident" example:"country"`
}

// CreateInput opens a chart session
type CreateInput struct {
	Dataset Dataset `json:"dataset"`
	// Aggregation defaults to count
	Aggregation string `json:"aggregation,omitempty" validate:"omitempty,aggkind" example:"sum"`
	// Granularity is picked from the reference range when empty
	Granularity string `json:"granularity,omitempty" validate:"omitempty,granularity" example:"day"`
	Name        string `json:"name,omitempty" validate:"omitempty,max=120" example:"Revenue"`
	Limit       int    `json:"limit,omitempty" validate:"omitempty,min=1,max=50" example:"10"`
	Width       int    `json:"width,omitempty" validate:"omitempty,min=1,max=10000" example:"960"`
}

// Event is an outbound filter notification
type Event struct {
	Type   string           `json:"type" example:"selection_changed"`
	Extent selection.Extent `json:"extent" swaggertype:"array,string"`
}

// Event types
const (
	EventChanged = "selection_changed"
	EventCleared = "selection_cleared"
)

// SessionOutput describes a session after create or read
type SessionOutput struct {
	ID            string           `json:"id" example:"4b3f0c9e-6a0c-4f39-9a55-2f0c8b2f0b6e"`
	Dataset       Dataset          `json:"dataset"`
	Aggregation   series.Kind      `json:"aggregation" swaggertype:"string" example:"count"`
	Granularity   string           `json:"granularity" example:"day"`
	Range         refrange.Range   `json:"range"`
	Buckets       int              `json:"buckets" example:"31"`
	Extent        selection.Extent `json:"extent" swaggertype:"array,string"`
	ContextDomain selection.Extent `json:"context_domain" swaggertype:"array,string"`
	FocusDomain   selection.Extent `json:"focus_domain" swaggertype:"array,string"`
	ContextY      dualview.YDomain `json:"context_y"`
	FocusY        dualview.YDomain `json:"focus_y"`
	Events        []Event          `json:"events,omitempty"`
	ExpiresAt     time.Time        `json:"expires_at"`
}

// SeriesInput asks for a fresh series fetch at the current granularity
type SeriesInput struct {
	Trend     bool `json:"trend,omitempty" example:"true"`
	Anomalies bool `json:"anomalies,omitempty" example:"false"`
}

// SeriesOutput is the aggregated series list for the current bucketizer
type SeriesOutput struct {
	Granularity string           `json:"granularity" example:"day"`
	Buckets     int              `json:"buckets" example:"31"`
	Series      []series.Series  `json:"series"`
	Trends      []series.Series  `json:"trends,omitempty"`
	Excluded    int              `json:"excluded" example:"3"`
	Anomalies   int              `json:"anomalies" example:"2"`
	FocusY      dualview.YDomain `json:"focus_y"`
	Warning     string           `json:"warning,omitempty"`
}

// BrushInput is the raw brush extent at the end of a drag
type BrushInput struct {
	Extent  selection.Extent `json:"extent" swaggertype:"array,string"`
	Mode    string           `json:"mode,omitempty" validate:"omitempty,oneof=resize move" example:"resize"`
	Hovered *time.Time       `json:"hovered,omitempty"`
}

// GranularityInput switches the bucket size
type GranularityInput struct {
	Granularity string `json:"granularity" validate:"required,granularity" example:"month"`
}

// FilterInput reconciles a filter set by another component; an empty extent clears
type FilterInput struct {
	Extent selection.Extent `json:"extent" swaggertype:"array,string"`
}

// SelectionOutput is the extent after a selection operation
type SelectionOutput struct {
	Extent      selection.Extent `json:"extent" swaggertype:"array,string"`
	Granularity string           `json:"granularity" example:"day"`
	FocusDomain selection.Extent `json:"focus_domain" swaggertype:"array,string"`
	FocusY      dualview.YDomain `json:"focus_y"`
	Events      []Event          `json:"events"`
}

// HoverInput is a pointer position over one of the two views
type HoverInput struct {
	View  string  `json:"view" validate:"required,oneof=context focus" example:"focus"`
	X     float64 `json:"x" validate:"gte=0" example:"412"`
	Width float64 `json:"width,omitempty" validate:"omitempty,gt=0" example:"960"`
}

// HoverOffInput names the view the pointer left
type HoverOffInput struct {
	View string `json:"view" validate:"required,oneof=context focus" example:"focus"`
}

// HoverOutput is the hovered bucket plus the highlight the hovered view received from the other view
type HoverOutput struct {
	Index     int           `json:"index" example:"12"`
	Message   hover.Message `json:"message"`
	Points    []hover.Point `json:"points"`
	Highlight hover.Message `json:"highlight"`
}

// SaveInput persists the current extent under a name
type SaveInput struct {
	Name string `json:"name" validate:"required,min=1,max=120" example:"Black Friday"`
}

// Saved is a persisted selection
type Saved struct {
	ID          string    `json:"id" example:"0d1c3a52-2c55-4b9f-8d59-3b8e1f2a9f10"`
	Dataset     string    `json:"dataset" example:"events.created_at"`
	Name        string    `json:"name" example:"Black Friday"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Granularity string    `json:"granularity" example:"day"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarizes the running engine for the meta endpoints
type Stats struct {
	Source     string `json:"source" example:"duckdb"`
	Sessions   int    `json:"sessions" example:"3"`
	Formula    string `json:"trend_formula" example:"compat"`
	TTLSeconds int64  `json:"session_ttl_seconds" example:"1800"`
	MaxBuckets int    `json:"max_buckets" example:"1000"`
	Saved      bool   `json:"saved_selections" example:"true"`
	Remote     bool   `json:"remote_overlays" example:"false"`
}
