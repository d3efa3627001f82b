package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Create(ctx context.Context, in CreateInput) (SessionOutput, error)
	Get(ctx context.Context, id string) (SessionOutput, error)
	Delete(ctx context.Context, id string) error

	Series(ctx context.Context, id string, in SeriesInput) (SeriesOutput, error)

	BrushStart(ctx context.Context, id string) (SelectionOutput, error)
	Brush(ctx context.Context, id string, in BrushInput) (SelectionOutput, error)
	Granularity(ctx context.Context, id string, in GranularityInput) (SelectionOutput, error)
	Filter(ctx context.Context, id string, in FilterInput) (SelectionOutput, error)

	Hover(ctx context.Context, id string, in HoverInput) (HoverOutput, error)
	HoverOff(ctx context.Context, id string, in HoverOffInput) (HoverOutput, error)

	Save(ctx context.Context, id string, in SaveInput) (Saved, error)
	ListSaved(ctx context.Context, id string) ([]Saved, error)
	ApplySaved(ctx context.Context, id, savedID string) (SelectionOutput, error)
	DeleteSaved(ctx context.Context, id, savedID string) error
}
