package service

import (
	"context"

	"brushline/internal/core/selection"
	perr "brushline/internal/platform/errors"
	"brushline/internal/services/api/timeline/domain"
)

const savedListLimit = 100

// Save persists the active selection of a session
func (s *Svc) Save(ctx context.Context, id string, in domain.SaveInput) (domain.Saved, error) {
	if s.saved == nil {
		return domain.Saved{}, errSavedDisabled()
	}
	sess, _, err := s.lookup(id)
	if err != nil {
		return domain.Saved{}, err
	}

	sess.mu.Lock()
	ext := sess.state.Extent()
	g := sess.state.Bucketizer().Granularity()
	sess.mu.Unlock()

	if ext.IsEmpty() {
		return domain.Saved{}, perr.InvalidArgf("session %s has no active selection", id)
	}
	return s.saved.Insert(ctx, domain.Saved{
		Dataset:     datasetKey(sess.ds),
		Name:        in.Name,
		Start:       ext.Start,
		End:         ext.End,
		Granularity: g.String(),
	})
}

// ListSaved returns the selections saved for the session's dataset, newest first
func (s *Svc) ListSaved(ctx context.Context, id string) ([]domain.Saved, error) {
	if s.saved == nil {
		return nil, errSavedDisabled()
	}
	sess, _, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	out, err := s.saved.List(ctx, datasetKey(sess.ds), savedListLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Saved{}
	}
	return out, nil
}

// ApplySaved reconciles a saved selection as an external filter
func (s *Svc) ApplySaved(ctx context.Context, id, savedID string) (domain.SelectionOutput, error) {
	if s.saved == nil {
		return domain.SelectionOutput{}, errSavedDisabled()
	}
	sess, _, err := s.lookup(id)
	if err != nil {
		return domain.SelectionOutput{}, err
	}
	saved, err := s.saved.Get(ctx, savedID)
	if err != nil {
		return domain.SelectionOutput{}, err
	}
	if saved.Dataset != datasetKey(sess.ds) {
		return domain.SelectionOutput{}, perr.InvalidArgf("saved selection %s belongs to %s", savedID, saved.Dataset)
	}
	return s.mutate(id, func(sess *session) error {
		sess.state.ApplyExternal(selection.Span(saved.Start, saved.End))
		return nil
	})
}

// DeleteSaved removes a saved selection of the session's dataset
func (s *Svc) DeleteSaved(ctx context.Context, id, savedID string) error {
	if s.saved == nil {
		return errSavedDisabled()
	}
	sess, _, err := s.lookup(id)
	if err != nil {
		return err
	}
	return s.saved.Delete(ctx, datasetKey(sess.ds), savedID)
}

func errSavedDisabled() error {
	return perr.Newf(perr.ErrorCodeUnavailable, "saved selections are disabled")
}
