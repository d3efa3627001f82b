package service

import (
	"context"

	"brushline/internal/core/hover"
	"brushline/internal/core/scale"
	perr "brushline/internal/platform/errors"
	"brushline/internal/services/api/timeline/domain"
)

// Hover resolves the bucket under x in one view and mirrors it to the other
// Highlight is what the hovered view last received from the other view
func (s *Svc) Hover(_ context.Context, id string, in domain.HoverInput) (domain.HoverOutput, error) {
	sess, _, err := s.lookup(id)
	if err != nil {
		return domain.HoverOutput{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := sess.views[in.View]
	if !ok {
		return domain.HoverOutput{}, perr.InvalidArgf("unknown view %q", in.View)
	}
	if in.Width > 0 {
		sess.view.SetWidth(in.Width)
	}
	var sc scale.Time
	if in.View == viewContext {
		sc = sess.view.ContextScale()
	} else {
		sc = sess.view.FocusScale()
	}

	out := domain.HoverOutput{Index: -1, Points: []hover.Point{}}
	if i, ok := sess.resolver.At(in.X, sc.Invert); ok {
		out.Index = i
		out.Message = sess.resolver.Message(i)
		out.Points = sess.resolver.Points(i, sess.res.Series)
	}
	p.Publish(out.Message)
	out.Highlight = p.Highlight()
	return out, nil
}

// HoverOff tells the other view to drop its highlight
func (s *Svc) HoverOff(_ context.Context, id string, in domain.HoverOffInput) (domain.HoverOutput, error) {
	sess, _, err := s.lookup(id)
	if err != nil {
		return domain.HoverOutput{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := sess.views[in.View]
	if !ok {
		return domain.HoverOutput{}, perr.InvalidArgf("unknown view %q", in.View)
	}
	p.Publish(hover.Message{})
	return domain.HoverOutput{Index: -1, Points: []hover.Point{}, Highlight: p.Highlight()}, nil
}
