package api

import (
	"context"
	"time"

	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/visualize"
)

// renderAll returns every chart. Charts depend only on the loaded model, which
// never changes during the server's life, so each is rendered at most once.
func (s *Server) renderAll(ctx context.Context) (map[string][]byte, error) {
	m := s.checker.Model()
	if m == nil {
		return nil, common.ErrNotTrained
	}

	s.chartsMu.Lock()
	defer s.chartsMu.Unlock()

	if len(s.charts) < len(visualize.Names) {
		in, err := visualize.InputFromModel(m)
		if err != nil {
			return nil, err
		}
		charts, err := visualize.RenderAll(ctx, in)
		if err != nil {
			return nil, err
		}
		s.charts = charts
	}

	out := make(map[string][]byte, len(s.charts))
	for name, png := range s.charts {
		out[name] = png
	}
	return out, nil
}

func (s *Server) renderOne(name string) ([]byte, error) {
	m := s.checker.Model()
	if m == nil {
		return nil, common.ErrNotTrained
	}

	s.chartsMu.Lock()
	defer s.chartsMu.Unlock()

	if png, ok := s.charts[name]; ok {
		return png, nil
	}
	in, err := visualize.InputFromModel(m)
	if err != nil {
		return nil, err
	}
	png, err := visualize.Render(name, in)
	if err != nil {
		return nil, err
	}
	s.charts[name] = png
	return png, nil
}

// WarmCharts renders every chart ahead of the first request. Failures are
// logged; handlers retry on demand.
func (s *Server) WarmCharts(ctx context.Context) {
	if !s.checker.Loaded() {
		return
	}
	start := s.now()
	if _, err := s.renderAll(ctx); err != nil {
		s.logger.Warn("Failed to pre-render charts", "error", err)
		return
	}
	s.logger.Info("Charts rendered", "count", len(visualize.Names), "duration", s.now().Sub(start).Round(time.Millisecond))
}
