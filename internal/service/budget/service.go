// Package budget loads treatment budgets and exports them as PDF.
package budget

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

// View is a budget together with its derived totals
type View struct {
	*model.Budget
	Totals model.BudgetTotals `json:"totals"`
}

// Document is an exported PDF
type Document struct {
	Filename string
	Data     []byte
}

type Service struct {
	repo     repository.BudgetRepository
	opts     PDFOptions
	metrics  *metrics.Metrics
	activity activity.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo repository.BudgetRepository, opts PDFOptions, m *metrics.Metrics, recorder activity.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		opts:     opts,
		metrics:  m,
		activity: recorder,
		logger:   logger.With().Str("component", "budget").Logger(),
		now:      time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	return &View{Budget: b, Totals: b.Totals()}, nil
}

// Export renders b; totals are recomputed from the items
func (s *Service) Export(b *model.Budget) (*Document, error) {
	data, err := render(b, s.opts, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("budget_id", b.ID).Msg("pdf export failed")
		return nil, err
	}
	s.metrics.CountPDF()
	return &Document{Filename: Filename(b), Data: data}, nil
}

func (s *Service) ExportByID(ctx context.Context, id string) (*Document, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.Export(b)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, model.ActivityBudgetExport, "budget", id, doc.Filename)
	return doc, nil
}
