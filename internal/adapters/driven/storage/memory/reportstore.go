package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
)

// Ensure ReportStore implements the interface.
var _ driven.ReportStore = (*ReportStore)(nil)

// ReportStore keeps repair reports in a map.
// Repaired bytes are dropped on save, as in the persistent store.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]domain.RepairReport
}

// NewReportStore creates an empty in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]domain.RepairReport)}
}

// Save stores or updates a report.
func (s *ReportStore) Save(_ context.Context, report *domain.RepairReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidInput
	}
	stored := *report
	stored.Result.Output = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = stored
	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(_ context.Context, id string) (*domain.RepairReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

// List returns the most recent reports first.
func (s *ReportStore) List(_ context.Context, limit int) ([]domain.RepairReport, error) {
	s.mu.RLock()
	reports := make([]domain.RepairReport, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	s.mu.RUnlock()

	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Delete removes a report.
func (s *ReportStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}
