package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/doclens/doclens/internal/domain"
)

// pendingBatchSize caps how many units one polling pass picks up.
const pendingBatchSize = 100

// PendingUnitSource lists paragraph units still awaiting an embedding.
type PendingUnitSource interface {
	ListPending(ctx context.Context, limit int) ([]domain.IndexedUnit, error)
}

// UnitIndexer embeds and stores paragraph units.
type UnitIndexer interface {
	Index(ctx context.Context, units []domain.IndexedUnit) error
}

// IndexWorker retries indexing for paragraphs whose synchronous
// indexing failed at upload time. Pending units stay pending until a
// pass succeeds, so transient embedding outages heal without operator
// action.
type IndexWorker struct {
	source  PendingUnitSource
	indexer UnitIndexer
}

func NewIndexWorker(source PendingUnitSource, indexer UnitIndexer) *IndexWorker {
	return &IndexWorker{source: source, indexer: indexer}
}

// ProcessJobs implements the JobProcessor interface
func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	units, err := w.source.ListPending(ctx, pendingBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending units: %w", err)
	}

	if len(units) == 0 {
		return nil
	}

	log.Printf("indexing %d pending paragraph units", len(units))

	// index per document so one document's failure does not block others
	for _, group := range groupByDocument(units) {
		if err := w.indexer.Index(ctx, group); err != nil {
			log.Printf("indexing failed for %s, will retry next pass: %v", group[0].DocumentID, err)
		}
	}

	return nil
}

func groupByDocument(units []domain.IndexedUnit) [][]domain.IndexedUnit {
	byDoc := make(map[string][]domain.IndexedUnit)
	var order []string
	for _, u := range units {
		if _, seen := byDoc[u.DocumentID]; !seen {
			order = append(order, u.DocumentID)
		}
		byDoc[u.DocumentID] = append(byDoc[u.DocumentID], u)
	}

	groups := make([][]domain.IndexedUnit, 0, len(order))
	for _, id := range order {
		groups = append(groups, byDoc[id])
	}
	return groups
}
