// Package docid issues stable, human-readable document identifiers of
// the form DOC001, DOC002, ... and persists every issued number so that
// identifiers survive restarts without collisions.
package docid

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/doclens/doclens/internal/domain"
)

// Store persists the set of issued document numbers.
type Store interface {
	// Load returns every number ever issued, in any order.
	Load(ctx context.Context) ([]int, error)
	// Append durably records a newly issued number.
	Append(ctx context.Context, n int) error
}

// Allocator hands out document numbers. Safe for concurrent use.
type Allocator struct {
	mu        sync.Mutex
	store     Store
	issued    map[int]bool
	maxIssued int
	loaded    bool
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store, issued: make(map[int]bool)}
}

// Next issues the identifier for a file occupying position seqPos
// (1-based) in the current upload batch, given existingCount documents
// already known to the system. The preferred number is
// existingCount+seqPos; if that slot was already handed out, the next
// number past the highest issued one is used instead.
func (a *Allocator) Next(ctx context.Context, existingCount, seqPos int) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx); err != nil {
		return "", err
	}

	desired := existingCount + seqPos
	n := desired
	if n < a.maxIssued || a.issued[n] {
		n = a.maxIssued + 1
	}

	if err := a.store.Append(ctx, n); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeAllocation,
			"failed to persist document number", err)
	}

	a.issued[n] = true
	if n > a.maxIssued {
		a.maxIssued = n
	}
	return Format(n), nil
}

// Format renders a document number as its identifier.
func Format(n int) string {
	return fmt.Sprintf("DOC%03d", n)
}

func (a *Allocator) ensureLoaded(ctx context.Context) error {
	if a.loaded {
		return nil
	}

	nums, err := a.store.Load(ctx)
	if err != nil {
		// start from an empty registry rather than refusing uploads;
		// Append still gates every issued number
		log.Printf("docid: failed to load issued numbers, starting empty: %v", err)
		nums = nil
	}

	a.maxIssued = 1
	for _, n := range nums {
		a.issued[n] = true
		if n > a.maxIssued {
			a.maxIssued = n
		}
	}
	a.loaded = true
	return nil
}
