package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AllocationRepository persists issued document numbers. It backs the
// docid allocator in database deployments.
type AllocationRepository struct {
	db dbtx
}

func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{db: pool}
}

func (r *AllocationRepository) Load(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT number FROM issued_doc_numbers ORDER BY number ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nums []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		nums = append(nums, n)
	}
	return nums, rows.Err()
}

func (r *AllocationRepository) Append(ctx context.Context, n int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO issued_doc_numbers (number) VALUES ($1)`,
		n,
	)
	return err
}
