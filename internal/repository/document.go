package repository

import (
	"context"
	"errors"

	"github.com/doclens/doclens/internal/domain"
	"github.com/doclens/doclens/internal/pagination"
	"github.com/doclens/doclens/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

// Create persists the document and all of its paragraphs. Callers that
// need atomicity run it through TxRunner.
func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	if err := domain.ValidateDocument(d); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, filename, kind, size_bytes, full_text, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Filename, string(d.Kind), d.SizeBytes, d.FullText, d.UploadedAt,
	)
	if err != nil {
		return err
	}

	for _, p := range d.Paragraphs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO paragraph_units (document_id, paragraph_id, page, paragraph_index, content)
			 VALUES ($1, $2, $3, $4, $5)`,
			d.ID, p.ID, p.Page, p.Index, p.Text,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var kind string
	err := r.db.QueryRow(ctx,
		`SELECT id, filename, kind, size_bytes, full_text, uploaded_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Filename, &kind, &d.SizeBytes, &d.FullText, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	d.Kind = domain.FileKind(kind)

	rows, err := r.db.Query(ctx,
		`SELECT paragraph_id, page, paragraph_index, content
		 FROM paragraph_units WHERE document_id = $1
		 ORDER BY page ASC, paragraph_index ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Paragraph
		if err := rows.Scan(&p.ID, &p.Page, &p.Index, &p.Text); err != nil {
			return nil, err
		}
		d.Paragraphs = append(d.Paragraphs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	d.ParagraphCount = len(d.Paragraphs)

	return &d, nil
}

// ListWithCursor pages through documents newest first. Paragraph bodies
// are not loaded; listings only need metadata and counts.
func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT d.id, d.filename, d.kind, d.size_bytes, d.uploaded_at,
			        (SELECT COUNT(*) FROM paragraph_units pu WHERE pu.document_id = d.id)
			 FROM documents d
			 WHERE (d.uploaded_at, d.id) < ($1, $2)
			 ORDER BY d.uploaded_at DESC, d.id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT d.id, d.filename, d.kind, d.size_bytes, d.uploaded_at,
			        (SELECT COUNT(*) FROM paragraph_units pu WHERE pu.document_id = d.id)
			 FROM documents d
			 ORDER BY d.uploaded_at DESC, d.id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Document
	for rows.Next() {
		var d domain.Document
		var kind string
		if err := rows.Scan(&d.ID, &d.Filename, &kind, &d.SizeBytes, &d.UploadedAt, &d.ParagraphCount); err != nil {
			return nil, err
		}
		d.Kind = domain.FileKind(kind)
		items = append(items, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UploadedAt)
	}

	return &service.DocumentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// Count returns the number of stored documents. The ingest flow uses it
// to seed identifier allocation for a new batch.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// Delete removes the document; paragraph units go with it via cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
