package repository

import (
	"context"

	"github.com/doclens/doclens/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// UnitRepository manages paragraph embeddings and vector search.
type UnitRepository struct {
	db dbtx
}

func NewUnitRepository(pool *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{db: pool}
}

func NewUnitRepositoryWithTx(tx pgx.Tx) *UnitRepository {
	return &UnitRepository{db: tx}
}

// SetEmbedding stores a paragraph's embedding and marks it searchable.
func (r *UnitRepository) SetEmbedding(ctx context.Context, documentID, paragraphID string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE paragraph_units SET embedding = $1, indexed = TRUE
		 WHERE document_id = $2 AND paragraph_id = $3`,
		pgvector.NewVector(embedding), documentID, paragraphID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SearchByEmbedding returns the closest indexed paragraphs, nearest
// first. Distance is cosine distance; lower means more relevant.
func (r *UnitRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.RetrievedHit, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT pu.document_id, pu.paragraph_id, pu.page, pu.paragraph_index, pu.content,
		        d.filename, d.kind, d.size_bytes, d.uploaded_at,
		        pu.embedding <=> $1 AS distance
		 FROM paragraph_units pu
		 JOIN documents d ON d.id = pu.document_id
		 WHERE pu.indexed AND pu.embedding IS NOT NULL
		 ORDER BY distance ASC
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []domain.RetrievedHit
	for rows.Next() {
		var h domain.RetrievedHit
		var kind string
		if err := rows.Scan(
			&h.Unit.DocumentID, &h.Unit.ParagraphID, &h.Unit.Page, &h.Unit.Index, &h.Unit.Text,
			&h.Unit.Filename, &kind, &h.Unit.SizeBytes, &h.Unit.UploadedAt,
			&h.Distance,
		); err != nil {
			return nil, err
		}
		h.Unit.Kind = domain.FileKind(kind)
		h.Text = h.Unit.Text
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// DeleteByDocument clears a document's index entries and reports how
// many existed.
func (r *UnitRepository) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM paragraph_units WHERE document_id = $1`,
		documentID,
	)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// ListPending returns units awaiting an embedding, oldest first, with
// the document metadata the index entry carries.
func (r *UnitRepository) ListPending(ctx context.Context, limit int) ([]domain.IndexedUnit, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT pu.document_id, pu.paragraph_id, pu.page, pu.paragraph_index, pu.content,
		        d.filename, d.kind, d.size_bytes, d.uploaded_at
		 FROM paragraph_units pu
		 JOIN documents d ON d.id = pu.document_id
		 WHERE NOT pu.indexed
		 ORDER BY pu.created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.IndexedUnit
	for rows.Next() {
		var u domain.IndexedUnit
		var kind string
		if err := rows.Scan(
			&u.DocumentID, &u.ParagraphID, &u.Page, &u.Index, &u.Text,
			&u.Filename, &kind, &u.SizeBytes, &u.UploadedAt,
		); err != nil {
			return nil, err
		}
		u.Kind = domain.FileKind(kind)
		units = append(units, u)
	}
	return units, rows.Err()
}

// CountPending reports how many units still await an embedding.
func (r *UnitRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM paragraph_units WHERE NOT indexed`,
	).Scan(&n)
	return n, err
}
