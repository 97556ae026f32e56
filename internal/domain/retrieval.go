package domain

import "time"

// IndexedUnit is the stored, searchable representation of a Paragraph
// plus its document metadata. Keyed by the composite id
// "<documentID>_<paragraphID>"; lifecycle mirrors the Paragraph's.
type IndexedUnit struct {
	ParagraphID string
	DocumentID  string
	Filename    string
	Kind        FileKind
	SizeBytes   int64
	UploadedAt  time.Time
	Page        int
	Index       int
	Text        string
}

// UnitID returns the composite index key for the unit
func (u IndexedUnit) UnitID() string {
	return CompositeUnitID(u.DocumentID, u.ParagraphID)
}

// CompositeUnitID builds the composite index key for a document/paragraph pair
func CompositeUnitID(documentID, paragraphID string) string {
	return documentID + "_" + paragraphID
}

// UnitsForDocument expands a document's paragraphs into indexable units
func UnitsForDocument(d *Document) []IndexedUnit {
	units := make([]IndexedUnit, 0, len(d.Paragraphs))
	for _, p := range d.Paragraphs {
		units = append(units, IndexedUnit{
			ParagraphID: p.ID,
			DocumentID:  d.ID,
			Filename:    d.Filename,
			Kind:        d.Kind,
			SizeBytes:   d.SizeBytes,
			UploadedAt:  d.UploadedAt,
			Page:        p.Page,
			Index:       p.Index,
			Text:        p.Text,
		})
	}
	return units
}

// RetrievedHit is one ranked paragraph returned for a query. Distance
// is the relevance distance reported by the similarity search; lower
// means more relevant. Ephemeral, never persisted.
type RetrievedHit struct {
	Text     string
	Unit     IndexedUnit
	Distance float64
}

// DistinctDocumentCount counts distinct document ids among hits
func DistinctDocumentCount(hits []RetrievedHit) int {
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		seen[h.Unit.DocumentID] = struct{}{}
	}
	return len(seen)
}
