package index

import (
	"fmt"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// documentStore is the authoritative mapping between document ids,
// surrogate vector ids, and document records. It carries no lock of
// its own: it is only touched under the owning Index's mutex.
type documentStore struct {
	byID     map[string]int64
	byVector map[int64]domain.Document
}

func newDocumentStore() *documentStore {
	return &documentStore{
		byID:     make(map[string]int64),
		byVector: make(map[int64]domain.Document),
	}
}

// put registers a new document under its id and surrogate id.
// Documents are never updated in place, so an existing id is a
// hard error.
func (s *documentStore) put(doc domain.Document, vectorID int64) error {
	if _, ok := s.byID[doc.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, doc.ID)
	}
	doc.VectorID = vectorID
	s.byID[doc.ID] = vectorID
	s.byVector[vectorID] = doc
	return nil
}

func (s *documentStore) byVectorID(vectorID int64) (domain.Document, bool) {
	doc, ok := s.byVector[vectorID]
	return doc, ok
}

func (s *documentStore) contains(docID string) bool {
	_, ok := s.byID[docID]
	return ok
}

func (s *documentStore) count() int {
	return len(s.byID)
}
