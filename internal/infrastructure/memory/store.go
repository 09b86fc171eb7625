// Package memory implementa los puertos de persistencia en memoria de proceso.
// Se usa en tests y con STORE_DRIVER=memory para demos locales; no persiste entre reinicios.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/jhoicas/textile-stock-api/internal/domain"
	"github.com/jhoicas/textile-stock-api/internal/domain/lifecycle"
)

var _ lifecycle.Store = (*Store)(nil)

// Store colección de documentos auditados protegida por un mutex.
// Cada mutación verifica la precondición y escribe bajo el mismo lock.
type Store struct {
	mu      sync.RWMutex
	seq     int64
	docs    map[string]*lifecycle.Document // por identificador estable
	ordered []string                       // orden de inserción
}

// NewStore construye una colección vacía.
func NewStore() *Store {
	return &Store{docs: map[string]*lifecycle.Document{}}
}

// Insert persiste el documento y asigna la clave interna.
func (s *Store) Insert(_ context.Context, doc *lifecycle.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; ok {
		return domain.ErrDuplicate
	}
	s.seq++
	doc.Key = strconv.FormatInt(s.seq, 10)
	s.docs[doc.ID] = doc.Clone()
	s.ordered = append(s.ordered, doc.ID)
	return nil
}

// Find filtra y ordena por name.
func (s *Store) Find(_ context.Context, f lifecycle.Filter) ([]*lifecycle.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*lifecycle.Document, 0, len(s.docs))
	for _, id := range s.ordered {
		doc := s.docs[id]
		if lifecycle.Matches(doc, f) {
			out = append(out, doc.Clone())
		}
	}
	lifecycle.SortByName(out)
	return out, nil
}

// FindOne busca por id bajo la precondición de estado.
func (s *Store) FindOne(_ context.Context, id string, state lifecycle.State) (*lifecycle.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok || !state.Admits(doc.Audit) {
		return nil, domain.ErrNotFound
	}
	return doc.Clone(), nil
}

// Update verifica la precondición y aplica la mutación atómicamente.
func (s *Store) Update(_ context.Context, id string, state lifecycle.State, m lifecycle.Mutation) (*lifecycle.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || !state.Admits(doc.Audit) {
		return nil, domain.ErrNotFound
	}
	next := doc.Clone()
	m.Apply(next)
	s.docs[id] = next
	return next.Clone(), nil
}

// Delete elimina físicamente el documento.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	for i, v := range s.ordered {
		if v == id {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
	return nil
}
