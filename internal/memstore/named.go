package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/domain"
	"noteful/internal/named"
	"noteful/internal/query"
)

// Named is an in-memory named.Store for one kind.
type Named struct {
	mu    sync.RWMutex
	kind  named.Kind
	items map[primitive.ObjectID]named.Resource
}

func NewNamed(kind named.Kind) *Named {
	return &Named{kind: kind, items: map[primitive.ObjectID]named.Resource{}}
}

func (s *Named) Insert(_ context.Context, res *named.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken(res.Name, primitive.NilObjectID) {
		return s.conflict()
	}
	res.ID = primitive.NewObjectID()
	res.CreatedAt = now()
	res.UpdatedAt = res.CreatedAt
	s.items[res.ID] = *res
	return nil
}

func (s *Named) FindByID(_ context.Context, id primitive.ObjectID) (*named.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (s *Named) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*named.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*named.Summary{}
	for _, id := range ids {
		if res, ok := s.items[id]; ok {
			out = append(out, &named.Summary{ID: res.ID, Name: res.Name})
		}
	}
	return out, nil
}

func (s *Named) List(_ context.Context, q named.ListQuery) ([]*named.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []ordered
	for _, res := range s.items {
		if contains(q.SearchTerm, res.Name) {
			matched = append(matched, ordered{id: res.ID, created: res.CreatedAt, name: res.Name})
		}
	}
	if q.Sort == query.SortByName {
		nameOrder(matched)
	} else {
		creationOrder(matched)
	}

	out := make([]*named.Summary, 0, len(matched))
	for _, m := range matched {
		out = append(out, &named.Summary{ID: m.id, Name: m.name})
	}
	return out, nil
}

func (s *Named) Rename(_ context.Context, id primitive.ObjectID, name string) (*named.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.taken(name, id) {
		return nil, s.conflict()
	}
	res.Name = name
	res.UpdatedAt = now()
	s.items[id] = res
	return &res, nil
}

func (s *Named) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Named) taken(name string, except primitive.ObjectID) bool {
	for id, res := range s.items {
		if id != except && res.Name == name {
			return true
		}
	}
	return false
}

func (s *Named) conflict() error {
	return &domain.ConflictError{Message: s.kind.DuplicateMessage, ResourceType: s.kind.Name}
}
