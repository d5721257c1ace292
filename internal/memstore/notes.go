package memstore

import (
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/domain"
	"noteful/internal/notes"
	"noteful/internal/query"
)

// Notes is an in-memory notes.Store.
type Notes struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]notes.Note
}

func NewNotes() *Notes {
	return &Notes{items: map[primitive.ObjectID]notes.Note{}}
}

func (s *Notes) Insert(_ context.Context, n *notes.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = primitive.NewObjectID()
	n.CreatedAt = now()
	n.UpdatedAt = n.CreatedAt
	if n.Tags == nil {
		n.Tags = []primitive.ObjectID{}
	}
	s.items[n.ID] = clone(*n)
	return nil
}

func (s *Notes) FindByID(_ context.Context, id primitive.ObjectID) (*notes.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	n = clone(n)
	return &n, nil
}

func (s *Notes) List(_ context.Context, p query.NoteParams) ([]*notes.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []ordered
	for _, n := range s.items {
		if !contains(p.SearchTerm, n.Title, n.Content) {
			continue
		}
		if p.FolderID != nil && (n.FolderID == nil || *n.FolderID != *p.FolderID) {
			continue
		}
		if p.TagID != nil && !slices.Contains(n.Tags, *p.TagID) {
			continue
		}
		matched = append(matched, ordered{id: n.ID, created: n.CreatedAt})
	}
	creationOrder(matched)

	out := make([]*notes.Summary, 0, len(matched))
	for _, m := range matched {
		n := clone(s.items[m.id])
		out = append(out, &notes.Summary{
			ID:       n.ID,
			Title:    n.Title,
			Content:  n.Content,
			FolderID: n.FolderID,
			Tags:     n.Tags,
		})
	}
	return out, nil
}

func (s *Notes) Update(_ context.Context, id primitive.ObjectID, p notes.Patch) (*notes.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.FolderID != nil {
		folderID := *p.FolderID
		n.FolderID = &folderID
	}
	if p.UnsetFolder {
		n.FolderID = nil
	}
	if p.Tags != nil {
		n.Tags = slices.Clone(*p.Tags)
	}
	n.UpdatedAt = now()

	s.items[id] = n
	n = clone(n)
	return &n, nil
}

func (s *Notes) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Notes) DeleteByFolder(_ context.Context, folderID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, n := range s.items {
		if n.FolderID != nil && *n.FolderID == folderID {
			delete(s.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Notes) PullTag(_ context.Context, tagID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for id, n := range s.items {
		if !slices.Contains(n.Tags, tagID) {
			continue
		}
		n.Tags = slices.DeleteFunc(slices.Clone(n.Tags), func(t primitive.ObjectID) bool { return t == tagID })
		s.items[id] = n
		modified++
	}
	return modified, nil
}

func clone(n notes.Note) notes.Note {
	n.Tags = slices.Clone(n.Tags)
	if n.Tags == nil {
		n.Tags = []primitive.ObjectID{}
	}
	if n.FolderID != nil {
		folderID := *n.FolderID
		n.FolderID = &folderID
	}
	return n
}
