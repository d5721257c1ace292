package named

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/cascade"
	"noteful/internal/domain"
)

// MsgMissingName is returned when name is absent or cleared.
const MsgMissingName = "Missing `name` in request body"

// Store is the storage collaborator of a Service. *Repo implements it.
type Store interface {
	Insert(ctx context.Context, res *Resource) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Resource, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Summary, error)
	List(ctx context.Context, q ListQuery) ([]*Summary, error)
	Rename(ctx context.Context, id primitive.ObjectID, name string) (*Resource, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Cleanup removes what depends on a deleted resource.
type Cleanup func(ctx context.Context, id primitive.ObjectID) error

type Service struct {
	store   Store
	kind    Kind
	cascade *cascade.Coordinator
	cleanup Cleanup
	log     *slog.Logger
}

// NewService wires a folder or tag service. cleanup runs alongside every
// delete through the cascade coordinator; nil means nothing depends on kind.
func NewService(store Store, kind Kind, coord *cascade.Coordinator, cleanup Cleanup, log *slog.Logger) *Service {
	if cleanup == nil {
		cleanup = func(context.Context, primitive.ObjectID) error { return nil }
	}
	return &Service{
		store:   store,
		kind:    kind,
		cascade: coord,
		cleanup: cleanup,
		log:     log.With("resource", kind.Name),
	}
}

func (s *Service) Kind() Kind { return s.kind }

// List returns summaries matching q; never nil.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Summary, error) {
	return s.store.List(ctx, q)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Resource, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}

// Lookup returns the summaries of the given ids that exist.
func (s *Service) Lookup(ctx context.Context, ids []primitive.ObjectID) ([]*Summary, error) {
	return s.store.FindByIDs(ctx, ids)
}

func (s *Service) Create(ctx context.Context, in Input) (*Resource, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	res := &Resource{Name: name}
	if err := s.store.Insert(ctx, res); err != nil {
		return nil, err
	}

	s.log.Info("created", "id", res.ID.Hex(), "name", res.Name)
	return res, nil
}

// Update renames the resource. The id is checked before the body.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Resource, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	res, err := s.store.Rename(ctx, oid, name)
	if err != nil {
		return nil, err
	}

	s.log.Info("renamed", "id", res.ID.Hex(), "name", res.Name)
	return res, nil
}

// Delete removes the resource and runs its cleanup as one cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}

	err = s.cascade.Delete(ctx, s.kind.Name,
		func(ctx context.Context) error { return s.store.Delete(ctx, oid) },
		func(ctx context.Context) error { return s.cleanup(ctx, oid) },
	)
	if err != nil {
		return err
	}

	s.log.Info("deleted", "id", id)
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := domain.Validate(name, validation.Required.Error(MsgMissingName)); err != nil {
		return "", err
	}
	return name, nil
}
