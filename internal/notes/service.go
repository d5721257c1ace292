package notes

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/domain"
	"noteful/internal/named"
	"noteful/internal/query"
)

// Client-facing validation messages.
const (
	MsgMissingTitle  = "Missing `title` in request body"
	MsgEmptyTitle    = "The `title` cannot be empty"
	MsgInvalidFolder = "The `folderId` is not valid"
	MsgInvalidTag    = "The `tags` array contains an invalid `id`"
)

// Store is the storage collaborator of a Service. *Repo implements it.
type Store interface {
	Insert(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error)
	List(ctx context.Context, p query.NoteParams) ([]*Summary, error)
	Update(ctx context.Context, id primitive.ObjectID, p Patch) (*Note, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFolder(ctx context.Context, folderID primitive.ObjectID) (int64, error)
	PullTag(ctx context.Context, tagID primitive.ObjectID) (int64, error)
}

// Lookup resolves folder or tag ids to summaries. *named.Service
// implements it.
type Lookup interface {
	Lookup(ctx context.Context, ids []primitive.ObjectID) ([]*named.Summary, error)
}

type Service struct {
	store   Store
	folders Lookup
	tags    Lookup
	md      goldmark.Markdown
	log     *slog.Logger
}

func NewService(store Store, folders, tags Lookup, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		folders: folders,
		tags:    tags,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:     log.With("resource", "note"),
	}
}

// List returns summaries in creation order. Malformed folder or tag
// filters are rejected rather than ignored.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Summary, error) {
	folderID, err := domain.ParseRef(q.FolderID, domain.MsgInvalidID)
	if err != nil {
		return nil, err
	}
	tagID, err := domain.ParseRef(q.TagID, domain.MsgInvalidID)
	if err != nil {
		return nil, err
	}

	return s.store.List(ctx, query.NoteParams{
		SearchTerm: q.SearchTerm,
		FolderID:   folderID,
		TagID:      tagID,
	})
}

// GetByID retrieves a note by ID
func (s *Service) GetByID(ctx context.Context, id string) (*Note, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, oid)
}

// Get retrieves a note with its folder and tags resolved.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	note, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Note: note, Expanded: Expansion{Tags: []*named.Summary{}}}

	if note.FolderID != nil && s.folders != nil {
		found, err := s.folders.Lookup(ctx, []primitive.ObjectID{*note.FolderID})
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			detail.Expanded.Folder = found[0]
		}
	}

	if len(note.Tags) > 0 && s.tags != nil {
		found, err := s.tags.Lookup(ctx, note.Tags)
		if err != nil {
			return nil, err
		}
		byID := make(map[primitive.ObjectID]*named.Summary, len(found))
		for _, t := range found {
			byID[t.ID] = t
		}
		for _, tid := range note.Tags {
			if t, ok := byID[tid]; ok {
				detail.Expanded.Tags = append(detail.Expanded.Tags, t)
			}
		}
	}

	return detail, nil
}

// Create creates a new note
func (s *Service) Create(ctx context.Context, in CreateNoteInput) (*Note, error) {
	if err := domain.Validate(strings.TrimSpace(in.Title), validation.Required.Error(MsgMissingTitle)); err != nil {
		return nil, err
	}
	folderID, err := domain.ParseRef(in.FolderID, MsgInvalidFolder)
	if err != nil {
		return nil, err
	}
	tags, err := domain.ParseIDs(in.Tags, MsgInvalidTag)
	if err != nil {
		return nil, err
	}

	note := &Note{
		Title:    in.Title,
		Content:  in.Content,
		FolderID: folderID,
		Tags:     tags,
	}
	if err := s.store.Insert(ctx, note); err != nil {
		return nil, err
	}

	s.log.Info("created", "id", note.ID.Hex())
	return note, nil
}

// Update applies the fields present in in. The id is checked before the body.
func (s *Service) Update(ctx context.Context, id string, in UpdateNoteInput) (*Note, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}
	patch, err := buildPatch(in)
	if err != nil {
		return nil, err
	}

	note, err := s.store.Update(ctx, oid, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info("updated", "id", note.ID.Hex())
	return note, nil
}

// Delete removes a note by ID. Nothing references notes, so there is
// no cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, oid); err != nil {
		return err
	}

	s.log.Info("deleted", "id", id)
	return nil
}

// DeleteInFolder removes the notes filed in a deleted folder.
func (s *Service) DeleteInFolder(ctx context.Context, folderID primitive.ObjectID) error {
	n, err := s.store.DeleteByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	s.log.Info("deleted notes in folder", "folder", folderID.Hex(), "count", n)
	return nil
}

// DetachTag removes a deleted tag from every note.
func (s *Service) DetachTag(ctx context.Context, tagID primitive.ObjectID) error {
	n, err := s.store.PullTag(ctx, tagID)
	if err != nil {
		return err
	}
	s.log.Info("detached tag", "tag", tagID.Hex(), "count", n)
	return nil
}

// RenderMarkdown converts markdown content to HTML
func (s *Service) RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(content), &buf); err != nil {
		s.log.Warn("markdown render failed", "error", err)
		return content
	}
	return buf.String()
}

func buildPatch(in UpdateNoteInput) (Patch, error) {
	var p Patch

	if in.Title.Present {
		title := in.Title.String()
		if err := domain.Validate(strings.TrimSpace(title), validation.Required.Error(MsgEmptyTitle)); err != nil {
			return Patch{}, err
		}
		p.Title = &title
	}

	if in.Content.Present {
		content := in.Content.String()
		p.Content = &content
	}

	if in.FolderID.Present {
		if in.FolderID.Cleared() {
			p.UnsetFolder = true
		} else {
			folderID, err := domain.ParseRef(in.FolderID.String(), MsgInvalidFolder)
			if err != nil {
				return Patch{}, err
			}
			p.FolderID = folderID
		}
	}

	if in.Tags != nil {
		tags, err := domain.ParseIDs(*in.Tags, MsgInvalidTag)
		if err != nil {
			return Patch{}, err
		}
		p.Tags = &tags
	}

	return p, nil
}
