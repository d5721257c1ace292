package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/httputil"
	"noteful/internal/named"
)

// Note is a titled markdown note, optionally filed in a folder and tagged.
type Note struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title     string               `bson:"title" json:"title"`
	Content   string               `bson:"content" json:"content"`
	FolderID  *primitive.ObjectID  `bson:"folder_id,omitempty" json:"folderId,omitempty"`
	Tags      []primitive.ObjectID `bson:"tags" json:"tags"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Summary is the list projection of a Note.
type Summary struct {
	ID       primitive.ObjectID   `bson:"_id" json:"id"`
	Title    string               `bson:"title" json:"title"`
	Content  string               `bson:"content" json:"content"`
	FolderID *primitive.ObjectID  `bson:"folder_id,omitempty" json:"folderId,omitempty"`
	Tags     []primitive.ObjectID `bson:"tags" json:"tags"`
}

// Detail is a single fetched note with its references resolved.
type Detail struct {
	*Note
	Expanded Expansion `json:"expanded"`
}

// Expansion holds the folder and tags a note points at. References to
// records that no longer exist are left out.
type Expansion struct {
	Folder *named.Summary   `json:"folder,omitempty"`
	Tags   []*named.Summary `json:"tags"`
}

// CreateNoteInput is the input for creating a note
type CreateNoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FolderID string   `json:"folderId"`
	Tags     []string `json:"tags"`
}

// UpdateNoteInput is a partial update; only fields present in the JSON
// body are applied.
type UpdateNoteInput struct {
	Title    httputil.OptionalString `json:"title"`
	Content  httputil.OptionalString `json:"content"`
	FolderID httputil.OptionalString `json:"folderId"`
	Tags     *[]string               `json:"tags"`
}

// Patch is a validated UpdateNoteInput. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Content     *string
	FolderID    *primitive.ObjectID
	UnsetFolder bool
	Tags        *[]primitive.ObjectID
}

// ListQuery represents list parameters
type ListQuery struct {
	SearchTerm string
	FolderID   string
	TagID      string
}

func (n *Note) normalize() {
	if n.Tags == nil {
		n.Tags = []primitive.ObjectID{}
	}
}

func (s *Summary) normalize() {
	if s.Tags == nil {
		s.Tags = []primitive.ObjectID{}
	}
}
