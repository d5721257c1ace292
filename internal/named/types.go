// Package named implements the resources identified by a unique name:
// folders and tags.
package named

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind describes one named resource type.
type Kind struct {
	Name             string // singular, used in logs and errors
	Collection       string
	Route            string
	DuplicateMessage string
}

var (
	FolderKind = Kind{
		Name:             "folder",
		Collection:       "folders",
		Route:            "/api/folders",
		DuplicateMessage: "The folder name already exists",
	}
	TagKind = Kind{
		Name:             "tag",
		Collection:       "tags",
		Route:            "/api/tags",
		DuplicateMessage: "The tag name already exists",
	}
)

// Resource is a folder or a tag.
type Resource struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Summary is the list projection of a Resource. Notes also embed it when
// their references are expanded.
type Summary struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// Input is the create and update request body.
type Input struct {
	Name string `json:"name"`
}

// ListQuery represents list parameters
type ListQuery struct {
	SearchTerm string
	Sort       string
}
