// Package query turns list/search request parameters into the
// filter/sort/projection triple handed to a collection Find.
package query

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Query is a store-level find specification.
type Query struct {
	Filter     bson.D
	Sort       bson.D
	Projection bson.D
}

// FindOptions applies sort and projection to a Find call.
func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find().SetSort(q.Sort)
	if len(q.Projection) > 0 {
		opts.SetProjection(q.Projection)
	}
	return opts
}

// NoteParams are the optional note list filters. Nil ids mean "no filter".
type NoteParams struct {
	SearchTerm string
	FolderID   *primitive.ObjectID
	TagID      *primitive.ObjectID
}

// NamedParams are the optional folder/tag list filters.
type NamedParams struct {
	SearchTerm string
	Sort       string // "" or "created" for creation order, "name" for name order
}

// SortByName orders folders and tags alphabetically.
const SortByName = "name"

var (
	creationOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	nameOrder     = bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}

	noteSummary = bson.D{
		{Key: "title", Value: 1},
		{Key: "content", Value: 1},
		{Key: "folder_id", Value: 1},
		{Key: "tags", Value: 1},
	}
	namedSummary = bson.D{{Key: "name", Value: 1}}
)

// Notes builds the note list query. A search term matches title OR content;
// folder and tag filters are ANDed with it.
func Notes(p NoteParams) Query {
	filter := bson.D{}

	if re, ok := Contains(p.SearchTerm); ok {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "content", Value: re}},
		}})
	}
	if p.FolderID != nil {
		filter = append(filter, bson.E{Key: "folder_id", Value: *p.FolderID})
	}
	if p.TagID != nil {
		filter = append(filter, bson.E{Key: "tags", Value: *p.TagID})
	}

	return Query{
		Filter:     filter,
		Sort:       creationOrder,
		Projection: noteSummary,
	}
}

// Named builds the folder/tag list query. A search term matches name.
func Named(p NamedParams) Query {
	filter := bson.D{}
	if re, ok := Contains(p.SearchTerm); ok {
		filter = append(filter, bson.E{Key: "name", Value: re})
	}

	sort := creationOrder
	if p.Sort == SortByName {
		sort = nameOrder
	}

	return Query{
		Filter:     filter,
		Sort:       sort,
		Projection: namedSummary,
	}
}

// Contains returns a case-insensitive literal substring pattern for term.
// A blank term yields ok=false: no filter rather than a match-everything
// pattern.
func Contains(term string) (primitive.Regex, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return primitive.Regex{}, false
	}
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}, true
}
