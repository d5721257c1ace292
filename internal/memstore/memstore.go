// Package memstore keeps notes, folders and tags in process memory. It
// follows the Mongo repos' ordering, uniqueness and not-found rules and is
// used for local runs without a database and for wiring tests.
package memstore

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// contains mirrors query.Contains: blank terms match everything.
func contains(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

type ordered struct {
	id      primitive.ObjectID
	created time.Time
	name    string
}

// creationOrder sorts by created_at then _id, as the repos do.
func creationOrder(items []ordered) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].created.Equal(items[j].created) {
			return items[i].created.Before(items[j].created)
		}
		return bytes.Compare(items[i].id[:], items[j].id[:]) < 0
	})
}

func nameOrder(items []ordered) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].name != items[j].name {
			return items[i].name < items[j].name
		}
		return bytes.Compare(items[i].id[:], items[j].id[:]) < 0
	})
}
