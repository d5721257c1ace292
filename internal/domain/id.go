package domain

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MsgInvalidID is returned for any malformed path or query identifier.
const MsgInvalidID = "Invalid `ID` entered"

var idRules = []validation.Rule{validation.Required, is.MongoID}

// ValidID reports whether s is a well-formed entity identifier
// (a 24 character hex ObjectId). It does not check existence.
func ValidID(s string) bool {
	return validation.Validate(s, idRules...) == nil
}

// ParseID validates s and converts it to an ObjectID.
func ParseID(s string) (primitive.ObjectID, error) {
	return parseID(s, MsgInvalidID)
}

// ParseRef parses an optional reference identifier. An empty string yields
// nil; a malformed one yields a validation error with msg.
func ParseRef(s, msg string) (*primitive.ObjectID, error) {
	if s == "" {
		return nil, nil
	}
	oid, err := parseID(s, msg)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

// ParseIDs parses every entry of ids in order, failing with msg on the
// first malformed one. The result is never nil.
func ParseIDs(ids []string, msg string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, s := range ids {
		oid, err := parseID(s, msg)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// HexIDs is the inverse of ParseIDs.
func HexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

func parseID(s, msg string) (primitive.ObjectID, error) {
	if !ValidID(s) {
		return primitive.NilObjectID, Invalid(msg)
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, Invalid(msg)
	}
	return oid, nil
}
