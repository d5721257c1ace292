package named

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"noteful/internal/domain"
	"noteful/internal/query"
)

type Repo struct {
	coll *mongo.Collection
	kind Kind
}

func NewRepo(db *mongo.Database, kind Kind) *Repo {
	return &Repo{coll: db.Collection(kind.Collection), kind: kind}
}

// EnsureIndexes creates the unique name index the duplicate check relies on.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create %s indexes: %w", r.kind.Collection, err)
	}
	return nil
}

// Insert stores a new resource, assigning its ID and timestamps.
func (r *Repo) Insert(ctx context.Context, res *Resource) error {
	res.ID = primitive.NewObjectID()
	res.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	res.UpdatedAt = res.CreatedAt

	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		return r.writeError("insert", err)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Resource, error) {
	var res Resource
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", r.kind.Name, id.Hex(), err)
	}
	return &res, nil
}

// FindByIDs fetches the summaries of every existing id; missing ids are skipped.
func (r *Repo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Summary, error) {
	if len(ids) == 0 {
		return []*Summary{}, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s set: %w", r.kind.Collection, err)
	}
	defer cursor.Close(ctx)

	out := []*Summary{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s set: %w", r.kind.Collection, err)
	}
	return out, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]*Summary, error) {
	find := query.Named(query.NamedParams{SearchTerm: q.SearchTerm, Sort: q.Sort})

	cursor, err := r.coll.Find(ctx, find.Filter, find.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind.Collection, err)
	}
	defer cursor.Close(ctx)

	out := []*Summary{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.kind.Collection, err)
	}
	return out, nil
}

// Rename sets a new name and returns the updated resource.
func (r *Repo) Rename(ctx context.Context, id primitive.ObjectID, name string) (*Resource, error) {
	update := bson.M{"$set": bson.M{
		"name":       name,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var res Resource
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, r.writeError("rename", err)
	}
	return &res, nil
}

func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind.Name, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// writeError translates duplicate-key failures into the kind's conflict error.
func (r *Repo) writeError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &domain.ConflictError{
			Message:      r.kind.DuplicateMessage,
			ResourceType: r.kind.Name,
		}
	}
	return fmt.Errorf("%s %s: %w", op, r.kind.Name, err)
}
