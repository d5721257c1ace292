package notes

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
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("notes")}
}

// EnsureIndexes creates necessary indexes for the notes collection
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "folder_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "created_at", Value: 1},
				{Key: "_id", Value: 1},
			},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Insert creates a new note
func (r *Repo) Insert(ctx context.Context, n *Note) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	n.UpdatedAt = n.CreatedAt
	n.normalize()

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// FindByID retrieves a note by its ID
func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Note, error) {
	var note Note
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id.Hex(), err)
	}
	note.normalize()
	return &note, nil
}

// List retrieves note summaries matching p in creation order
func (r *Repo) List(ctx context.Context, p query.NoteParams) ([]*Summary, error) {
	q := query.Notes(p)

	cursor, err := r.coll.Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := []*Summary{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	for _, n := range notes {
		n.normalize()
	}
	return notes, nil
}

// Update applies p and returns the note as stored afterwards
func (r *Repo) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*Note, error) {
	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	if p.FolderID != nil {
		set["folder_id"] = *p.FolderID
	}
	if p.Tags != nil {
		set["tags"] = *p.Tags
	}

	update := bson.M{"$set": set}
	if p.UnsetFolder {
		update["$unset"] = bson.M{"folder_id": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var note Note
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note %s: %w", id.Hex(), err)
	}
	note.normalize()
	return &note, nil
}

// Delete removes a note by ID
func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByFolder removes every note filed in folderID
func (r *Repo) DeleteByFolder(ctx context.Context, folderID primitive.ObjectID) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"folder_id": folderID})
	if err != nil {
		return 0, fmt.Errorf("delete notes in folder %s: %w", folderID.Hex(), err)
	}
	return result.DeletedCount, nil
}

// PullTag removes tagID from the tags of every note holding it
func (r *Repo) PullTag(ctx context.Context, tagID primitive.ObjectID) (int64, error) {
	result, err := r.coll.UpdateMany(ctx,
		bson.M{"tags": tagID},
		bson.M{"$pull": bson.M{"tags": tagID}},
	)
	if err != nil {
		return 0, fmt.Errorf("pull tag %s from notes: %w", tagID.Hex(), err)
	}
	return result.ModifiedCount, nil
}
