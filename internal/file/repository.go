package file

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no file record exists for an id.
var ErrNotFound = errors.New("file not found")

// ErrInvalidID is returned when an id is not a well-formed ObjectID. It is
// checked before any query reaches the database.
var ErrInvalidID = errors.New("invalid file id")

// Repository handles all file metadata operations against MongoDB.
type Repository struct {
	coll *mongo.Collection
}

// NewRepository creates a Repository over the "files" collection of db.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection("files")}
}

// EnsureIndexes creates the indexes the repository queries rely on: name
// (substring search) and uploaded_at descending (default listing order).
// Safe to call on every startup; existing indexes are left untouched.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "uploaded_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Insert stores a new file record and returns it with the assigned id.
func (r *Repository) Insert(ctx context.Context, f *File) (*File, error) {
	res, err := r.coll.InsertOne(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("insert file record: %w", err)
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return f, nil
}

// FindByID fetches a file record by its hex id.
func (r *Repository) FindByID(ctx context.Context, id string) (*File, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	f := &File{}
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find file by id: %w", err)
	}
	return f, nil
}

// FindPage returns one page of records ordered by upload time descending,
// plus the total count of records matching the filter. search, when
// non-empty, restricts results to names containing it (case-insensitive).
func (r *Repository) FindPage(ctx context.Context, search string, page, limit int64) ([]File, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{
			Pattern: regexp.QuoteMeta(search),
			Options: "i",
		}}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count file records: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find file records: %w", err)
	}
	defer cursor.Close(ctx)

	files := make([]File, 0, limit)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, 0, fmt.Errorf("decode file records: %w", err)
	}
	return files, total, nil
}

// UpdateName sets a record's display name and returns the updated record.
// No other field is touched.
func (r *Repository) UpdateName(ctx context.Context, id, name string) (*File, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	f := &File{}
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": name}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update file name: %w", err)
	}
	return f, nil
}

// Delete removes a file record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
