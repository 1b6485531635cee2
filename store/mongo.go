// File: /store/mongo.go
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store over a MongoDB database. Document ids are kept
// as plain strings in _id so they round-trip through the cache layer without
// ObjectID conversions.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, WrapError(Unavailable, err, "failed to connect to %q", dbName)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, WrapError(Unavailable, err, "failed to reach %q", dbName)
	}

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{col: s.db.Collection(name)}
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	col *mongo.Collection
}

func (c *mongoCollection) Create(ctx context.Context, id string, doc Document) (string, error) {
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}

	insert := bson.M{"_id": id}
	for k, v := range doc {
		insert[k] = v
	}
	now := time.Now().UTC()
	if _, ok := insert["createdAt"]; !ok {
		insert["createdAt"] = now
	}
	if _, ok := insert["updatedAt"]; !ok {
		insert["updatedAt"] = now
	}

	if _, err := c.col.InsertOne(ctx, insert); err != nil {
		return "", translateMongoError(err, "create")
	}
	return id, nil
}

func (c *mongoCollection) Get(ctx context.Context, id string) (Document, error) {
	var raw bson.M
	if err := c.col.FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		return nil, translateMongoError(err, "get")
	}
	return documentFromBSON(raw), nil
}

func (c *mongoCollection) Update(ctx context.Context, id string, fields Document) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	update := bson.M{
		"$set":         set,
		"$currentDate": bson.M{"updatedAt": true},
	}

	res, err := c.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translateMongoError(err, "update")
	}
	if res.MatchedCount == 0 {
		return NewError(NotFound, "document %q not found", id)
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) error {
	res, err := c.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateMongoError(err, "delete")
	}
	if res.DeletedCount == 0 {
		return NewError(NotFound, "document %q not found", id)
	}
	return nil
}

func (c *mongoCollection) Increment(ctx context.Context, id string, field string, delta int64) error {
	update := bson.M{
		"$inc":         bson.M{field: delta},
		"$currentDate": bson.M{"updatedAt": true},
	}

	res, err := c.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translateMongoError(err, "increment")
	}
	if res.MatchedCount == 0 {
		return NewError(NotFound, "document %q not found", id)
	}
	return nil
}

func (c *mongoCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	filter := bson.M{}
	for _, w := range q.Wheres {
		// Equality against an array field is native membership matching in
		// MongoDB, so both operators share the same filter shape.
		filter[w.Field] = w.Value
	}

	opts := options.Find()
	if q.Sort != nil {
		dir := 1
		if q.Sort.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.Sort.Field, Value: dir}})
		// Sorted queries must be served by an index on the sort key. The hint
		// turns a missing index into a hard FailedPrecondition instead of a
		// silent collection scan, which is what drives the caller's fallback.
		opts.SetHint(bson.D{{Key: q.Sort.Field, Value: dir}})
	}

	cursor, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongoError(err, "find")
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, translateMongoError(err, "find")
		}
		docs = append(docs, documentFromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, translateMongoError(err, "find")
	}
	return docs, nil
}

// documentFromBSON lifts decoded BSON into a Document, normalizing the types
// the cache layer has to deal with. DateTime values stay as-is; the model
// boundary coerces them through their Time accessor.
func documentFromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case bson.A:
			doc[k] = []interface{}(val)
		case bson.M:
			doc[k] = documentFromBSON(val)
		default:
			doc[k] = v
		}
	}
	return doc
}

func translateMongoError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return WrapError(NotFound, err, "%s: no matching document", op)
	}
	if mongo.IsDuplicateKeyError(err) {
		return WrapError(AlreadyExists, err, "%s: duplicate document id", op)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return WrapError(Unavailable, err, "%s: store unreachable", op)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 13: // Unauthorized
			return WrapError(PermissionDenied, err, "%s: permission denied", op)
		case 18: // AuthenticationFailed
			return WrapError(Unauthenticated, err, "%s: authentication failed", op)
		case 50: // MaxTimeMSExpired
			return WrapError(Unavailable, err, "%s: store timed out", op)
		case 2: // BadValue: a sort hint naming a nonexistent index lands here
			if strings.Contains(cmdErr.Message, "hint") {
				return WrapError(FailedPrecondition, err, "%s: query requires an index", op)
			}
			return WrapError(InvalidArgument, err, "%s: bad query", op)
		}
		if cmdErr.HasErrorLabel("TransientTransactionError") {
			return WrapError(Unavailable, err, "%s: transient store error", op)
		}
	}
	return WrapError(Unknown, err, "%s failed", op)
}
