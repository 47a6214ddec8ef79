package collection

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"sitepages/internal/domain"
)

// MongoSource reads items from a MongoDB collection.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
	filter bson.M
	fields FieldMap
}

func NewMongoSource(client *mongo.Client, database, collection string, filter map[string]any, fields FieldMap) *MongoSource {
	f := bson.M{}
	for k, v := range filter {
		f[k] = v
	}
	fields = fields.WithDefaults()
	if fields.ID == "id" {
		fields.ID = "_id"
	}
	return &MongoSource{
		client: client,
		coll:   client.Database(database).Collection(collection),
		filter: f,
		fields: fields,
	}
}

func (s *MongoSource) QueryRecent(ctx context.Context, entity string, count int) ([]domain.CollectionItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: s.fields.PublishedAt, Value: -1}}).
		SetLimit(int64(count))

	cursor, err := s.coll.Find(ctx, s.filter, opts)
	if err != nil {
		return nil, NewSourceError(KindMongo, "find", entity, err)
	}
	defer cursor.Close(ctx)

	items := []domain.CollectionItem{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, NewSourceError(KindMongo, "decode", entity, err)
		}
		items = append(items, itemFromMap(normalizeBSON(doc), s.fields))
	}
	if err := cursor.Err(); err != nil {
		return nil, NewSourceError(KindMongo, "find", entity, err)
	}
	return items, nil
}

// normalizeBSON converts driver value types into plain Go values.
func normalizeBSON(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = bsonValue(v)
	}
	return out
}

func bsonValue(v any) any {
	switch t := v.(type) {
	case bson.ObjectID:
		return t.Hex()
	case bson.DateTime:
		return t.Time().UTC()
	case bson.M:
		return normalizeBSON(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = bsonValue(e.Value)
		}
		return m
	case time.Time:
		return t
	default:
		return v
	}
}

func (s *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
