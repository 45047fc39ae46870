package food

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	foodsCollection = "foods"

	mongoNamespaceExists           = 48
	mongoDocumentValidationFailure = 121
)

// MongoStore keeps foods in a MongoDB collection guarded by a $jsonSchema
// validator and unique indexes on name and slug.
type MongoStore struct {
	coll *mongo.Collection
}

type foodDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Type          string             `bson:"type"`
	Price         int                `bson:"price"`
	Description   *string            `bson:"description,omitempty"`
	Slug          string             `bson:"slug"`
	EstimatedTime int                `bson:"estimatedTime"`
	Image         *string            `bson:"image,omitempty"`
	Stars         *float64           `bson:"stars,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

// NewMongoStore prepares the foods collection in db: schema validator and
// indexes are created when missing.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	opts := options.CreateCollection().SetValidator(foodSchema())
	if err := db.CreateCollection(ctx, foodsCollection, opts); err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Code != mongoNamespaceExists {
			return nil, fmt.Errorf("create foods collection: %w", err)
		}
		if err := db.RunCommand(ctx, bson.D{
			{Key: "collMod", Value: foodsCollection},
			{Key: "validator", Value: foodSchema()},
		}).Err(); err != nil {
			return nil, fmt.Errorf("update foods validator: %w", err)
		}
	}

	coll := db.Collection(foodsCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_foods_name")},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_foods_slug")},
		{Keys: bson.D{{Key: "type", Value: 1}}, Options: options.Index().SetName("idx_foods_type")},
	})
	if err != nil {
		return nil, fmt.Errorf("create foods indexes: %w", err)
	}

	return &MongoStore{coll: coll}, nil
}

// foodSchema mirrors the write-time constraints of FoodItem.
func foodSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "type", "price", "slug", "estimatedTime"},
			"properties": bson.M{
				"name":          bson.M{"bsonType": "string", "minLength": 3},
				"type":          bson.M{"bsonType": "string", "minLength": 3},
				"price":         bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 2},
				"description":   bson.M{"bsonType": "string", "minLength": 5},
				"slug":          bson.M{"bsonType": "string"},
				"estimatedTime": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"image":         bson.M{"bsonType": "string"},
				"stars":         bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0, "maximum": 5},
			},
		},
	}
}

func (d foodDocument) toDomain() FoodItem {
	return FoodItem{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Type:          d.Type,
		Price:         d.Price,
		Description:   d.Description,
		Slug:          d.Slug,
		EstimatedTime: d.EstimatedTime,
		Image:         d.Image,
		Stars:         d.Stars,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func mongoFilter(q Query) bson.M {
	filter := bson.M{}
	if q.Name != "" {
		filter["name"] = q.Name
	}
	if q.Slug != "" {
		filter["slug"] = q.Slug
	}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.Slugs != nil {
		if q.Slug != "" {
			filter["$and"] = bson.A{bson.M{"slug": bson.M{"$in": q.Slugs}}}
		} else {
			filter["slug"] = bson.M{"$in": q.Slugs}
		}
	}
	if q.HasDescription != nil {
		if *q.HasDescription {
			filter["description"] = bson.M{"$exists": true, "$nin": bson.A{nil, ""}}
		} else {
			filter["description"] = bson.M{"$in": bson.A{nil, ""}}
		}
	}
	return filter
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count foods: %w", err)
	}
	return n, nil
}

func (s *MongoStore) Find(ctx context.Context, q Query) ([]FoodItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, mongoFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("find foods: %w", err)
	}
	defer cur.Close(ctx)

	var docs []foodDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode foods: %w", err)
	}
	items := make([]FoodItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, nil
}

func (s *MongoStore) FindOne(ctx context.Context, q Query) (*FoodItem, error) {
	var d foodDocument
	err := s.coll.FindOne(ctx, mongoFilter(q)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find food: %w", err)
	}
	item := d.toDomain()
	return &item, nil
}

func (s *MongoStore) DistinctTypes(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "type", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct food types: %w", err)
	}
	types := make([]string, 0, len(values))
	for _, v := range values {
		if t, ok := v.(string); ok {
			types = append(types, t)
		}
	}
	return types, nil
}

func (s *MongoStore) Insert(ctx context.Context, item *FoodItem) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	d := foodDocument{
		ID:            primitive.NewObjectID(),
		Name:          item.Name,
		Type:          item.Type,
		Price:         item.Price,
		Description:   item.Description,
		Slug:          item.Slug,
		EstimatedTime: item.EstimatedTime,
		Image:         item.Image,
		Stars:         item.Stars,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return translateMongoError(err)
	}
	*item = d.toDomain()
	return nil
}

func (s *MongoStore) UpdatePrice(ctx context.Context, id string, price int) (*FoodItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "price", Value: price},
		{Key: "updatedAt", Value: time.Now().UTC().Truncate(time.Millisecond)},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d foodDocument
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateMongoError(err)
	}
	item := d.toDomain()
	return &item, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func translateMongoError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return duplicateError(err.Error())
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == mongoDocumentValidationFailure {
				return schemaError(e.Details)
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == mongoDocumentValidationFailure {
		var details bson.Raw
		if v, lerr := ce.Raw.LookupErr("errInfo", "details"); lerr == nil {
			details, _ = v.DocumentOK()
		}
		return schemaError(details)
	}

	return fmt.Errorf("write food: %w", err)
}

// schemaFailure is the part of a $jsonSchema rejection report naming the
// offending properties.
type schemaFailure struct {
	Rules []struct {
		OperatorName           string `bson:"operatorName"`
		PropertiesNotSatisfied []struct {
			PropertyName string `bson:"propertyName"`
		} `bson:"propertiesNotSatisfied"`
		MissingProperties []string `bson:"missingProperties"`
	} `bson:"schemaRulesNotSatisfied"`
}

// schemaError maps the server's validation details onto the document fields
// that failed. Document keys match the json field names.
func schemaError(details bson.Raw) *ValidationError {
	fields := map[string]string{}

	var report schemaFailure
	if len(details) > 0 && bson.Unmarshal(details, &report) == nil {
		for _, rule := range report.Rules {
			for _, p := range rule.PropertiesNotSatisfied {
				fields[p.PropertyName] = "range"
			}
			for _, name := range rule.MissingProperties {
				fields[name] = "required"
			}
		}
	}
	if len(fields) == 0 {
		fields["_"] = "schema"
	}
	return newValidationError("document failed schema validation", fields)
}
