package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/soaringjerry/Resilience/internal/models"
	"github.com/soaringjerry/Resilience/internal/services"
)

const (
	assessmentsCollection = "assessments"
	usersCollection       = "users"
	countersCollection    = "counters"
)

// MongoStore persists records in MongoDB. Integer ids come from a counter document.
type MongoStore struct {
	client      *mongo.Client
	assessments *mongo.Collection
	users       *mongo.Collection
	counters    *mongo.Collection
	now         func() time.Time
}

type assessmentDocument struct {
	ID               int64          `bson:"_id"`
	UserID           string         `bson:"user_id"`
	CreatedAt        time.Time      `bson:"created_at"`
	OrganizationName string         `bson:"organization_name"`
	Score            int            `bson:"score"`
	Answers          map[string]int `bson:"answers"`
	CategoryScores   map[string]int `bson:"category_scores"`
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	PassHash  []byte    `bson:"pass_hash"`
	CreatedAt time.Time `bson:"created_at"`
}

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:      client,
		assessments: db.Collection(assessmentsCollection),
		users:       db.Collection(usersCollection),
		counters:    db.Collection(countersCollection),
		// BSON dates hold milliseconds.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.assessments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create assessments index: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": assessmentsCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next assessment id: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) Insert(ctx context.Context, in models.AssessmentRecordInput) (*models.AssessmentRecord, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}
	doc := assessmentDocument{
		ID:               id,
		UserID:           in.UserID,
		CreatedAt:        s.now(),
		OrganizationName: in.OrganizationName,
		Score:            in.Score,
		Answers:          encodeAnswers(in.Answers),
		CategoryScores:   copyScores(in.CategoryScores),
	}
	if _, err := s.assessments.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	rec, err := doc.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MongoStore) Query(ctx context.Context, userID string) ([]models.AssessmentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.assessments.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.AssessmentRecord
	for cur.Next(ctx) {
		var doc assessmentDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		rec, err := doc.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

func (s *MongoStore) Delete(ctx context.Context, userID string, id int64) error {
	res, err := s.assessments.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if res.DeletedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*services.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &services.User{ID: doc.ID, Email: doc.Email, PassHash: doc.PassHash, CreatedAt: doc.CreatedAt.UTC()}, nil
}

func (s *MongoStore) AddUser(ctx context.Context, u *services.User) error {
	doc := userDocument{ID: u.ID, Email: u.Email, PassHash: u.PassHash, CreatedAt: u.CreatedAt.UTC()}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// BSON documents need string keys.
func encodeAnswers(set models.AnswerSet) map[string]int {
	out := make(map[string]int, set.Len())
	for qid, v := range set.Snapshot() {
		out[strconv.Itoa(qid)] = v
	}
	return out
}

func (d assessmentDocument) record() (models.AssessmentRecord, error) {
	answers := make(map[int]int, len(d.Answers))
	for k, v := range d.Answers {
		qid, err := strconv.Atoi(k)
		if err != nil {
			return models.AssessmentRecord{}, fmt.Errorf("assessment %d: bad question key %q", d.ID, k)
		}
		answers[qid] = v
	}
	return models.AssessmentRecord{
		ID:               d.ID,
		UserID:           d.UserID,
		CreatedAt:        d.CreatedAt.UTC(),
		OrganizationName: d.OrganizationName,
		Score:            d.Score,
		Answers:          models.NewAnswerSet(answers),
		CategoryScores:   copyScores(d.CategoryScores),
	}, nil
}
