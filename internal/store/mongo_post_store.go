package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "blogPosts"

type readTimeDocument struct {
	Value int    `bson:"value"`
	Unit  string `bson:"unit"`
}

type commentDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type postDocument struct {
	ID        string            `bson:"_id"`
	Category  string            `bson:"category"`
	Title     string            `bson:"title"`
	Cover     string            `bson:"cover"`
	ReadTime  readTimeDocument  `bson:"read_time"`
	Author    string            `bson:"author"`
	Content   string            `bson:"content"`
	Comments  []commentDocument `bson:"comments"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// MongoPostStore keeps each post, comments included, as one document.
type MongoPostStore struct {
	posts *mongo.Collection
	now   func() time.Time
}

func NewMongoPostStore(db *mongo.Database) *MongoPostStore {
	return &MongoPostStore{posts: db.Collection(postsCollection), now: time.Now}
}

// EnsureIndexes creates the indexes used by listing queries.
func (s *MongoPostStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	return nil
}

func (s *MongoPostStore) CreatePost(ctx context.Context, post *models.Post) error {
	now := s.now().UTC()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if _, err := s.posts.InsertOne(ctx, toPostDocument(post)); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (s *MongoPostStore) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc postDocument
	if err := s.posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return fromPostDocument(&doc)
}

func (s *MongoPostStore) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	query := bson.M{}
	if filter.Title != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Title), Options: "i"}
	}
	if filter.Author != "" {
		query["author"] = filter.Author
	}

	total, err := s.posts.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cursor, err := s.posts.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]models.Post, 0, len(docs))
	for i := range docs {
		post, err := fromPostDocument(&docs[i])
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *post)
	}
	return posts, total, nil
}

func (s *MongoPostStore) UpdatePost(ctx context.Context, id uuid.UUID, changes PostChanges) (*models.Post, error) {
	set := bson.M{"updated_at": s.now().UTC()}
	if changes.Category != nil {
		set["category"] = *changes.Category
	}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Cover != nil {
		set["cover"] = *changes.Cover
	}
	if changes.ReadTime != nil {
		set["read_time"] = readTimeDocument{Value: changes.ReadTime.Value, Unit: changes.ReadTime.Unit}
	}
	if changes.Content != nil {
		set["content"] = *changes.Content
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
}

func (s *MongoPostStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := s.posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoPostStore) AppendComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error) {
	update := bson.M{
		"$push": bson.M{"comments": toCommentDocument(comment)},
		"$set":  bson.M{"updated_at": s.now().UTC()},
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": postID.String()}, update)
}

func (s *MongoPostStore) UpdateComment(ctx context.Context, postID, commentID uuid.UUID, content string, at time.Time) (*models.Comment, error) {
	filter := bson.M{"_id": postID.String(), "comments._id": commentID.String()}
	update := bson.M{"$set": bson.M{
		"comments.$.content":    content,
		"comments.$.updated_at": at,
		"updated_at":            at,
	}}
	post, err := s.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, ErrPostNotFound) {
		return nil, s.missingComment(ctx, postID)
	}
	if err != nil {
		return nil, err
	}
	i := post.FindComment(commentID)
	if i < 0 {
		return nil, ErrCommentNotFound
	}
	return &post.Comments[i], nil
}

func (s *MongoPostStore) RemoveComment(ctx context.Context, postID, commentID uuid.UUID) error {
	filter := bson.M{"_id": postID.String(), "comments._id": commentID.String()}
	update := bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID.String()}},
		"$set":  bson.M{"updated_at": s.now().UTC()},
	}
	result, err := s.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove comment: %w", err)
	}
	if result.MatchedCount == 0 {
		return s.missingComment(ctx, postID)
	}
	return nil
}

// missingComment tells apart a missing post from a missing comment after a
// filtered update matched nothing.
func (s *MongoPostStore) missingComment(ctx context.Context, postID uuid.UUID) error {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return err
	}
	return ErrCommentNotFound
}

func (s *MongoPostStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDocument
	if err := s.posts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return fromPostDocument(&doc)
}

func toPostDocument(p *models.Post) postDocument {
	comments := make([]commentDocument, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, toCommentDocument(c))
	}
	return postDocument{
		ID:        p.ID.String(),
		Category:  p.Category,
		Title:     p.Title,
		Cover:     p.Cover,
		ReadTime:  readTimeDocument{Value: p.ReadTime.Value, Unit: p.ReadTime.Unit},
		Author:    p.Author,
		Content:   p.Content,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toCommentDocument(c models.Comment) commentDocument {
	return commentDocument{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromPostDocument(doc *postDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", doc.ID, err)
	}
	post := &models.Post{
		ID:        id,
		Category:  doc.Category,
		Title:     doc.Title,
		Cover:     doc.Cover,
		ReadTime:  models.ReadTime{Value: doc.ReadTime.Value, Unit: doc.ReadTime.Unit},
		Author:    doc.Author,
		Content:   doc.Content,
		Comments:  make([]models.Comment, 0, len(doc.Comments)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, c := range doc.Comments {
		cid, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid comment id %q: %w", c.ID, err)
		}
		post.Comments = append(post.Comments, models.Comment{
			ID:        cid,
			Name:      c.Name,
			Email:     c.Email,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return post, nil
}
