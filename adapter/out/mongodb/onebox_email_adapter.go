// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
)

// =============================================================================
// MongoDB Email Adapter
// =============================================================================

const collectionEmails = "emails"

// EmailAdapter implements out.EmailRepository using MongoDB.
type EmailAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewEmailAdapter creates a new MongoDB email adapter.
func NewEmailAdapter(db *mongo.Database) *EmailAdapter {
	collection := db.Collection(collectionEmails)
	return &EmailAdapter{
		db:         db,
		collection: collection,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *EmailAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "date", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "folder", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "subject", Value: "text"},
				{Key: "body", Value: "text"},
				{Key: "from", Value: "text"},
			},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// emailDocument represents the MongoDB document structure.
type emailDocument struct {
	MessageID string    `bson:"message_id"`
	AccountID string    `bson:"account_id"`
	Folder    string    `bson:"folder"`
	From      string    `bson:"from"`
	To        []string  `bson:"to"`
	Subject   string    `bson:"subject"`
	Body      string    `bson:"body"`
	Date      time.Time `bson:"date"`
	Category  string    `bson:"category"`
	UID       int64     `bson:"uid"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toDocument(email *domain.Email) *emailDocument {
	return &emailDocument{
		MessageID: email.ID,
		AccountID: email.AccountID,
		Folder:    email.Folder,
		From:      email.From,
		To:        email.To,
		Subject:   email.Subject,
		Body:      email.Body,
		Date:      email.Date,
		Category:  string(email.Category),
		UID:       int64(email.UID),
		UpdatedAt: time.Now().UTC(),
	}
}

func toEmail(doc *emailDocument) *domain.Email {
	return &domain.Email{
		ID:        doc.MessageID,
		AccountID: doc.AccountID,
		Folder:    doc.Folder,
		From:      doc.From,
		To:        doc.To,
		Subject:   doc.Subject,
		Body:      doc.Body,
		Date:      doc.Date,
		Category:  domain.Category(doc.Category),
		UID:       uint32(doc.UID),
	}
}

// =============================================================================
// Operations
// =============================================================================

// Upsert stores or replaces an email keyed by its message id.
func (a *EmailAdapter) Upsert(ctx context.Context, email *domain.Email) error {
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"message_id": email.ID}

	_, err := a.collection.ReplaceOne(ctx, filter, toDocument(email), opts)
	if err != nil {
		return fmt.Errorf("failed to upsert email: %w", err)
	}

	return nil
}

// PatchCategory updates only the category of a stored email.
func (a *EmailAdapter) PatchCategory(ctx context.Context, id string, category domain.Category) error {
	filter := bson.M{"message_id": id}
	update := bson.M{"$set": bson.M{
		"category":   string(category),
		"updated_at": time.Now().UTC(),
	}}

	_, err := a.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// GetByID retrieves one email; returns (nil, nil) when absent.
func (a *EmailAdapter) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	var doc emailDocument
	filter := bson.M{"message_id": id}

	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get email: %w", err)
	}

	return toEmail(&doc), nil
}

// Search returns matching emails sorted by date descending plus the
// total match count.
func (a *EmailAdapter) Search(ctx context.Context, q out.EmailQuery) ([]*domain.Email, int64, error) {
	filter := bson.M{}
	if q.Text != "" {
		filter["$text"] = bson.M{"$search": q.Text}
	}
	if q.AccountID != "" {
		filter["account_id"] = q.AccountID
	}
	if q.Folder != "" {
		filter["folder"] = q.Folder
	}
	if q.Category != "" {
		filter["category"] = string(q.Category)
	}

	total, err := a.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count emails: %w", err)
	}

	size := q.Size
	if size <= 0 {
		size = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64(q.From)).
		SetLimit(int64(size))

	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search emails: %w", err)
	}
	defer cursor.Close(ctx)

	var emails []*domain.Email
	for cursor.Next(ctx) {
		var doc emailDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode email: %w", err)
		}
		emails = append(emails, toEmail(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}

	return emails, total, nil
}

// DeleteByAccount removes everything ingested for one account.
func (a *EmailAdapter) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	filter := bson.M{"account_id": accountID}

	result, err := a.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete emails by account: %w", err)
	}

	return result.DeletedCount, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.EmailRepository = (*EmailAdapter)(nil)
