// Package mongo stores the ledger in MongoDB, one document per category
// and per transaction keyed by the ledger id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"finfamily/internal/core"
	"finfamily/internal/log"
)

const (
	categoriesCollection   = "categories"
	transactionsCollection = "transactions"
)

type Store struct {
	client       *mongo.Client
	categories   *mongo.Collection
	transactions *mongo.Collection
	logger       *log.Logger
	now          func() time.Time
}

// Connect dials uri and checks the server is reachable.
func Connect(ctx context.Context, uri, dbName string, logger *log.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	s := NewWithDatabase(client.Database(dbName), logger)
	s.client = client
	s.logger.InfoContext(ctx, "Connected to MongoDB", "database", dbName)
	return s, nil
}

func NewWithDatabase(db *mongo.Database, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Nop()
	}
	return &Store{
		categories:   db.Collection(categoriesCollection),
		transactions: db.Collection(transactionsCollection),
		logger:       logger.WithComponent(log.ComponentStorage).With(log.FieldBackend, "mongo"),
		now:          time.Now,
	}
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

type subCategoryDoc struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type categoryDoc struct {
	ID            string           `bson:"_id"`
	Name          string           `bson:"name"`
	Color         string           `bson:"color"`
	Type          string           `bson:"type"`
	SubCategories []subCategoryDoc `bson:"sub_categories"`
	Position      int64            `bson:"position"`
}

type transactionDoc struct {
	ID                 string               `bson:"_id"`
	Date               string               `bson:"date"`
	Description        string               `bson:"description"`
	Amount             primitive.Decimal128 `bson:"amount"`
	Type               string               `bson:"type"`
	Status             string               `bson:"status"`
	CategoryID         string               `bson:"category_id"`
	SubCategoryID      string               `bson:"sub_category_id,omitempty"`
	InstallmentCurrent int                  `bson:"installment_current,omitempty"`
	InstallmentTotal   int                  `bson:"installment_total,omitempty"`
	Position           int64                `bson:"position"`
}

func categoryToDoc(c core.Category, position int64) categoryDoc {
	subs := make([]subCategoryDoc, len(c.SubCategories))
	for i, sc := range c.SubCategories {
		subs[i] = subCategoryDoc{ID: sc.ID, Name: sc.Name}
	}
	return categoryDoc{
		ID:            c.ID,
		Name:          c.Name,
		Color:         c.Color,
		Type:          string(c.Type),
		SubCategories: subs,
		Position:      position,
	}
}

func (d categoryDoc) toCore() core.Category {
	subs := make([]core.SubCategory, len(d.SubCategories))
	for i, sc := range d.SubCategories {
		subs[i] = core.SubCategory{ID: sc.ID, Name: sc.Name}
	}
	return core.Category{
		ID:            d.ID,
		Name:          d.Name,
		Color:         d.Color,
		Type:          core.TransactionType(d.Type),
		SubCategories: subs,
	}
}

func transactionToDoc(t core.Transaction, position int64) (transactionDoc, error) {
	amount, err := primitive.ParseDecimal128(t.Amount.String())
	if err != nil {
		return transactionDoc{}, fmt.Errorf("amount of %s: %w", t.ID, err)
	}
	d := transactionDoc{
		ID:            t.ID,
		Date:          t.Date.String(),
		Description:   t.Description,
		Amount:        amount,
		Type:          string(t.Type),
		Status:        string(t.Status),
		CategoryID:    t.CategoryID,
		SubCategoryID: t.SubCategoryID,
		Position:      position,
	}
	if t.HasInstallments() {
		d.InstallmentCurrent = t.InstallmentCurrent
		d.InstallmentTotal = t.InstallmentTotal
	}
	return d, nil
}

func (d transactionDoc) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date of %s: %w", d.ID, err)
	}
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount of %s: %w", d.ID, err)
	}
	return core.Transaction{
		ID:                 d.ID,
		Date:               date,
		Description:        d.Description,
		Amount:             amount,
		Type:               core.TransactionType(d.Type),
		Status:             core.Status(d.Status),
		CategoryID:         d.CategoryID,
		SubCategoryID:      d.SubCategoryID,
		InstallmentCurrent: d.InstallmentCurrent,
		InstallmentTotal:   d.InstallmentTotal,
	}, nil
}

func byPosition() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	cursor, err := s.categories.Find(ctx, bson.M{}, byPosition())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	out := make([]core.Category, len(docs))
	for i, d := range docs {
		out[i] = d.toCore()
	}
	s.logger.DebugContext(ctx, "Listed categories", log.FieldCount, len(out))
	return out, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	cursor, err := s.transactions.Find(ctx, bson.M{}, byPosition())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	s.logger.DebugContext(ctx, "Listed transactions", log.FieldCount, len(out))
	return out, nil
}

func (s *Store) SeedDefaultCategories(ctx context.Context) ([]core.Category, error) {
	seeded := core.SeedCategories(uuid.NewString)
	base := s.now().UnixNano()
	docs := make([]any, len(seeded))
	for i, c := range seeded {
		docs[i] = categoryToDoc(c, base+int64(i))
	}
	if _, err := s.categories.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}
	s.logger.InfoContext(ctx, "Seeded default categories", log.FieldCount, len(seeded))
	return seeded, nil
}

// UpsertCategory writes c in place; position is only set on insert so an
// edited category keeps its slot.
func (s *Store) UpsertCategory(ctx context.Context, c core.Category) error {
	doc := categoryToDoc(c, s.now().UnixNano())
	update := bson.M{
		"$set": bson.M{
			"name":           doc.Name,
			"color":          doc.Color,
			"type":           doc.Type,
			"sub_categories": doc.SubCategories,
		},
		"$setOnInsert": bson.M{"position": doc.Position},
	}
	_, err := s.categories.UpdateOne(ctx, bson.M{"_id": c.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	s.logger.InfoContext(ctx, "Category saved", log.FieldCategoryID, c.ID)
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	return nil
}

// CreateTransactions inserts the batch in order. When the insert stops
// part way, the documents it already wrote are removed again.
func (s *Store) CreateTransactions(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	base := s.now().UnixNano()
	docs := make([]any, len(txs))
	for i, t := range txs {
		d, err := transactionToDoc(t, base+int64(i))
		if err != nil {
			return err
		}
		docs[i] = d
	}

	_, err := s.transactions.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		s.compensate(ctx, txs, err)
		return fmt.Errorf("failed to insert transactions: %w", err)
	}
	s.logger.InfoContext(ctx, "Transactions saved", log.FieldCount, len(txs))
	return nil
}

func (s *Store) compensate(ctx context.Context, txs []core.Transaction, err error) {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return
	}
	written := bwe.WriteErrors[0].Index
	if written <= 0 {
		return
	}
	ids := make([]string, written)
	for i := range ids {
		ids[i] = txs[i].ID
	}
	if _, derr := s.transactions.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); derr != nil {
		s.logger.ErrorContext(ctx, "Failed to remove partially inserted transactions",
			log.FieldError, derr, log.FieldCount, len(ids))
	}
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	doc, err := transactionToDoc(t, 0)
	if err != nil {
		return err
	}
	set := bson.M{
		"date":        doc.Date,
		"description": doc.Description,
		"amount":      doc.Amount,
		"type":        doc.Type,
		"status":      doc.Status,
		"category_id": doc.CategoryID,
	}
	unset := bson.M{}
	if doc.SubCategoryID != "" {
		set["sub_category_id"] = doc.SubCategoryID
	} else {
		unset["sub_category_id"] = ""
	}
	if doc.InstallmentTotal > 0 {
		set["installment_current"] = doc.InstallmentCurrent
		set["installment_total"] = doc.InstallmentTotal
	} else {
		unset["installment_current"] = ""
		unset["installment_total"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := s.transactions.UpdateOne(ctx, bson.M{"_id": t.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("transaction %q: %w", t.ID, core.ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, t.ID)
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.transactions.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return nil
}
