package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/landledger/property-transfer/internal/core/domain"
)

const collectionRequests = "property_requests"

// RequestRepository persists property requests.
type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

type requestDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	RequestID      string             `bson:"request_id"`
	SellerWallet   string             `bson:"seller_wallet_address"`
	BuyerWallet    string             `bson:"buyer_wallet_address"`
	Description    string             `bson:"full_description"`
	Price          string             `bson:"property_price"`
	DocumentRef    string             `bson:"ownership_document"`
	Status         string             `bson:"status"`
	TransactionRef string             `bson:"transaction_hash"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (d *requestDoc) toDomain() *domain.PropertyRequest {
	return &domain.PropertyRequest{
		ID:             d.ID.Hex(),
		RequestID:      d.RequestID,
		SellerWallet:   d.SellerWallet,
		BuyerWallet:    d.BuyerWallet,
		Description:    d.Description,
		Price:          d.Price,
		DocumentRef:    d.DocumentRef,
		Status:         domain.RequestStatus(d.Status),
		TransactionRef: d.TransactionRef,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func fromDomain(r *domain.PropertyRequest) requestDoc {
	return requestDoc{
		RequestID:      r.RequestID,
		SellerWallet:   r.SellerWallet,
		BuyerWallet:    r.BuyerWallet,
		Description:    r.Description,
		Price:          r.Price,
		DocumentRef:    r.DocumentRef,
		Status:         string(r.Status),
		TransactionRef: r.TransactionRef,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r *RequestRepository) Insert(ctx context.Context, req *domain.PropertyRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, fromDomain(req))
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	req.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *RequestRepository) FindByRequestID(ctx context.Context, requestID string) (*domain.PropertyRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDoc
	if err := r.col.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return doc.toDomain(), nil
}

// TransitionIfPending is the conditional write that arbitrates concurrent
// transitions: the filter matches only while the request is still pending,
// so of two racing updates exactly one lands.
func (r *RequestRepository) TransitionIfPending(ctx context.Context, requestID string, status domain.RequestStatus) (*domain.PropertyRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"request_id": requestID, "status": string(domain.StatusPending)}
	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}}

	var doc requestDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("transition request: %w", err)
	}

	// The conditional update missed: distinguish unknown id from an
	// already-terminal request so the loser of a race sees the right error.
	if _, findErr := r.FindByRequestID(ctx, requestID); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrInvalidTransition
}

// SetTransactionRefIfNull records the mint outcome only while no reference
// is stored; a reference, once set, is never cleared or replaced.
func (r *RequestRepository) SetTransactionRefIfNull(ctx context.Context, requestID, ref string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"request_id": requestID, "transaction_hash": ""},
		bson.M{"$set": bson.M{"transaction_hash": ref, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set transaction ref: %w", err)
	}
	return nil
}

func (r *RequestRepository) ListAll(ctx context.Context) ([]domain.PropertyRequest, error) {
	return r.list(ctx, bson.M{})
}

func (r *RequestRepository) ListByWallet(ctx context.Context, wallet string) ([]domain.PropertyRequest, error) {
	return r.list(ctx, bson.M{"$or": []bson.M{
		{"seller_wallet_address": wallet},
		{"buyer_wallet_address": wallet},
	}})
}

func (r *RequestRepository) ListOwnedBy(ctx context.Context, buyerWallet string) ([]domain.PropertyRequest, error) {
	return r.list(ctx, bson.M{
		"buyer_wallet_address": buyerWallet,
		"status":               string(domain.StatusApproved),
	})
}

func (r *RequestRepository) ListApprovedUnminted(ctx context.Context, updatedBefore time.Time) ([]domain.PropertyRequest, error) {
	return r.list(ctx, bson.M{
		"status":           string(domain.StatusApproved),
		"transaction_hash": "",
		"updated_at":       bson.M{"$lt": updatedBefore},
	})
}

func (r *RequestRepository) list(ctx context.Context, filter bson.M) ([]domain.PropertyRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.PropertyRequest
	for cur.Next(ctx) {
		var doc requestDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	return out, cur.Err()
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	counts := make(map[domain.RequestStatus]int64, 3)
	for _, status := range []domain.RequestStatus{domain.StatusPending, domain.StatusApproved, domain.StatusRejected} {
		n, err := r.col.CountDocuments(ctx, bson.M{"status": string(status)})
		if err != nil {
			return nil, fmt.Errorf("count requests: %w", err)
		}
		counts[status] = n
	}
	return counts, nil
}

// EnsureIndexes creates the request indexes; request_id uniqueness backs
// the generated identifier's collision guarantee.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "seller_wallet_address", Value: 1}}},
		{Keys: bson.D{{Key: "buyer_wallet_address", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "transaction_hash", Value: 1}}},
	})
	return err
}
