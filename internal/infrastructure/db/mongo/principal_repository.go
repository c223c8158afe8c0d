package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/landledger/property-transfer/internal/core/domain"
)

const (
	collectionManagers  = "staff_managers"
	collectionEmployees = "staff_employees"
	collectionEndUsers  = "end_users"
)

// caseInsensitive makes username lookups match regardless of case, the
// equivalent of LOWER(username) = LOWER($1).
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// PrincipalRepository implements both ports.PrincipalRepository and
// ports.StaffRepository on top of three collections.
type PrincipalRepository struct {
	managers  *mongo.Collection
	employees *mongo.Collection
	endUsers  *mongo.Collection
}

func NewPrincipalRepository(db *mongo.Database) *PrincipalRepository {
	return &PrincipalRepository{
		managers:  db.Collection(collectionManagers),
		employees: db.Collection(collectionEmployees),
		endUsers:  db.Collection(collectionEndUsers),
	}
}

type staffDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Active       bool               `bson:"active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type endUserDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	PasswordHash  string             `bson:"password_hash"`
	WalletAddress string             `bson:"wallet_address"`
	NationalID    string             `bson:"national_id"`
	Active        bool               `bson:"active"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *staffDoc) toDomain() *domain.Staff {
	return &domain.Staff{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (d *endUserDoc) toDomain() *domain.EndUser {
	return &domain.EndUser{
		ID:            d.ID.Hex(),
		Username:      d.Username,
		PasswordHash:  d.PasswordHash,
		WalletAddress: d.WalletAddress,
		NationalID:    d.NationalID,
		Active:        d.Active,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (r *PrincipalRepository) FindManagerByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	return findStaff(ctx, r.managers, username)
}

func (r *PrincipalRepository) FindEmployeeByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	return findStaff(ctx, r.employees, username)
}

func findStaff(ctx context.Context, col *mongo.Collection, username string) (*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc staffDoc
	err := col.FindOne(ctx,
		bson.M{"username": username, "active": true},
		options.FindOne().SetCollation(caseInsensitive),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PrincipalRepository) FindEndUserByUsername(ctx context.Context, username string) (*domain.EndUser, error) {
	return r.findEndUser(ctx, bson.M{"username": username, "active": true}, true)
}

func (r *PrincipalRepository) FindEndUserByWallet(ctx context.Context, address string) (*domain.EndUser, error) {
	return r.findEndUser(ctx, bson.M{"wallet_address": address, "active": true}, false)
}

func (r *PrincipalRepository) findEndUser(ctx context.Context, filter bson.M, foldCase bool) (*domain.EndUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if foldCase {
		opts.SetCollation(caseInsensitive)
	}

	var doc endUserDoc
	if err := r.endUsers.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find end user: %w", err)
	}
	return doc.toDomain(), nil
}

// FindEndUserConflict checks the three unique fields and reports the
// first one that collides. Only the username comparison folds case; the
// national_id and wallet_address indexes compare exactly, so the
// pre-check must too or it rejects values the insert would accept.
func (r *PrincipalRepository) FindEndUserConflict(ctx context.Context, username, nationalID, wallet string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.endUsers.FindOne(ctx, bson.M{"username": username},
		options.FindOne().SetCollation(caseInsensitive).SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return domain.FieldUsername, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("conflict check: %w", err)
	}

	filter := bson.M{"$or": []bson.M{
		{"national_id": nationalID},
		{"wallet_address": wallet},
	}}
	var doc endUserDoc
	if err := r.endUsers.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("conflict check: %w", err)
	}
	if doc.NationalID == nationalID {
		return domain.FieldNationalID, nil
	}
	return domain.FieldWalletAddress, nil
}

func (r *PrincipalRepository) CreateEndUser(ctx context.Context, u *domain.EndUser) (*domain.EndUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := endUserDoc{
		Username:      u.Username,
		PasswordHash:  u.PasswordHash,
		WalletAddress: u.WalletAddress,
		NationalID:    u.NationalID,
		Active:        u.Active,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}

	res, err := r.endUsers.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Two signups raced past the pre-check; the unique index is
			// the final arbiter and the loser gets the same error kind.
			return nil, &domain.DuplicateFieldError{Field: duplicateField(err)}
		}
		return nil, fmt.Errorf("insert end user: %w", err)
	}

	created := *u
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

// duplicateField extracts which unique index a duplicate-key error hit.
func duplicateField(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "wallet_address"):
		return domain.FieldWalletAddress
	case strings.Contains(msg, "national_id"):
		return domain.FieldNationalID
	default:
		return domain.FieldUsername
	}
}

// --- Roster (ports.StaffRepository) ---

func (r *PrincipalRepository) ListManagers(ctx context.Context) ([]domain.Staff, error) {
	return listStaff(ctx, r.managers)
}

func (r *PrincipalRepository) ListEmployees(ctx context.Context) ([]domain.Staff, error) {
	return listStaff(ctx, r.employees)
}

func listStaff(ctx context.Context, col *mongo.Collection) ([]domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := col.Find(ctx,
		bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Staff
	for cur.Next(ctx) {
		var doc staffDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode staff: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	return out, cur.Err()
}

func (r *PrincipalRepository) CreateManager(ctx context.Context, s *domain.Staff) (*domain.Staff, error) {
	return createStaff(ctx, r.managers, s)
}

func (r *PrincipalRepository) CreateEmployee(ctx context.Context, s *domain.Staff) (*domain.Staff, error) {
	return createStaff(ctx, r.employees, s)
}

func createStaff(ctx context.Context, col *mongo.Collection, s *domain.Staff) (*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := staffDoc{
		Username:     s.Username,
		PasswordHash: s.PasswordHash,
		Active:       s.Active,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.DuplicateFieldError{Field: domain.FieldUsername}
		}
		return nil, fmt.Errorf("insert staff: %w", err)
	}

	created := *s
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *PrincipalRepository) DeactivateManager(ctx context.Context, id string) error {
	return deactivateStaff(ctx, r.managers, id)
}

func (r *PrincipalRepository) DeactivateEmployee(ctx context.Context, id string) error {
	return deactivateStaff(ctx, r.employees, id)
}

func deactivateStaff(ctx context.Context, col *mongo.Collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPrincipalNotFound
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": oid, "active": true},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate staff: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

func (r *PrincipalRepository) CountActive(ctx context.Context) (managers, employees, endUsers int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	active := bson.M{"active": true}
	if managers, err = r.managers.CountDocuments(ctx, active); err != nil {
		return 0, 0, 0, fmt.Errorf("count managers: %w", err)
	}
	if employees, err = r.employees.CountDocuments(ctx, active); err != nil {
		return 0, 0, 0, fmt.Errorf("count employees: %w", err)
	}
	if endUsers, err = r.endUsers.CountDocuments(ctx, active); err != nil {
		return 0, 0, 0, fmt.Errorf("count end users: %w", err)
	}
	return managers, employees, endUsers, nil
}

// EnsureIndexes creates the unique indexes that arbitrate signup and
// roster races.
func (r *PrincipalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	usernameIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
	}

	if _, err := r.managers.Indexes().CreateOne(ctx, usernameIdx); err != nil {
		return fmt.Errorf("manager indexes: %w", err)
	}
	if _, err := r.employees.Indexes().CreateOne(ctx, usernameIdx); err != nil {
		return fmt.Errorf("employee indexes: %w", err)
	}
	_, err := r.endUsers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		usernameIdx,
		{Keys: bson.D{{Key: "wallet_address", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "national_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("end user indexes: %w", err)
	}
	return nil
}
