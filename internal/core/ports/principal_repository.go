package ports

import (
	"context"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// PrincipalRepository is the credential store behind the login cascade and
// signup. Username lookups are case-insensitive and match active rows only;
// deactivation is indistinguishable from non-existence to callers.
type PrincipalRepository interface {
	FindManagerByUsername(ctx context.Context, username string) (*domain.Staff, error)
	FindEmployeeByUsername(ctx context.Context, username string) (*domain.Staff, error)
	FindEndUserByUsername(ctx context.Context, username string) (*domain.EndUser, error)
	FindEndUserByWallet(ctx context.Context, address string) (*domain.EndUser, error)

	// FindEndUserConflict checks username, national id, and wallet address
	// in a single lookup and returns the first colliding field name, or ""
	// when all three are free. It is a friendliness pre-check only: the
	// storage unique indexes remain the final arbiter under races.
	FindEndUserConflict(ctx context.Context, username, nationalID, wallet string) (string, error)

	// CreateEndUser inserts a new end user. A uniqueness race lost at the
	// storage layer is mapped to *domain.DuplicateFieldError.
	CreateEndUser(ctx context.Context, u *domain.EndUser) (*domain.EndUser, error)
}

// StaffRepository backs the manager/employee rosters. Removal is a
// soft-delete: the active flag flips false and the row is kept for audit.
type StaffRepository interface {
	ListManagers(ctx context.Context) ([]domain.Staff, error)
	CreateManager(ctx context.Context, s *domain.Staff) (*domain.Staff, error)
	DeactivateManager(ctx context.Context, id string) error

	ListEmployees(ctx context.Context) ([]domain.Staff, error)
	CreateEmployee(ctx context.Context, s *domain.Staff) (*domain.Staff, error)
	DeactivateEmployee(ctx context.Context, id string) error

	CountActive(ctx context.Context) (managers, employees, endUsers int64, err error)
}
