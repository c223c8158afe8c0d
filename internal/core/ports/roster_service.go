package ports

import (
	"context"

	"github.com/landledger/property-transfer/internal/core/domain"
)

// RosterService manages the manager and employee rosters. Removal flips the
// active flag; rows are never hard-deleted.
type RosterService interface {
	ListManagers(ctx context.Context) ([]domain.Staff, error)
	AddManager(ctx context.Context, username, password string) (*domain.Staff, error)
	RemoveManager(ctx context.Context, id string) error

	ListEmployees(ctx context.Context) ([]domain.Staff, error)
	AddEmployee(ctx context.Context, username, password string) (*domain.Staff, error)
	RemoveEmployee(ctx context.Context, id string) error
}

// StatsOverview is the read-only admin projection.
type StatsOverview struct {
	Requests  map[domain.RequestStatus]int64 `json:"requests"`
	Managers  int64                          `json:"managers"`
	Employees int64                          `json:"employees"`
	EndUsers  int64                          `json:"end_users"`
}

// StatsService aggregates counters for the admin dashboard.
type StatsService interface {
	Overview(ctx context.Context) (*StatsOverview, error)
}
