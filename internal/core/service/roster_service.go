package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// RosterService manages the manager and employee rosters.
type RosterService struct {
	staff ports.StaffRepository
	log   zerolog.Logger
}

func NewRosterService(staff ports.StaffRepository, log zerolog.Logger) *RosterService {
	return &RosterService{staff: staff, log: log}
}

func (s *RosterService) ListManagers(ctx context.Context) ([]domain.Staff, error) {
	return s.staff.ListManagers(ctx)
}

func (s *RosterService) AddManager(ctx context.Context, username, password string) (*domain.Staff, error) {
	return s.add(ctx, username, password, s.staff.CreateManager)
}

func (s *RosterService) RemoveManager(ctx context.Context, id string) error {
	if err := s.staff.DeactivateManager(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("manager_id", id).Msg("manager deactivated")
	return nil
}

func (s *RosterService) ListEmployees(ctx context.Context) ([]domain.Staff, error) {
	return s.staff.ListEmployees(ctx)
}

func (s *RosterService) AddEmployee(ctx context.Context, username, password string) (*domain.Staff, error) {
	return s.add(ctx, username, password, s.staff.CreateEmployee)
}

func (s *RosterService) RemoveEmployee(ctx context.Context, id string) error {
	if err := s.staff.DeactivateEmployee(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("employee_id", id).Msg("employee deactivated")
	return nil
}

func (s *RosterService) add(ctx context.Context, username, password string, create func(context.Context, *domain.Staff) (*domain.Staff, error)) (*domain.Staff, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return create(ctx, &domain.Staff{
		Username:     username,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// StatsService assembles the read-only admin overview.
type StatsService struct {
	requests ports.RequestRepository
	staff    ports.StaffRepository
}

func NewStatsService(requests ports.RequestRepository, staff ports.StaffRepository) *StatsService {
	return &StatsService{requests: requests, staff: staff}
}

func (s *StatsService) Overview(ctx context.Context) (*ports.StatsOverview, error) {
	byStatus, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	managers, employees, endUsers, err := s.staff.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &ports.StatsOverview{
		Requests:  byStatus,
		Managers:  managers,
		Employees: employees,
		EndUsers:  endUsers,
	}, nil
}
