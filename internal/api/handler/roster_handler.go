package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// RosterHandler exposes the manager and employee rosters.
type RosterHandler struct {
	roster ports.RosterService
}

func NewRosterHandler(roster ports.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

type addStaffRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type staffListResponse struct {
	Staff []domain.Staff `json:"staff"`
}

type staffResponse struct {
	Staff *domain.Staff `json:"staff"`
}

// ListManagers returns all active managers.
//
// @Summary      List managers
// @Tags         roster
// @Produce      json
// @Success      200  {object}  staffListResponse
// @Router       /managers [get]
func (h *RosterHandler) ListManagers(c echo.Context) error {
	return h.list(c, h.roster.ListManagers)
}

// AddManager creates a manager account.
//
// @Summary      Add a manager
// @Tags         roster
// @Accept       json
// @Produce      json
// @Param        body  body      addStaffRequest  true  "Manager credentials"
// @Success      201   {object}  staffResponse
// @Failure      409   {object}  map[string]string
// @Router       /managers [post]
func (h *RosterHandler) AddManager(c echo.Context) error {
	return h.add(c, h.roster.AddManager)
}

// RemoveManager soft-deletes a manager; the row stays for audit.
//
// @Summary      Remove a manager
// @Tags         roster
// @Produce      json
// @Param        id  path  string  true  "Manager id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /managers/{id} [delete]
func (h *RosterHandler) RemoveManager(c echo.Context) error {
	return h.remove(c, h.roster.RemoveManager, "Manager removed successfully")
}

// ListEmployees returns all active employees.
//
// @Summary      List employees
// @Tags         roster
// @Produce      json
// @Success      200  {object}  staffListResponse
// @Router       /employees [get]
func (h *RosterHandler) ListEmployees(c echo.Context) error {
	return h.list(c, h.roster.ListEmployees)
}

// AddEmployee creates an employee account.
//
// @Summary      Add an employee
// @Tags         roster
// @Accept       json
// @Produce      json
// @Param        body  body      addStaffRequest  true  "Employee credentials"
// @Success      201   {object}  staffResponse
// @Failure      409   {object}  map[string]string
// @Router       /employees [post]
func (h *RosterHandler) AddEmployee(c echo.Context) error {
	return h.add(c, h.roster.AddEmployee)
}

// RemoveEmployee soft-deletes an employee.
//
// @Summary      Remove an employee
// @Tags         roster
// @Produce      json
// @Param        id  path  string  true  "Employee id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id} [delete]
func (h *RosterHandler) RemoveEmployee(c echo.Context) error {
	return h.remove(c, h.roster.RemoveEmployee, "Employee removed successfully")
}

func (h *RosterHandler) list(c echo.Context, list func(ctx context.Context) ([]domain.Staff, error)) error {
	staff, err := list(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staffListResponse{Staff: staff})
}

func (h *RosterHandler) add(c echo.Context, add func(ctx context.Context, username, password string) (*domain.Staff, error)) error {
	var req addStaffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := add(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, staffResponse{Staff: created})
}

func (h *RosterHandler) remove(c echo.Context, remove func(ctx context.Context, id string) error, message string) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	if err := remove(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}
