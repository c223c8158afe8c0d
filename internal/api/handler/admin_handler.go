package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/core/ports"
)

// AdminHandler serves the read-only admin projection.
type AdminHandler struct {
	stats ports.StatsService
}

func NewAdminHandler(stats ports.StatsService) *AdminHandler {
	return &AdminHandler{stats: stats}
}

// Stats returns request counts by status and active principal counts.
//
// @Summary      Admin overview statistics
// @Tags         admin
// @Produce      json
// @Success      200  {object}  ports.StatsOverview
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	overview, err := h.stats.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}
