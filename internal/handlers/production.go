package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sallyfoods/orderdesk/internal/store"
)

type ProductionHandler struct {
	Store *store.ProductionStore
}

type productionPage struct {
	Page
	Date string
	Rows []store.ProductionRow
}

// Daily renders the quantities to produce for everything shipping today.
func (h *ProductionHandler) Daily(c echo.Context) error {
	now := time.Now()
	rows, err := h.Store.Daily(c.Request().Context(), now)
	if err != nil {
		return renderServerError(c, err)
	}
	return c.Render(http.StatusOK, "production", productionPage{
		Page: newPage(c, "Daily production"),
		Date: now.Format(dateLayout),
		Rows: rows,
	})
}
