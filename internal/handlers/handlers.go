package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/sallyfoods/orderdesk/internal/logging"
	"github.com/sallyfoods/orderdesk/internal/mykafka"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// Page carries the fields every template expects: the title plus the flash
// banners decoded from the redirect-after-write query string.
type Page struct {
	Title  string
	Status string
	Error  string
}

var flashText = map[string]string{
	"created":       "Created successfully.",
	"updated":       "Updated successfully.",
	"deleted":       "Deleted successfully.",
	"items_updated": "Line items updated successfully.",
	"in_use":        "This product is referenced by existing orders and cannot be deleted.",
	"not_found":     "The requested record no longer exists.",
}

func newPage(c echo.Context, title string) Page {
	p := Page{Title: title}
	if s := c.QueryParam("status"); s != "" {
		p.Status = flashText[s]
	}
	if e := c.QueryParam("error"); e != "" {
		if msg, ok := flashText[e]; ok {
			p.Error = msg
		} else {
			p.Error = "The operation failed."
		}
	}
	return p
}

type errorPage struct {
	Page
	Message string
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func renderNotFound(c echo.Context, what string) error {
	return c.Render(http.StatusNotFound, "error", errorPage{
		Page:    Page{Title: "Not found"},
		Message: what + " not found.",
	})
}

func renderServerError(c echo.Context, err error) error {
	logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
	return c.Render(http.StatusInternalServerError, "error", errorPage{
		Page:    Page{Title: "Something went wrong"},
		Message: "An internal error occurred. Please try again.",
	})
}

// publish sends an audit event without letting a broker hiccup fail the
// request: errors are logged and dropped.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", topic, "error", err)
	}
}
