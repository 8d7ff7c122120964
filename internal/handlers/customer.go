package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sallyfoods/orderdesk/internal/models"
	"github.com/sallyfoods/orderdesk/internal/mykafka"
	"github.com/sallyfoods/orderdesk/internal/store"
)

type CustomerHandler struct {
	Store    *store.CustomerStore
	Producer *mykafka.Producer
}

type customerForm struct {
	Name    string `validate:"required"`
	CusCode string `validate:"required"`
}

type customerListPage struct {
	Page
	Search    string
	Customers []models.Customer
}

type customerFormPage struct {
	Page
	Action  string
	Name    string
	CusCode string
}

func (h *CustomerHandler) List(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))
	customers, err := h.Store.List(c.Request().Context(), search)
	if err != nil {
		return renderServerError(c, err)
	}
	return c.Render(http.StatusOK, "customer_list", customerListPage{
		Page:      newPage(c, "Customers"),
		Search:    search,
		Customers: customers,
	})
}

func (h *CustomerHandler) New(c echo.Context) error {
	return c.Render(http.StatusOK, "customer_form", customerFormPage{
		Page:   newPage(c, "Add customer"),
		Action: "/customers",
	})
}

func (h *CustomerHandler) Create(c echo.Context) error {
	form := customerForm{
		Name:    strings.TrimSpace(c.FormValue("name")),
		CusCode: strings.TrimSpace(c.FormValue("cus_code")),
	}
	if err := validate.Struct(form); err != nil {
		page := customerFormPage{
			Page:    newPage(c, "Add customer"),
			Action:  "/customers",
			Name:    form.Name,
			CusCode: form.CusCode,
		}
		page.Error = "Name and customer code are both required."
		return c.Render(http.StatusBadRequest, "customer_form", page)
	}

	customer := models.Customer{Name: form.Name, CusCode: form.CusCode}
	if err := h.Store.Create(c.Request().Context(), &customer); err != nil {
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "customer_events", strconv.FormatUint(uint64(customer.ID), 10), map[string]any{
		"type":        "customer_created",
		"customer_id": customer.ID,
		"name":        customer.Name,
	})
	return c.Redirect(http.StatusSeeOther, "/customers?status=created")
}

func (h *CustomerHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Customer")
	}
	customer, err := h.Store.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Customer")
		}
		return renderServerError(c, err)
	}
	return c.Render(http.StatusOK, "customer_form", customerFormPage{
		Page:    newPage(c, fmt.Sprintf("Edit customer #%d", id)),
		Action:  fmt.Sprintf("/customers/%d", id),
		Name:    customer.Name,
		CusCode: customer.CusCode,
	})
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Customer")
	}
	form := customerForm{
		Name:    strings.TrimSpace(c.FormValue("name")),
		CusCode: strings.TrimSpace(c.FormValue("cus_code")),
	}
	if err := validate.Struct(form); err != nil {
		page := customerFormPage{
			Page:    newPage(c, fmt.Sprintf("Edit customer #%d", id)),
			Action:  fmt.Sprintf("/customers/%d", id),
			Name:    form.Name,
			CusCode: form.CusCode,
		}
		page.Error = "Name and customer code are both required."
		return c.Render(http.StatusBadRequest, "customer_form", page)
	}

	if err := h.Store.Update(c.Request().Context(), id, form.Name, form.CusCode); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Customer")
		}
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "customer_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":        "customer_updated",
		"customer_id": id,
	})
	return c.Redirect(http.StatusSeeOther, "/customers?status=updated")
}

// Delete only deactivates the customer; historical orders stay intact.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/customers?error=not_found")
	}
	if err := h.Store.SoftDelete(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/customers?error=not_found")
		}
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "customer_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":        "customer_deactivated",
		"customer_id": id,
	})
	return c.Redirect(http.StatusSeeOther, "/customers?status=deleted")
}
