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

type ProductHandler struct {
	Store    *store.ItemStore
	Producer *mykafka.Producer
}

type productForm struct {
	ItemCode string `validate:"required"`
	ItemName string `validate:"required"`
	Category string `validate:"required"`
}

type productListPage struct {
	Page
	Search     string
	Category   string
	Categories []string
	Items      []models.Item
}

type productFormPage struct {
	Page
	Action     string
	ItemCode   string
	ItemName   string
	Category   string
	Categories []string
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	search := strings.TrimSpace(c.QueryParam("search"))
	category := strings.TrimSpace(c.QueryParam("category"))

	categories, err := h.Store.Categories(ctx)
	if err != nil {
		return renderServerError(c, err)
	}
	items, err := h.Store.List(ctx, store.ItemFilter{Search: search, Category: category})
	if err != nil {
		return renderServerError(c, err)
	}

	return c.Render(http.StatusOK, "product_list", productListPage{
		Page:       newPage(c, "Products"),
		Search:     search,
		Category:   category,
		Categories: categories,
		Items:      items,
	})
}

func (h *ProductHandler) newFormPage(c echo.Context, title, action string, form productForm) (productFormPage, error) {
	categories, err := h.Store.Categories(c.Request().Context())
	if err != nil {
		return productFormPage{}, err
	}
	return productFormPage{
		Page:       newPage(c, title),
		Action:     action,
		ItemCode:   form.ItemCode,
		ItemName:   form.ItemName,
		Category:   form.Category,
		Categories: categories,
	}, nil
}

func (h *ProductHandler) New(c echo.Context) error {
	page, err := h.newFormPage(c, "Add product", "/products", productForm{})
	if err != nil {
		return renderServerError(c, err)
	}
	return c.Render(http.StatusOK, "product_form", page)
}

func (h *ProductHandler) Create(c echo.Context) error {
	form := productForm{
		ItemCode: strings.TrimSpace(c.FormValue("item_code")),
		ItemName: strings.TrimSpace(c.FormValue("item_name")),
		Category: strings.TrimSpace(c.FormValue("category")),
	}
	if err := validate.Struct(form); err != nil {
		page, perr := h.newFormPage(c, "Add product", "/products", form)
		if perr != nil {
			return renderServerError(c, perr)
		}
		page.Error = "Item code, item name and category are all required."
		return c.Render(http.StatusBadRequest, "product_form", page)
	}

	item := models.Item{ItemCode: form.ItemCode, ItemName: form.ItemName, Category: form.Category}
	if err := h.Store.Create(c.Request().Context(), &item); err != nil {
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "product_events", strconv.FormatUint(uint64(item.ID), 10), map[string]any{
		"type":      "product_created",
		"item_id":   item.ID,
		"item_code": item.ItemCode,
	})
	return c.Redirect(http.StatusSeeOther, "/products?status=created")
}

func (h *ProductHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Product")
	}
	item, err := h.Store.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Product")
		}
		return renderServerError(c, err)
	}
	page, err := h.newFormPage(c, fmt.Sprintf("Edit product #%d", id), fmt.Sprintf("/products/%d", id), productForm{
		ItemCode: item.ItemCode,
		ItemName: item.ItemName,
		Category: item.Category,
	})
	if err != nil {
		return renderServerError(c, err)
	}
	return c.Render(http.StatusOK, "product_form", page)
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Product")
	}
	form := productForm{
		ItemCode: strings.TrimSpace(c.FormValue("item_code")),
		ItemName: strings.TrimSpace(c.FormValue("item_name")),
		Category: strings.TrimSpace(c.FormValue("category")),
	}
	if err := validate.Struct(form); err != nil {
		page, perr := h.newFormPage(c, fmt.Sprintf("Edit product #%d", id), fmt.Sprintf("/products/%d", id), form)
		if perr != nil {
			return renderServerError(c, perr)
		}
		page.Error = "Item code, item name and category are all required."
		return c.Render(http.StatusBadRequest, "product_form", page)
	}

	if err := h.Store.Update(c.Request().Context(), id, form.ItemCode, form.ItemName, form.Category); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Product")
		}
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "product_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":    "product_updated",
		"item_id": id,
	})
	return c.Redirect(http.StatusSeeOther, "/products?status=updated")
}

// Delete hard-deletes a product. Products referenced by any order are
// refused, mirroring the FK constraint on order_items.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/products?error=not_found")
	}
	if err := h.Store.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrItemInUse):
			return c.Redirect(http.StatusSeeOther, "/products?error=in_use")
		case errors.Is(err, store.ErrNotFound):
			return c.Redirect(http.StatusSeeOther, "/products?error=not_found")
		default:
			return renderServerError(c, err)
		}
	}

	publish(c, h.Producer, "product_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":    "product_deleted",
		"item_id": id,
	})
	return c.Redirect(http.StatusSeeOther, "/products?status=deleted")
}
