package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sallyfoods/orderdesk/internal/models"
	"github.com/sallyfoods/orderdesk/internal/mykafka"
	"github.com/sallyfoods/orderdesk/internal/store"
	"github.com/sallyfoods/orderdesk/internal/util"
)

type OrderHandler struct {
	Orders    *store.OrderStore
	Customers *store.CustomerStore
	Items     *store.ItemStore
	Producer  *mykafka.Producer
}

type orderForm struct {
	CustomerID   uint   `validate:"required,gt=0"`
	ShipmentDate string `validate:"required,datetime=2006-01-02"`
}

type lineField struct {
	ItemID   uint
	Quantity int
}

// blankLineCount is how many empty line rows the forms render on top of the
// existing ones; there is no client-side row machinery.
const blankLineCount = 5

type orderListPage struct {
	Page
	Search     string
	StartDate  string
	EndDate    string
	Rows       []store.OrderRow
	PageNum    int
	Total      int64
	TotalPages int64
	HasPrev    bool
	HasNext    bool
	PrevQuery  string
	NextQuery  string
}

type orderFormPage struct {
	Page
	Action       string
	Customers    []models.Customer
	Items        []models.Item
	CustomerID   uint
	ShipmentDate string
	Remarks      string
	ShowLines    bool
	Lines        []lineField
}

type orderDetailPage struct {
	Page
	Detail *store.OrderDetail
}

type orderItemsPage struct {
	Page
	Detail *store.OrderDetail
	Items  []models.Item
	Lines  []lineField
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	search := strings.TrimSpace(c.QueryParam("search"))
	startStr := strings.TrimSpace(c.QueryParam("start_date"))
	endStr := strings.TrimSpace(c.QueryParam("end_date"))
	if c.QueryParam("filter") == "today" {
		today := time.Now().Format(dateLayout)
		startStr, endStr = today, today
	}

	f := store.OrderFilter{CustomerSearch: search}
	if startStr != "" && endStr != "" {
		from, errFrom := time.ParseInLocation(dateLayout, startStr, time.Local)
		to, errTo := time.ParseInLocation(dateLayout, endStr, time.Local)
		if errFrom == nil && errTo == nil {
			f.DateFrom, f.DateTo = from, to
		}
	}

	pageNum := parseIntDefault(c.QueryParam("page"), 1)
	if pageNum < 1 {
		pageNum = 1
	}
	rows, total, err := h.Orders.List(ctx, f, pageNum, util.DefaultPageSize)
	if err != nil {
		return renderServerError(c, err)
	}

	totalPages := (total + util.DefaultPageSize - 1) / util.DefaultPageSize
	page := orderListPage{
		Page:       newPage(c, "Orders"),
		Search:     search,
		StartDate:  startStr,
		EndDate:    endStr,
		Rows:       rows,
		PageNum:    pageNum,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    pageNum > 1,
		HasNext:    int64(pageNum) < totalPages,
	}
	page.PrevQuery = listQuery(search, startStr, endStr, pageNum-1)
	page.NextQuery = listQuery(search, startStr, endStr, pageNum+1)
	return c.Render(http.StatusOK, "order_list", page)
}

func listQuery(search, start, end string, page int) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if start != "" {
		q.Set("start_date", start)
	}
	if end != "" {
		q.Set("end_date", end)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return q.Encode()
}

func (h *OrderHandler) newFormPage(c echo.Context, title, action string) (orderFormPage, error) {
	ctx := c.Request().Context()
	customers, err := h.Customers.List(ctx, "")
	if err != nil {
		return orderFormPage{}, err
	}
	items, err := h.Items.List(ctx, store.ItemFilter{})
	if err != nil {
		return orderFormPage{}, err
	}
	return orderFormPage{
		Page:      newPage(c, title),
		Action:    action,
		Customers: customers,
		Items:     items,
	}, nil
}

func (h *OrderHandler) New(c echo.Context) error {
	page, err := h.newFormPage(c, "Add order", "/orders")
	if err != nil {
		return renderServerError(c, err)
	}
	page.ShipmentDate = time.Now().Format(dateLayout)
	page.ShowLines = true
	page.Lines = padLines(nil)
	return c.Render(http.StatusOK, "order_form", page)
}

func (h *OrderHandler) Create(c echo.Context) error {
	form := orderForm{
		CustomerID:   uint(parseIntDefault(c.FormValue("customer_id"), 0)),
		ShipmentDate: strings.TrimSpace(c.FormValue("shipment_date")),
	}
	remarks := strings.TrimSpace(c.FormValue("remarks"))
	lines := parseLines(c)

	renderInvalid := func(msg string) error {
		page, err := h.newFormPage(c, "Add order", "/orders")
		if err != nil {
			return renderServerError(c, err)
		}
		page.CustomerID = form.CustomerID
		page.ShipmentDate = form.ShipmentDate
		page.Remarks = remarks
		page.ShowLines = true
		page.Lines = padLines(fieldsOf(lines))
		page.Error = msg
		return c.Render(http.StatusBadRequest, "order_form", page)
	}

	if err := validate.Struct(form); err != nil {
		return renderInvalid("Customer and shipment date are both required.")
	}
	shipDate, err := time.ParseInLocation(dateLayout, form.ShipmentDate, time.Local)
	if err != nil {
		return renderInvalid("Shipment date must be a valid date.")
	}

	order := models.Order{CustomerID: form.CustomerID, ShipmentDate: shipDate, Remarks: remarks}
	id, err := h.Orders.CreateOrder(c.Request().Context(), &order, lines)
	if err != nil {
		if errors.Is(err, store.ErrNoItems) {
			return renderInvalid("Enter a quantity above zero for at least one product.")
		}
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "order_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":        "order_created",
		"order_id":    id,
		"customer_id": order.CustomerID,
	})
	return c.Redirect(http.StatusSeeOther, "/orders?status=created")
}

func (h *OrderHandler) Detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Order")
	}
	detail, err := h.Orders.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Order")
		}
		return renderServerError(c, err)
	}
	return c.Render(http.StatusOK, "order_detail", orderDetailPage{
		Page:   newPage(c, fmt.Sprintf("Order #%d", id)),
		Detail: detail,
	})
}

func (h *OrderHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Order")
	}
	order, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Order")
		}
		return renderServerError(c, err)
	}
	page, err := h.newFormPage(c, fmt.Sprintf("Edit order #%d", id), fmt.Sprintf("/orders/%d", id))
	if err != nil {
		return renderServerError(c, err)
	}
	page.CustomerID = order.CustomerID
	page.ShipmentDate = order.ShipmentDate.Format(dateLayout)
	page.Remarks = order.Remarks
	return c.Render(http.StatusOK, "order_form", page)
}

// Update changes the order header only; line items are edited through the
// assignment page.
func (h *OrderHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Order")
	}
	form := orderForm{
		CustomerID:   uint(parseIntDefault(c.FormValue("customer_id"), 0)),
		ShipmentDate: strings.TrimSpace(c.FormValue("shipment_date")),
	}
	remarks := strings.TrimSpace(c.FormValue("remarks"))

	if err := validate.Struct(form); err != nil {
		page, perr := h.newFormPage(c, fmt.Sprintf("Edit order #%d", id), fmt.Sprintf("/orders/%d", id))
		if perr != nil {
			return renderServerError(c, perr)
		}
		page.CustomerID = form.CustomerID
		page.ShipmentDate = form.ShipmentDate
		page.Remarks = remarks
		page.Error = "Customer and shipment date are both required."
		return c.Render(http.StatusBadRequest, "order_form", page)
	}
	shipDate, err := time.ParseInLocation(dateLayout, form.ShipmentDate, time.Local)
	if err != nil {
		return renderNotFound(c, "Order")
	}

	if err := h.Orders.UpdateHeader(c.Request().Context(), id, form.CustomerID, shipDate, remarks); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Order")
		}
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "order_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":     "order_updated",
		"order_id": id,
	})
	return c.Redirect(http.StatusSeeOther, "/orders?status=updated")
}

func (h *OrderHandler) itemsPage(c echo.Context, id uint) (orderItemsPage, error) {
	ctx := c.Request().Context()
	detail, err := h.Orders.Detail(ctx, id)
	if err != nil {
		return orderItemsPage{}, err
	}
	items, err := h.Items.List(ctx, store.ItemFilter{})
	if err != nil {
		return orderItemsPage{}, err
	}

	lines := make([]lineField, 0, len(detail.Lines)+blankLineCount)
	for _, l := range detail.Lines {
		lines = append(lines, lineField{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return orderItemsPage{
		Page:   newPage(c, fmt.Sprintf("Assign products to order #%d", id)),
		Detail: detail,
		Items:  items,
		Lines:  padLines(lines),
	}, nil
}

func (h *OrderHandler) ItemsForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Order")
	}
	page, err := h.itemsPage(c, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return renderNotFound(c, "Order")
		}
		return renderServerError(c, err)
	}
	return c.Render(http.StatusOK, "order_items", page)
}

// ReplaceItems swaps the order's whole line set for the submitted one.
func (h *OrderHandler) ReplaceItems(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return renderNotFound(c, "Order")
	}
	lines := parseLines(c)

	if err := h.Orders.ReplaceItems(c.Request().Context(), id, lines); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return renderNotFound(c, "Order")
		case errors.Is(err, store.ErrNoItems):
			page, perr := h.itemsPage(c, id)
			if perr != nil {
				return renderServerError(c, perr)
			}
			page.Error = "Enter a quantity above zero for at least one product."
			return c.Render(http.StatusBadRequest, "order_items", page)
		default:
			return renderServerError(c, err)
		}
	}

	publish(c, h.Producer, "order_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":     "order_items_replaced",
		"order_id": id,
	})
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/orders/%d?status=items_updated", id))
}

func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/orders?error=not_found")
	}
	if err := h.Orders.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/orders?error=not_found")
		}
		return renderServerError(c, err)
	}

	publish(c, h.Producer, "order_events", strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":     "order_deleted",
		"order_id": id,
	})
	return c.Redirect(http.StatusSeeOther, "/orders?status=deleted")
}

// parseLines pairs the repeated item_id/quantity form fields by position.
// Unparseable values come through as zero and get filtered by the store.
func parseLines(c echo.Context) []store.LineInput {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	ids := params["item_id"]
	qtys := params["quantity"]

	lines := make([]store.LineInput, 0, len(ids))
	for i, raw := range ids {
		id, _ := strconv.ParseUint(raw, 10, 32)
		qty := 0
		if i < len(qtys) {
			qty, _ = strconv.Atoi(qtys[i])
		}
		lines = append(lines, store.LineInput{ItemID: uint(id), Quantity: qty})
	}
	return lines
}

func fieldsOf(lines []store.LineInput) []lineField {
	fields := make([]lineField, 0, len(lines))
	for _, l := range lines {
		fields = append(fields, lineField{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return fields
}

func padLines(fields []lineField) []lineField {
	padded := make([]lineField, 0, len(fields)+blankLineCount)
	padded = append(padded, fields...)
	for i := 0; i < blankLineCount; i++ {
		padded = append(padded, lineField{})
	}
	return padded
}
