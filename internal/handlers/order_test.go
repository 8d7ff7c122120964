package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sallyfoods/orderdesk/internal/models"
	"github.com/sallyfoods/orderdesk/internal/mykafka"
	"github.com/sallyfoods/orderdesk/internal/store"
)

func newOrderHandler(env *testEnv) *OrderHandler {
	return &OrderHandler{
		Orders:    store.NewOrderStore(env.DB),
		Customers: store.NewCustomerStore(env.DB),
		Items:     store.NewItemStore(env.DB),
		Producer:  mykafka.NewProducer(nil),
	}
}

func TestOrderCreateFromForm(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")
	a := env.seedItem(t, "BRD-01", "Sourdough", "bread")
	b := env.seedItem(t, "BRD-02", "Baguette", "bread")
	x := env.seedItem(t, "CKE-01", "Egg tart", "pastry")

	c, rec := env.postForm("/orders", url.Values{
		"customer_id":   {fmt.Sprint(customer.ID)},
		"shipment_date": {time.Now().Format("2006-01-02")},
		"remarks":       {"leave at the back door"},
		"item_id":       {fmt.Sprint(a.ID), fmt.Sprint(b.ID), fmt.Sprint(x.ID)},
		"quantity":      {"3", "0", "-1"},
	})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders?status=created", rec.Header().Get("Location"))

	var order models.Order
	require.NoError(t, env.DB.First(&order).Error)
	assert.Equal(t, "leave at the back door", order.Remarks)
	assert.Equal(t, map[uint]int{a.ID: 3}, env.lineMap(t, order.ID))
}

func TestOrderCreateRejectsEmptyLineSet(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")
	a := env.seedItem(t, "BRD-01", "Sourdough", "bread")

	c, rec := env.postForm("/orders", url.Values{
		"customer_id":   {fmt.Sprint(customer.ID)},
		"shipment_date": {time.Now().Format("2006-01-02")},
		"item_id":       {fmt.Sprint(a.ID)},
		"quantity":      {"0"},
	})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity above zero")

	var count int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "no empty order may be left behind")
}

func TestOrderCreateRequiresCustomerAndDate(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	env.seedCustomer(t, "Wuhan Deli", "C001")

	c, rec := env.postForm("/orders", url.Values{
		"shipment_date": {""},
	})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")
}

func TestOrderReplaceItems(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")
	a := env.seedItem(t, "BRD-01", "Sourdough", "bread")
	b := env.seedItem(t, "BRD-02", "Baguette", "bread")
	order := env.seedOrder(t, customer.ID, time.Now(), models.OrderItem{ItemID: a.ID, Quantity: 3})

	c, rec := env.postForm(fmt.Sprintf("/orders/%d/items", order.ID), url.Values{
		"item_id":  {fmt.Sprint(b.ID)},
		"quantity": {"2"},
	})
	withParamID(c, fmt.Sprint(order.ID))
	require.NoError(t, h.ReplaceItems(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, fmt.Sprintf("/orders/%d?status=items_updated", order.ID), rec.Header().Get("Location"))
	assert.Equal(t, map[uint]int{b.ID: 2}, env.lineMap(t, order.ID))
}

func TestOrderReplaceItemsRejectsEmptySet(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")
	a := env.seedItem(t, "BRD-01", "Sourdough", "bread")
	order := env.seedOrder(t, customer.ID, time.Now(), models.OrderItem{ItemID: a.ID, Quantity: 3})

	c, rec := env.postForm(fmt.Sprintf("/orders/%d/items", order.ID), url.Values{
		"item_id":  {fmt.Sprint(a.ID)},
		"quantity": {"0"},
	})
	withParamID(c, fmt.Sprint(order.ID))
	require.NoError(t, h.ReplaceItems(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[uint]int{a.ID: 3}, env.lineMap(t, order.ID), "previous lines stay intact")
}

func TestOrderDetailUnknownIDRenders404(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)

	c, rec := env.get("/orders/42")
	withParamID(c, "42")
	require.NoError(t, h.Detail(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderDetailShowsLines(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")
	a := env.seedItem(t, "BRD-01", "Sourdough", "bread")
	order := env.seedOrder(t, customer.ID, time.Now(), models.OrderItem{ItemID: a.ID, Quantity: 3})

	c, rec := env.get(fmt.Sprintf("/orders/%d", order.ID))
	withParamID(c, fmt.Sprint(order.ID))
	require.NoError(t, h.Detail(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wuhan Deli")
	assert.Contains(t, rec.Body.String(), "Sourdough")
}

func TestOrderDeleteRemovesLines(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")
	a := env.seedItem(t, "BRD-01", "Sourdough", "bread")
	order := env.seedOrder(t, customer.ID, time.Now(), models.OrderItem{ItemID: a.ID, Quantity: 3})

	c, rec := env.postForm(fmt.Sprintf("/orders/%d/delete", order.ID), url.Values{})
	withParamID(c, fmt.Sprint(order.ID))
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	var orderCount, lineCount int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, env.DB.Model(&models.OrderItem{}).Count(&lineCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, lineCount)
}

func TestOrderListTodayFilter(t *testing.T) {
	env := newTestEnv(t)
	h := newOrderHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")
	env.seedOrder(t, customer.ID, time.Now())
	env.seedOrder(t, customer.ID, time.Now().AddDate(0, 0, -7))

	c, rec := env.get("/orders?filter=today")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "#1")
	assert.NotContains(t, body, "#2")
}
