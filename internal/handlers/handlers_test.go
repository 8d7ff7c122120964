package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sallyfoods/orderdesk/internal/models"
	"github.com/sallyfoods/orderdesk/internal/view"
)

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Item{}, &models.Order{}, &models.OrderItem{}))

	renderer, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	return &testEnv{E: e, DB: db}
}

func (env *testEnv) get(target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return env.E.NewContext(req, rec), rec
}

func (env *testEnv) postForm(target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return env.E.NewContext(req, rec), rec
}

func withParamID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func (env *testEnv) seedCustomer(t *testing.T, name, code string) models.Customer {
	t.Helper()
	customer := models.Customer{Name: name, CusCode: code, IsActive: true}
	require.NoError(t, env.DB.Create(&customer).Error)
	return customer
}

func (env *testEnv) seedItem(t *testing.T, code, name, category string) models.Item {
	t.Helper()
	item := models.Item{ItemCode: code, ItemName: name, Category: category}
	require.NoError(t, env.DB.Create(&item).Error)
	return item
}

func (env *testEnv) seedOrder(t *testing.T, customerID uint, ship time.Time, lines ...models.OrderItem) models.Order {
	t.Helper()
	order := models.Order{CustomerID: customerID, ShipmentDate: ship}
	require.NoError(t, env.DB.Create(&order).Error)
	for i := range lines {
		lines[i].OrderID = order.ID
		require.NoError(t, env.DB.Create(&lines[i]).Error)
	}
	return order
}

func (env *testEnv) lineMap(t *testing.T, orderID uint) map[uint]int {
	t.Helper()
	var rows []models.OrderItem
	require.NoError(t, env.DB.Where("order_id = ?", orderID).Find(&rows).Error)
	m := make(map[uint]int, len(rows))
	for _, r := range rows {
		m[r.ItemID] = r.Quantity
	}
	return m
}
