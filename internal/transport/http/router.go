package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sallyfoods/orderdesk/internal/handlers"
)

type Deps struct {
	DB                *gorm.DB
	CustomerHandler   *handlers.CustomerHandler
	ProductHandler    *handlers.ProductHandler
	OrderHandler      *handlers.OrderHandler
	ProductionHandler *handlers.ProductionHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.GET("/", d.ProductionHandler.Daily)

	customers := e.Group("/customers")
	customers.GET("", d.CustomerHandler.List)
	customers.GET("/new", d.CustomerHandler.New)
	customers.POST("", d.CustomerHandler.Create)
	customers.GET("/:id/edit", d.CustomerHandler.Edit)
	customers.POST("/:id", d.CustomerHandler.Update)
	customers.POST("/:id/delete", d.CustomerHandler.Delete)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.List)
	products.GET("/new", d.ProductHandler.New)
	products.POST("", d.ProductHandler.Create)
	products.GET("/:id/edit", d.ProductHandler.Edit)
	products.POST("/:id", d.ProductHandler.Update)
	products.POST("/:id/delete", d.ProductHandler.Delete)

	orders := e.Group("/orders")
	orders.GET("", d.OrderHandler.List)
	orders.GET("/new", d.OrderHandler.New)
	orders.POST("", d.OrderHandler.Create)
	orders.GET("/:id", d.OrderHandler.Detail)
	orders.GET("/:id/edit", d.OrderHandler.Edit)
	orders.POST("/:id", d.OrderHandler.Update)
	orders.GET("/:id/items", d.OrderHandler.ItemsForm)
	orders.POST("/:id/items", d.OrderHandler.ReplaceItems)
	orders.POST("/:id/delete", d.OrderHandler.Delete)
}
