package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/david3010/game_shop/internal/handlers"
	"github.com/david3010/game_shop/internal/middleware/auth"
)

type Deps struct {
	DB            *gorm.DB
	AuthMW        *auth.Middleware
	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	GameHandler   *handlers.GameHandler
	OrderHandler  *handlers.OrderHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.POST("/users/register", d.AuthHandler.Register)
	api.POST("/users/login", d.AuthHandler.Login)

	users := api.Group("/users", d.AuthMW.RequireLogin)
	users.GET("/:id", d.UserHandler.GetUser)
	users.PUT("/:id", d.UserHandler.UpdateUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)

	api.GET("/games", d.GameHandler.GetGames)
	api.GET("/games/search", d.SearchHandler.Search)
	api.GET("/games/:id", d.GameHandler.GetGame)

	api.POST("/games", d.GameHandler.CreateGame, d.AuthMW.AdminOnly)
	api.PUT("/games/:id", d.GameHandler.UpdateGame, d.AuthMW.AdminOnly)
	api.DELETE("/games/:id", d.GameHandler.DeleteGame, d.AuthMW.AdminOnly)

	orders := api.Group("/orders", d.AuthMW.RequireLogin)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/user/:id", d.OrderHandler.GetUserOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/:id", d.OrderHandler.UpdateOrder)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder)
}
