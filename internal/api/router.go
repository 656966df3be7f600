package api

import (
	"github.com/datallboy/gofetch/internal/api/controllers"
	"github.com/datallboy/gofetch/internal/app"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

func RegisterRoutes(e *echo.Echo, app *app.Context, intake controllers.Intake) {

	// Middleware: Request Logger. Paths only, queue bodies carry URLs.
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			app.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	queueCtrl := &controllers.QueueController{App: app, Intake: intake}
	historyCtrl := &controllers.HistoryController{App: app}

	e.POST("/api/queue", queueCtrl.Enqueue)
	e.GET("/api/queue", queueCtrl.Status)
	e.GET("/api/history", historyCtrl.List)
}
