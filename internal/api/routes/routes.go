package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/clockpro/backend/internal/api/handlers"
	"github.com/clockpro/backend/internal/api/middleware"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Pomodoro *handlers.PomodoroHandler
	Weather  *handlers.WeatherHandler
	Clock    *handlers.ClockHandler
	WS       *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public
	r.POST("/auth/register", d.Auth.Register)
	r.POST("/auth/login", d.Auth.Login)
	r.POST("/auth/guest", d.Auth.Guest)

	r.GET("/clock/time", d.Clock.Time)
	r.GET("/clock/time/:timezone", d.Clock.Time)
	r.POST("/clock/world-times", d.Clock.WorldTimes)
	r.GET("/clock/timezones", d.Clock.Timezones)
	r.POST("/clock/convert", d.Clock.Convert)

	r.GET("/weather/current/:lat/:lon", d.Weather.Current)
	r.GET("/weather/city/:cityName", d.Weather.ByCity)
	r.GET("/weather/forecast/:lat/:lon", d.Weather.Forecast)
	r.GET("/weather/search/:query", d.Weather.Search)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/auth/verify", d.Auth.Verify)
	auth.POST("/auth/refresh", d.Auth.Refresh)

	auth.GET("/user/profile", d.User.Profile)
	auth.PATCH("/user/settings", d.User.UpdateSettings)
	auth.GET("/user/stats", d.User.Stats)
	auth.POST("/user/world-clocks", d.User.UpdateWorldClocks)
	auth.DELETE("/user/account", d.User.DeleteAccount)

	auth.POST("/pomodoro/start", d.Pomodoro.Start)
	auth.POST("/pomodoro/complete", d.Pomodoro.Complete)
	auth.POST("/pomodoro/pause", d.Pomodoro.Pause)
	auth.POST("/pomodoro/stop", d.Pomodoro.Stop)
	auth.GET("/pomodoro/current", d.Pomodoro.Current)
	auth.GET("/pomodoro/history", d.Pomodoro.History)
	auth.GET("/pomodoro/analytics", d.Pomodoro.Analytics)

	// WebSocket
	auth.GET("/ws", d.WS.Connect)
}
