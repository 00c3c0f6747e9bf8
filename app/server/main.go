package main

import (
	"os"
	_ "time/tzdata" // IANA zones for hosts without a system tz database

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/clockpro/backend/config"
	"github.com/clockpro/backend/internal/api/handlers"
	"github.com/clockpro/backend/internal/api/middleware"
	"github.com/clockpro/backend/internal/api/routes"
	"github.com/clockpro/backend/internal/cache"
	"github.com/clockpro/backend/internal/logger"
	"github.com/clockpro/backend/internal/providers/weather"
	"github.com/clockpro/backend/internal/realtime"
	mongorepo "github.com/clockpro/backend/internal/repositories/mongo"
	"github.com/clockpro/backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	log.Info("MongoDB connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	log.Info("Redis connected")

	db := config.MongoDatabase()
	sessionRepo := mongorepo.NewSessionRepo(db)
	userRepo := mongorepo.NewUserRepo(db)
	weatherRepo := mongorepo.NewWeatherRepo(db)

	hub := realtime.NewHub(log)
	redisCache := cache.NewRedisCache(config.RedisClient)

	authSvc := services.NewAuthService(userRepo)
	userSvc := services.NewUserService(userRepo, sessionRepo, hub)
	pomodoroSvc := services.NewPomodoroService(sessionRepo, userRepo, hub, log)
	weatherSvc := services.NewWeatherService(weather.NewOpenWeather(), weatherRepo, redisCache, log)
	clockSvc := services.NewClockService()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Auth:     handlers.NewAuthHandler(authSvc),
		User:     handlers.NewUserHandler(userSvc),
		Pomodoro: handlers.NewPomodoroHandler(pomodoroSvc),
		Weather:  handlers.NewWeatherHandler(weatherSvc),
		Clock:    handlers.NewClockHandler(clockSvc),
		WS:       handlers.NewWSHandler(hub),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
