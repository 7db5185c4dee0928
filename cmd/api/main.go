package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/arvind-kp/sevaconnect_backend/internal/config"
	"github.com/arvind-kp/sevaconnect_backend/internal/db"
	"github.com/arvind-kp/sevaconnect_backend/internal/handlers"
	"github.com/arvind-kp/sevaconnect_backend/internal/middleware"
	"github.com/arvind-kp/sevaconnect_backend/internal/models"
	"github.com/arvind-kp/sevaconnect_backend/internal/realtime"
	"github.com/arvind-kp/sevaconnect_backend/internal/services/extraction"
	"github.com/arvind-kp/sevaconnect_backend/internal/services/geocode"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis unreachable: ", err)
	}

	hub := realtime.NewHub()
	go hub.Run()
	go realtime.SubscribeNotifications(context.Background(), rdb, hub)

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.ProviderProfile{},
		&models.Category{},
		&models.Service{},
		&models.Notification{},
	); err != nil {
		log.Fatal(err)
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Static("/uploads", cfg.UploadDir)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	catalogH := handlers.NewCatalogHandler(gdb)
	notifH := handlers.NewNotificationHandler(gdb, hub, rdb, cfg.JWTSecret)
	adminH := handlers.NewAdminProviderHandler(gdb)

	onboardH := &handlers.ProviderOnboardingHandler{
		DB:            gdb,
		Geo:           geocode.NewService(rdb),
		Extract:       extraction.NewService(),
		UploadDir:     cfg.UploadDir,
		PublicBaseURL: cfg.PublicBaseURL,
		SecretKey:     cfg.SecretKey,
		JWTSecret:     cfg.JWTSecret,
		ExpiresMin:    cfg.JWTExpiresMin,
		Notify:        notifH.Create,
	}

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/categories", catalogH.GetCategories)
	api.Get("/categories/:categoryId/services", catalogH.GetServices)

	// protected (JWT from cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", authH.Me)

	protected.Get("/notifications", notifH.List)
	protected.Patch("/notifications/read-all", notifH.MarkAllRead)
	protected.Patch("/notifications/:id/read", notifH.MarkRead)

	// the completion flow starts while the account is still a customer
	onb := protected.Group("/", middleware.RequireRoles("customer", "provider"))
	onboardH.Routes(onb)

	// admin only
	admin := protected.Group("/admin", middleware.RequireRoles("admin"))
	admin.Post("/categories", catalogH.CreateCategory)
	admin.Put("/categories/:id", catalogH.UpdateCategory)
	admin.Delete("/categories/:id", catalogH.DeleteCategory)
	admin.Post("/services", catalogH.CreateService)
	admin.Put("/services/:id", catalogH.UpdateService)
	admin.Delete("/services/:id", catalogH.DeleteService)
	admin.Get("/providers", adminH.ListProviders)
	admin.Get("/providers/:id", adminH.GetProvider)
	admin.Patch("/providers/:id/service-details", adminH.AssignServiceDetails)

	// WebSocket endpoint (no JWT middleware, auth via query param)
	app.Get("/ws/notifications", websocket.New(notifH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
