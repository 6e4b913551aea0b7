package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kedai/internal/config"
	"kedai/internal/handlers"
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/internal/services"
	"kedai/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Repositories ---
	// With no DATABASE_URL the app runs on in-memory repositories, which is
	// enough for local development.
	var (
		productRepo repositories.ProductRepository
		userRepo    repositories.UserRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory repositories")
		memProducts := repositories.NewMockProductRepository()
		seedProducts(memProducts)
		productRepo = memProducts
		userRepo = repositories.NewMockUserRepository()
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer client.Close()
		mqClient = client
	} else {
		log.Println("RABBITMQ_URL not set, catalog events disabled")
	}

	// --- Services ---
	productService := services.NewProductService(productRepo, mqClient, cfg.PageSize)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpiry)

	// --- Handlers ---
	productHandler := handlers.NewProductHandler(productService)
	authHandler := handlers.NewAuthHandler(authService, cfg)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	// Catalog reads are public; writes require an admin token.
	productHandler.RegisterRoutes(apiV1,
		middleware.AuthRequired(authService),
		middleware.RequireRole(models.RoleAdmin),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Catalog event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for catalog events...")
			err := mqClient.ConsumeCatalogEvents(func(msg amqp.Delivery) error {
				log.Printf("Received catalog event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			})
			if err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	}

	// --- Start HTTP server with graceful shutdown ---
	log.Printf("Starting server on %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedProducts populates the in-memory repository with a couple of catalog
// items so dev mode has something to list.
func seedProducts(repo repositories.ProductRepository) {
	ten := 10.0
	featured := true
	products := []models.Product{
		{
			Title:       "Wireless Ergonomic Mouse",
			Price:       25.00,
			RatingCount: 12,
			AvgRate:     4.3,
			MainImgSRC:  "https://img.example.com/mouse.jpg",
			Description: "Ergonomic wireless mouse with silent clicks",
			Category:    "electronics",
			SubCategory: "accessories",
			IsFeatured:  &featured,
			Colors: []models.ProductColor{
				{Color: "black", Images: []string{"https://img.example.com/mouse-black.jpg"}, Quantity: 50},
			},
		},
		{
			Title:         "Mechanical Keyboard Pro",
			Price:         75.00,
			DiscountPrice: &ten,
			RatingCount:   4,
			AvgRate:       4.8,
			MainImgSRC:    "https://img.example.com/keyboard.jpg",
			Description:   "Hot-swappable mechanical keyboard",
			Category:      "electronics",
			SubCategory:   "accessories",
			Colors: []models.ProductColor{
				{Color: "white", Images: []string{"https://img.example.com/keyboard-white.jpg"}, Quantity: 25},
			},
		},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %q: %v", products[i].Title, err)
		} else {
			log.Printf("Seeded product: %s (id %d)", products[i].Title, products[i].ID)
		}
	}
}
