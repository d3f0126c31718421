package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/admin"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/cart"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/catalog"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/db"
	h "github.com/Shomirsaidov/chifir-food-ordering/internal/http"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/order"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/storage"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/telegram"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/user"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	MongoURI        string
	MongoDB         string
	KafkaBrokers    string
	BotToken        string
	AdminPIN        string
	DeliveryFee     int64
	InitDataMaxAge  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	DB              *db.Credentials
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid POSTGRES_PORT: %v", err)
	}

	deliveryFee, err := strconv.ParseInt(getEnv("DELIVERY_FEE", "5000"), 10, 64)
	if err != nil {
		log.Fatalf("Invalid DELIVERY_FEE: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "chifir"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", "localhost:9092"),
		BotToken:        getEnv("BOT_TOKEN", ""),
		AdminPIN:        getEnv("ADMIN_PIN", ""),
		DeliveryFee:     deliveryFee,
		InitDataMaxAge:  24 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DB: &db.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "chifir"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("server starting...")
	cfg := loadConfig()

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	// Postgres
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, cfg.DB.MigrationsDirPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Redis
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	pingCancel()

	// Mongo GridFS for menu images
	mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoDB, err := storage.ConnectMongo(mongoCtx, cfg.MongoURI, cfg.MongoDB)
	mongoCancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoDB.Client().Disconnect(ctx); err != nil {
			log.Printf("mongo disconnect failed: %v", err)
		}
	}()

	images, err := storage.NewGridFSStore(mongoDB)
	if err != nil {
		log.Fatalf("Failed to create image store: %v", err)
	}

	// Wiring
	userRepo := user.NewPostgresRepository(conn)
	catalogRepo := catalog.NewPostgresRepository(conn)
	menuCache := catalog.NewRedisMenuCache(redisClient)
	catalogSvc := catalog.NewService(catalogRepo, menuCache)

	cartStore := cart.NewRedisStore(redisClient)

	orderRepo := order.NewPostgresRepository(conn)
	publisher := order.NewKafkaPublisher(cfg.KafkaBrokers)
	defer publisher.Close()
	orderSvc := order.NewService(orderRepo, catalogSvc, publisher, cartStore, cfg.DeliveryFee)

	auth := admin.NewAuth(redisClient, userRepo, cfg.AdminPIN)
	validator := telegram.NewValidator(cfg.BotToken, cfg.InitDataMaxAge)

	menuHandler := h.NewMenuHandler(catalogSvc, images)
	cartHandler := h.NewCartHandler(cartStore, catalogSvc)
	checkoutHandler := h.NewCheckoutHandler(orderSvc, cartStore)
	ordersHandler := h.NewOrdersHandler(orderSvc)
	adminHandler := h.NewAdminHandler(auth, catalogSvc, orderSvc, userRepo, images)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/menu", menuHandler.GetMenu)
		r.Get("/menu/items/{item_id}", menuHandler.GetItem)
		r.Get("/images/{name}", menuHandler.GetImage)

		// Storefront routes require a signed Telegram initData header
		r.Group(func(r chi.Router) {
			r.Use(h.TelegramAuthMiddleware(validator, userRepo))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{item_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{item_id}", cartHandler.RemoveItem)
				r.Delete("/", cartHandler.ClearCart)
			})

			r.Post("/checkout", checkoutHandler.Checkout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListMyOrders)
				r.Get("/{order_id}", ordersHandler.GetMyOrder)
			})

			r.Post("/admin/login", adminHandler.Login)
		})

		// Admin panel routes require a live session token
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AdminAuthMiddleware(auth))

			r.Post("/logout", adminHandler.Logout)
			r.Get("/orders", adminHandler.ListOrders)
			r.Patch("/orders/{order_id}/status", adminHandler.UpdateOrderStatus)
			r.Get("/categories", adminHandler.ListCategories)
			r.Post("/categories", adminHandler.CreateCategory)
			r.Put("/categories/{category_id}", adminHandler.UpdateCategory)
			r.Delete("/categories/{category_id}", adminHandler.DeleteCategory)
			r.Get("/items", adminHandler.ListMenuItems)
			r.Post("/items", adminHandler.CreateMenuItem)
			r.Put("/items/{item_id}", adminHandler.UpdateMenuItem)
			r.Delete("/items/{item_id}", adminHandler.DeleteMenuItem)
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/images", adminHandler.UploadImage)
			r.Delete("/images/{name}", adminHandler.DeleteImage)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
