package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/investment-engine/internal/config"
	"github.com/segyhp/investment-engine/internal/handler"
	"github.com/segyhp/investment-engine/internal/repository"
	"github.com/segyhp/investment-engine/internal/service"
	"github.com/segyhp/investment-engine/pkg/response"
)

func main() {
	// Load .env into the process environment when present; viper picks the
	// values up from there.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	planRepo := repository.NewPlanRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize service and handlers
	investmentService := service.NewInvestmentService(planRepo, investmentRepo, paymentRepo, redisClient, cfg)
	planHandler := handler.NewPlanHandler(investmentService)
	investmentHandler := handler.NewInvestmentHandler(investmentService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := setupRoutes(planHandler, investmentHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(planHandler *handler.PlanHandler, investmentHandler *handler.InvestmentHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/plans", planHandler.CreatePlan).Methods("POST")
	api.HandleFunc("/plans/{planId}", planHandler.GetPlan).Methods("GET")
	api.HandleFunc("/plans/{planId}/preview", planHandler.PreviewPlan).Methods("POST")

	api.HandleFunc("/investments", investmentHandler.CreateInvestment).Methods("POST")
	api.HandleFunc("/investments/{investmentId}", investmentHandler.GetInvestment).Methods("GET")
	api.HandleFunc("/investments/{investmentId}/schedule", investmentHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/investments/{investmentId}/payments", investmentHandler.ApplyPayment).Methods("POST")
	api.HandleFunc("/investments/{investmentId}/close", investmentHandler.CloseInvestment).Methods("POST")
	api.HandleFunc("/investments/{investmentId}/default", investmentHandler.MarkDefaulted).Methods("POST")

	api.HandleFunc("/investors/{investorId}/summary", investmentHandler.InvestorSummary).Methods("GET")

	return router
}
