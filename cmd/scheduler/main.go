package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/segyhp/investment-engine/internal/config"
	"github.com/segyhp/investment-engine/internal/repository"
	"github.com/segyhp/investment-engine/internal/service"
)

func main() {
	log.Println("Starting investment scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	planRepo := repository.NewPlanRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	investmentService := service.NewInvestmentService(planRepo, investmentRepo, paymentRepo, nil, cfg)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	setupCronJobs(c, cfg, investmentService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, investmentService *service.InvestmentService) {
	// Daily sweep that flips past-due pending schedule items to overdue.
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		log.Println("Running overdue sweep...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		count, err := investmentService.MarkOverdue(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("Overdue sweep failed: %v", err)
			return
		}
		log.Printf("Overdue sweep updated %d investments", count)
	})
	if err != nil {
		log.Fatalf("Error scheduling overdue sweep: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
