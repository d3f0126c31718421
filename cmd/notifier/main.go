package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/db"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/notify"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/order"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// The notifier is the only process holding the bot credential; the HTTP API
// never sees it.
func main() {
	log.Println("notifier starting...")
	var wg sync.WaitGroup

	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	botToken := getEnv("BOT_TOKEN", "")
	if botToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	adminChatID, err := strconv.ParseInt(getEnv("ADMIN_CHAT_ID", "0"), 10, 64)
	if err != nil {
		log.Fatalf("Invalid ADMIN_CHAT_ID: %v", err)
	}
	if adminChatID == 0 {
		log.Println("ADMIN_CHAT_ID not set, admin copies disabled")
	}

	dbPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid POSTGRES_PORT: %v", err)
	}

	creds := &db.Credentials{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("POSTGRES_USER", "postgres"),
		Password: getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:   getEnv("POSTGRES_DB", "chifir"),
	}

	conn, err := db.Connect(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	sender, err := notify.NewTelegramSender(botToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram sender: %v", err)
	}

	orderRepo := order.NewPostgresRepository(conn)
	dispatcher := notify.NewDispatcher(sender)
	consumer := notify.NewConsumer(orderRepo, dispatcher, adminChatID, kafkaBrokers)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(consumerCtx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down notifier...")
	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Consumer stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("Consumer didn't stop in time")
	}

	consumer.Close()
	log.Println("notifier stopped")
}
