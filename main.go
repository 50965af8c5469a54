package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/assyifaul/portfolio-backend/api"
	"github.com/assyifaul/portfolio-backend/auth"
	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/models"
	"github.com/assyifaul/portfolio-backend/services"
	"github.com/assyifaul/portfolio-backend/storage"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		getEnv("SUPABASE_DB_HOST", ""),
		getEnv("SUPABASE_DB_USER", ""),
		getEnv("SUPABASE_DB_PASSWORD", ""),
		getEnv("SUPABASE_DB_NAME", ""),
		getEnv("SUPABASE_DB_PORT", "5432"),
	)
	fmt.Println("Connecting to Supabase database...")

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// Enable required PostgreSQL extensions
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		fmt.Printf("Error enabling uuid-ossp extension: %v\n", err)
		os.Exit(1)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Printf("Error testing database connection: %v\n", err)
		os.Exit(1)
	}

	// Route reads through a replica when one is configured; the public
	// catalog listing is by far the hottest query
	if replicaDSN := getEnv("SUPABASE_DB_REPLICA_DSN", ""); replicaDSN != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(replicaDSN)},
		}))
		if err != nil {
			fmt.Printf("Error registering read replica: %v\n", err)
			os.Exit(1)
		}
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.DownloadRequest{},
		&models.Follow{},
	); err != nil {
		fmt.Printf("Error migrating database schema: %v\n", err)
		os.Exit(1)
	}

	currentDB := database.New(db)

	// If generating models, run generation and exit
	if getEnv("GENERATE_MODELS", "") == "true" {
		fmt.Println("Generating models and query helpers...")
		models.GenerateModels(db)
		return
	}

	deps, err := buildDeps()
	if err != nil {
		fmt.Printf("Error initializing dependencies: %v\n", err)
		os.Exit(1)
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, deps)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// buildDeps wires the external collaborators. The object store and token
// secret are required; chat, github and SMS notifications are optional and
// simply disable their routes when unconfigured.
func buildDeps() (api.Deps, error) {
	ctx := context.Background()

	archive, err := storage.NewS3Store(ctx, storage.Config{
		Bucket:   getEnv("S3_BUCKET", "project-files"),
		Region:   getEnv("S3_REGION", "us-east-1"),
		Endpoint: getEnv("S3_ENDPOINT", ""),
	})
	if err != nil {
		return api.Deps{}, fmt.Errorf("init object store: %w", err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return api.Deps{}, fmt.Errorf("JWT_SECRET is not set")
	}

	deps := api.Deps{
		Archive: archive,
		Tokens:  auth.NewTokenIssuer(secret, 24*time.Hour),
		Google: auth.NewGoogleProvider(
			getEnv("GOOGLE_CLIENT_ID", ""),
			getEnv("GOOGLE_CLIENT_SECRET", ""),
			getEnv("GOOGLE_REDIRECT_URL", ""),
		),
	}

	if chat, err := services.NewChatService(); err != nil {
		fmt.Printf("Chat disabled: %v\n", err)
	} else {
		deps.Chat = chat
	}

	if github, err := services.NewGithubService(); err != nil {
		fmt.Printf("GitHub contributions disabled: %v\n", err)
	} else {
		deps.Github = github
	}

	if notifier, err := services.NewSmsNotifier(); err != nil {
		fmt.Printf("SMS notifications disabled: %v\n", err)
	} else {
		deps.Notifier = notifier
	}

	return deps, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

// getEnv returns the value of the environment variable key or a fallback value.
func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
