package main

import (
	"log"
	"os"

	"lumina-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.ParseLogLevel(os.Getenv("DB_LOG_LEVEL")))
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running migrations for users, notes and auth_tokens...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	log.Println("Success: database migration completed.")
}
