package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection
func NewDB() (*DB, error) {
	// Get connection string from environment variable
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		// Try to build from individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "maps_review_scraper")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "maps_review_scraper")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=maps_review_scraper",
			host, port, user, password, dbname, sslmode)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema() error {
	// Try to create schema if it doesn't exist (but don't fail if we don't have permission)
	_, err := db.conn.Exec(`CREATE SCHEMA IF NOT EXISTS maps_review_scraper`)
	if err != nil {
		// If schema creation fails (e.g., permission denied), assume it already exists
		log.Printf("Note: Could not create schema (may already exist): %v\n", err)
	}

	// Set search path to use the existing schema
	_, err = db.conn.Exec(`SET search_path TO maps_review_scraper`)
	if err != nil {
		return fmt.Errorf("failed to set search path: %w", err)
	}

	// Create user_configs table
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_configs (
			user_id BIGINT PRIMARY KEY,
			max_businesses INTEGER NOT NULL DEFAULT 5,
			reviews_per_business INTEGER NOT NULL DEFAULT 20,
			min_stars DOUBLE PRECISION NOT NULL DEFAULT 0,
			min_text_length INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_configs table: %w", err)
	}

	// Create harvest_requests table
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS harvest_requests (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			telegram_message_id INTEGER NOT NULL,
			query TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'created',
			businesses_count INTEGER DEFAULT 0,
			reviews_count INTEGER DEFAULT 0,
			sheet_name VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_status CHECK (status IN ('created', 'in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create harvest_requests table: %w", err)
	}

	// Create harvested_reviews table
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS harvested_reviews (
			id SERIAL PRIMARY KEY,
			request_id INTEGER NOT NULL REFERENCES harvest_requests(id) ON DELETE CASCADE,
			business_name TEXT NOT NULL,
			stars VARCHAR(64) NOT NULL,
			full_text TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create harvested_reviews table: %w", err)
	}

	// Create indexes
	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_harvest_requests_status ON harvest_requests(status)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on harvest_requests.status: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_harvest_requests_user_id ON harvest_requests(user_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on harvest_requests.user_id: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_harvested_reviews_request_id ON harvested_reviews(request_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on harvested_reviews.request_id: %v\n", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// GetConn returns the underlying database connection
func (db *DB) GetConn() *sql.DB {
	return db.conn
}
