package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"maps-review-scraper/models"
)

// UserConfig represents user-specific configuration
type UserConfig struct {
	UserID             int64
	MaxBusinesses      int
	ReviewsPerBusiness int
	MinStars           float64
	MinTextLength      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HarvestRequest represents a review harvest request
type HarvestRequest struct {
	ID                int
	UserID            int64
	TelegramMessageID int
	Query             string
	Status            string // "created", "in_progress", "done", "failed"
	BusinessesCount   int
	ReviewsCount      int
	SheetName         sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Review represents a harvested review stored in database
type Review struct {
	ID           int
	RequestID    int
	BusinessName string
	Stars        string
	FullText     string
	CreatedAt    time.Time
}

// GetUserConfig retrieves user configuration, creating default if not exists
func (db *DB) GetUserConfig(userID int64) (*UserConfig, error) {
	var cfg UserConfig
	err := db.conn.QueryRow(`
		SELECT user_id, max_businesses, reviews_per_business, min_stars, min_text_length, created_at, updated_at
		FROM user_configs
		WHERE user_id = $1
	`, userID).Scan(
		&cfg.UserID, &cfg.MaxBusinesses, &cfg.ReviewsPerBusiness,
		&cfg.MinStars, &cfg.MinTextLength, &cfg.CreatedAt, &cfg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		// Create default config
		cfg = UserConfig{
			UserID:             userID,
			MaxBusinesses:      5,
			ReviewsPerBusiness: 20,
			MinStars:           0,
			MinTextLength:      0,
		}
		_, err = db.conn.Exec(`
			INSERT INTO user_configs (user_id, max_businesses, reviews_per_business, min_stars, min_text_length)
			VALUES ($1, $2, $3, $4, $5)
		`, cfg.UserID, cfg.MaxBusinesses, cfg.ReviewsPerBusiness, cfg.MinStars, cfg.MinTextLength)
		if err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// UpdateUserConfig updates user configuration
func (db *DB) UpdateUserConfig(userID int64, maxBusinesses *int, reviewsPerBusiness *int, minStars *float64, minTextLength *int) error {
	// Build dynamic update query
	updates := []string{}
	args := []interface{}{}
	argIndex := 1

	if maxBusinesses != nil {
		updates = append(updates, fmt.Sprintf("max_businesses = $%d", argIndex))
		args = append(args, *maxBusinesses)
		argIndex++
	}
	if reviewsPerBusiness != nil {
		updates = append(updates, fmt.Sprintf("reviews_per_business = $%d", argIndex))
		args = append(args, *reviewsPerBusiness)
		argIndex++
	}
	if minStars != nil {
		updates = append(updates, fmt.Sprintf("min_stars = $%d", argIndex))
		args = append(args, *minStars)
		argIndex++
	}
	if minTextLength != nil {
		updates = append(updates, fmt.Sprintf("min_text_length = $%d", argIndex))
		args = append(args, *minTextLength)
		argIndex++
	}

	if len(updates) == 0 {
		return nil // Nothing to update
	}

	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, userID)

	query := fmt.Sprintf(`
		UPDATE user_configs
		SET %s
		WHERE user_id = $%d
	`, strings.Join(updates, ", "), argIndex)

	_, err := db.conn.Exec(query, args...)
	return err
}

// CreateRequest creates a new harvest request
func (db *DB) CreateRequest(userID int64, telegramMessageID int, query string) (*HarvestRequest, error) {
	var req HarvestRequest
	var sheetName sql.NullString
	err := db.conn.QueryRow(`
		INSERT INTO harvest_requests (user_id, telegram_message_id, query, status)
		VALUES ($1, $2, $3, 'created')
		RETURNING id, user_id, telegram_message_id, query, status, businesses_count, reviews_count, sheet_name, created_at, updated_at
	`, userID, telegramMessageID, query).Scan(
		&req.ID, &req.UserID, &req.TelegramMessageID, &req.Query, &req.Status,
		&req.BusinessesCount, &req.ReviewsCount, &sheetName, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.SheetName = sheetName
	return &req, nil
}

// GetNextCreatedRequest gets the next request with status 'created'
func (db *DB) GetNextCreatedRequest() (*HarvestRequest, error) {
	var req HarvestRequest
	var sheetName sql.NullString
	err := db.conn.QueryRow(`
		SELECT id, user_id, telegram_message_id, query, status, businesses_count, reviews_count, sheet_name, created_at, updated_at
		FROM harvest_requests
		WHERE status = 'created'
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`).Scan(
		&req.ID, &req.UserID, &req.TelegramMessageID, &req.Query, &req.Status,
		&req.BusinessesCount, &req.ReviewsCount, &sheetName, &req.CreatedAt, &req.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	req.SheetName = sheetName
	return &req, nil
}

// GetRequestByID retrieves a request by ID
func (db *DB) GetRequestByID(requestID int) (*HarvestRequest, error) {
	var req HarvestRequest
	var sheetName sql.NullString
	err := db.conn.QueryRow(`
		SELECT id, user_id, telegram_message_id, query, status, businesses_count, reviews_count, sheet_name, created_at, updated_at
		FROM harvest_requests
		WHERE id = $1
	`, requestID).Scan(
		&req.ID, &req.UserID, &req.TelegramMessageID, &req.Query, &req.Status,
		&req.BusinessesCount, &req.ReviewsCount, &sheetName, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.SheetName = sheetName
	return &req, nil
}

// UpdateRequestStatus updates the status of a request
func (db *DB) UpdateRequestStatus(requestID int, status string) error {
	_, err := db.conn.Exec(`
		UPDATE harvest_requests
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, status, requestID)
	return err
}

// UpdateRequestCounts updates businesses and reviews count for a request
func (db *DB) UpdateRequestCounts(requestID int, businessesCount, reviewsCount int) error {
	_, err := db.conn.Exec(`
		UPDATE harvest_requests
		SET businesses_count = $1, reviews_count = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, businessesCount, reviewsCount, requestID)
	return err
}

// UpdateRequestSheetName updates the sheet name for a request
func (db *DB) UpdateRequestSheetName(requestID int, sheetName string) error {
	_, err := db.conn.Exec(`
		UPDATE harvest_requests
		SET sheet_name = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, sheetName, requestID)
	return err
}

// SaveReviews saves harvested reviews for a request in a single transaction
func (db *DB) SaveReviews(requestID int, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO harvested_reviews (request_id, business_name, stars, full_text)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, review := range reviews {
		_, err := stmt.Exec(requestID, review.BusinessName, review.Stars, review.Text)
		if err != nil {
			return fmt.Errorf("failed to insert review (requestID=%d, business=%q): %w", requestID, review.BusinessName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetReviewsByRequestID retrieves all reviews stored for a request
func (db *DB) GetReviewsByRequestID(requestID int) ([]Review, error) {
	rows, err := db.conn.Query(`
		SELECT id, request_id, business_name, stars, full_text, created_at
		FROM harvested_reviews
		WHERE request_id = $1
		ORDER BY id ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID, &review.RequestID, &review.BusinessName,
			&review.Stars, &review.FullText, &review.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}
