package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"maps-review-scraper/browser"
	"maps-review-scraper/config"
	"maps-review-scraper/db"
	"maps-review-scraper/filter"
	"maps-review-scraper/models"
	"maps-review-scraper/scraper"
	"maps-review-scraper/sheets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Scheduler processes harvest requests from the database
type Scheduler struct {
	db             *db.DB
	bot            *tgbotapi.BotAPI
	writer         *sheets.Writer
	spreadsheetURL string
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewScheduler creates a new scheduler (browser will be created on-demand)
func NewScheduler(database *db.DB, bot *tgbotapi.BotAPI, writer *sheets.Writer, spreadsheetURL string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		db:             database,
		bot:            bot,
		writer:         writer,
		spreadsheetURL: spreadsheetURL,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cancel()
	log.Println("Scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	ticker := time.NewTicker(5 * time.Second) // Check every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.processNextRequest()
		}
	}
}

// processNextRequest processes the next request with status 'created'
func (s *Scheduler) processNextRequest() {
	req, err := s.db.GetNextCreatedRequest()
	if err != nil {
		log.Printf("Error getting next request: %v\n", err)
		return
	}

	if req == nil {
		// No requests to process
		return
	}

	log.Printf("Processing request ID %d for user %d\n", req.ID, req.UserID)

	// Update status to 'in_progress'
	if err := s.db.UpdateRequestStatus(req.ID, "in_progress"); err != nil {
		log.Printf("Error updating request status to in_progress: %v\n", err)
		return
	}

	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, "🔄 Processing request... Starting review harvest...")

	// Get user config
	userConfig, err := s.db.GetUserConfig(req.UserID)
	if err != nil {
		log.Printf("Error getting user config: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	cfg := config.GetDefaultConfig()
	cfg.Harvest.MaxBusinesses = userConfig.MaxBusinesses
	cfg.Harvest.ReviewsPerBusiness = userConfig.ReviewsPerBusiness
	cfg.Filters.MinStars = userConfig.MinStars
	cfg.Filters.MinTextLength = userConfig.MinTextLength

	// Create browser only when needed (on-demand)
	log.Printf("Initializing browser for request ID %d...\n", req.ID)
	instance, err := browser.New()
	if err != nil {
		log.Printf("Error creating browser: %v\n", err)
		s.handleRequestError(req, err)
		return
	}
	defer func() {
		log.Printf("Closing browser after request ID %d...\n", req.ID)
		if err := instance.Close(); err != nil {
			log.Printf("Warning: Failed to close browser: %v\n", err)
		} else {
			log.Printf("Browser closed successfully for request ID %d\n", req.ID)
		}
	}()

	page, err := instance.NewPage()
	if err != nil {
		log.Printf("Error creating page: %v\n", err)
		s.handleRequestError(req, err)
		return
	}
	defer instance.ClosePage(page)

	log.Printf("Using limits from user config: %d businesses, %d reviews each\n",
		cfg.Harvest.MaxBusinesses, cfg.Harvest.ReviewsPerBusiness)

	harvester := scraper.ReviewHarvester(scraper.NewHarvester(page))
	allReviews, err := harvester.Harvest(req.Query, cfg.Harvest.MaxBusinesses, cfg.Harvest.ReviewsPerBusiness)
	if err != nil {
		log.Printf("Error harvesting reviews: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	if len(allReviews) == 0 {
		err := fmt.Errorf("no reviews found for query %q", req.Query)
		log.Printf("Error: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	// Apply filters
	filterInstance := filter.NewFilter(cfg)
	filteredReviews := filterInstance.ApplyFilters(allReviews)

	// Save reviews to database
	if err := s.db.SaveReviews(req.ID, filteredReviews); err != nil {
		log.Printf("Warning: Failed to save reviews to database: %v\n", err)
	}

	businessCount := len(models.GroupByBusiness(filteredReviews))
	if err := s.db.UpdateRequestCounts(req.ID, businessCount, len(filteredReviews)); err != nil {
		log.Printf("Error updating request counts: %v\n", err)
	}

	// Create sheet name from request ID and timestamp
	sheetName := fmt.Sprintf("Request_%d_%s", req.ID, time.Now().Format("20060102_150405"))

	filterInfo := fmt.Sprintf("Min Stars: %.2f, Min Text Length: %d",
		cfg.Filters.MinStars, cfg.Filters.MinTextLength)

	// Write to Google Sheets (sheet will be inserted at the beginning)
	createdSheetName, sheetID, err := s.writer.CreateSheetAndWriteReviews(sheetName, filteredReviews, req.Query, filterInfo)
	if err != nil {
		log.Printf("Error writing to Google Sheets: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	if err := s.db.UpdateRequestSheetName(req.ID, createdSheetName); err != nil {
		log.Printf("Warning: Failed to update sheet name: %v\n", err)
	}

	// Update status to 'done'
	if err := s.db.UpdateRequestStatus(req.ID, "done"); err != nil {
		log.Printf("Error updating request status to done: %v\n", err)
		return
	}

	sheetURL := s.createSheetURL(sheetID)

	successMsg := fmt.Sprintf(
		"✅ Successfully harvested %d reviews from %d businesses!\n\n"+
			"Found %d reviews before filtering.\n\n"+
			"View spreadsheet: %s",
		len(filteredReviews), businessCount, len(allReviews), sheetURL)
	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, successMsg)
}

// handleRequestError handles errors during request processing
func (s *Scheduler) handleRequestError(req *db.HarvestRequest, err error) {
	if updateErr := s.db.UpdateRequestStatus(req.ID, "failed"); updateErr != nil {
		log.Printf("Error updating request status to failed: %v\n", updateErr)
	}

	errorMsg := fmt.Sprintf("❌ Error processing request: %v", err)
	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, errorMsg)
}

// createSheetURL creates a URL that opens a specific sheet in the spreadsheet
func (s *Scheduler) createSheetURL(sheetID int64) string {
	spreadsheetID := sheets.ExtractSpreadsheetID(s.spreadsheetURL)
	if spreadsheetID == "" {
		// Fallback to original URL if we can't extract ID
		return s.spreadsheetURL
	}

	// Format: https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit#gid=SHEET_ID
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}

// sendStatusUpdate sends a status update message to Telegram
func (s *Scheduler) sendStatusUpdate(messageID int, userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyToMessageID = messageID
	msg.ParseMode = "HTML"
	_, err := s.bot.Send(msg)
	if err != nil {
		log.Printf("Error sending status update: %v\n", err)
	}
}
