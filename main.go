package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"maps-review-scraper/browser"
	"maps-review-scraper/config"
	"maps-review-scraper/db"
	"maps-review-scraper/filter"
	"maps-review-scraper/models"
	"maps-review-scraper/scheduler"
	"maps-review-scraper/scraper"
	"maps-review-scraper/sheets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// Parse command line arguments
	query := flag.String("query", "", "Search query, e.g. 'restaurants in Antwerp' (optional, if not provided, runs as Telegram bot)")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	maxBusinesses := flag.Int("businesses", 0, "Maximum number of businesses to process (overrides config)")
	reviewsPerBusiness := flag.Int("reviews", 0, "Reviews to collect per business (overrides config)")
	outPath := flag.String("out", "", "Path for JSON export of harvested reviews (optional)")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL (optional in CLI mode)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.Parse()

	// If a query is provided, run in CLI mode
	if *query != "" {
		runCLIMode(*query, *configPath, *maxBusinesses, *reviewsPerBusiness, *outPath, *spreadsheetURL, *credentialsPath)
		return
	}

	// Otherwise, run as Telegram bot
	runTelegramBot(*spreadsheetURL, *credentialsPath)
}

// runCLIMode harvests reviews for a single query and prints them grouped by
// business
func runCLIMode(query, configPath string, maxBusinesses, reviewsPerBusiness int, outPath, spreadsheetURL, credentialsPath string) {
	cfg := loadConfig(configPath)
	if maxBusinesses > 0 {
		cfg.Harvest.MaxBusinesses = maxBusinesses
	}
	if reviewsPerBusiness > 0 {
		cfg.Harvest.ReviewsPerBusiness = reviewsPerBusiness
	}

	filteredReviews, allReviews, err := harvestReviews(query, cfg)
	if err != nil {
		log.Fatalf("Harvest failed: %v\n", err)
	}

	// Display results to console
	summary := models.Summarize(filteredReviews)
	fmt.Printf("Found %d reviews before filtering\n", len(allReviews))
	fmt.Printf("Found %d reviews after filtering\n", len(filteredReviews))
	fmt.Printf("Businesses: %d, reviews with a rating: %d\n", summary.BusinessCount, summary.RatedCount)
	fmt.Println("---")

	if len(filteredReviews) == 0 {
		fmt.Println("No reviews match the filter criteria.")
		return
	}

	formatReviewsConsole(filteredReviews)

	if outPath != "" {
		if err := exportJSON(outPath, filteredReviews); err != nil {
			log.Printf("Warning: Failed to export reviews to %s: %v\n", outPath, err)
		} else {
			fmt.Printf("\nExported %d reviews to %s\n", len(filteredReviews), outPath)
		}
	}

	if spreadsheetURL == "" {
		return
	}

	// Write to Google Sheets
	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", spreadsheetURL)
		return
	}

	writer, err := sheets.NewWriter(spreadsheetID, credentialsPath)
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return
	}

	filterInfo := fmt.Sprintf("Min Stars: %.2f, Min Text Length: %d",
		cfg.Filters.MinStars, cfg.Filters.MinTextLength)

	sheetName := fmt.Sprintf("CLI_%s", time.Now().Format("20060102_150405"))

	_, _, err = writer.CreateSheetAndWriteReviews(sheetName, filteredReviews, query, filterInfo)
	if err != nil {
		log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
	} else {
		fmt.Printf("\nSuccessfully wrote %d reviews to Google Sheets\n", len(filteredReviews))
	}
}

// Allowed user IDs
var allowedUserIDs = map[int64]bool{
	420478432: true,
	425120436: true,
}

// handleCallbackQuery handles callback queries from inline keyboard buttons
func handleCallbackQuery(bot *tgbotapi.BotAPI, database *db.DB, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	data := callback.Data

	// Acknowledge callback
	bot.Send(tgbotapi.NewCallback(callback.ID, ""))

	if strings.HasPrefix(data, "config_") {
		configType := strings.TrimPrefix(data, "config_")
		handleConfigCallback(bot, database, chatID, userID, configType, callback.Message.MessageID)
	} else if strings.HasPrefix(data, "set_") {
		// Format: set_configType_value
		parts := strings.SplitN(data, "_", 3)
		if len(parts) == 3 {
			configType := parts[1]
			valueStr := parts[2]
			handleSetConfigValue(bot, database, chatID, userID, configType, valueStr, callback.Message.MessageID)
		}
	}
}

// configMenuKeyboard is the main configuration menu
func configMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 Max Businesses", "config_businesses"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Reviews per Business", "config_reviews"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Min Stars", "config_stars"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📏 Min Text Length", "config_textlen"),
		),
	)
}

func configMenuText(prefix string, userConfig *db.UserConfig) string {
	text := fmt.Sprintf(
		"⚙️ Current Configuration:\n\n"+
			"🏢 Max Businesses: %d\n"+
			"📝 Reviews per Business: %d\n"+
			"⭐ Min Stars: %.2f\n"+
			"📏 Min Text Length: %d\n\n"+
			"Click buttons below to change values:",
		userConfig.MaxBusinesses, userConfig.ReviewsPerBusiness,
		userConfig.MinStars, userConfig.MinTextLength)
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	return text
}

// handleConfigCallback shows options for changing a specific config value
func handleConfigCallback(bot *tgbotapi.BotAPI, database *db.DB, chatID int64, userID int64, configType string, messageID int) {
	userConfig, err := database.GetUserConfig(userID)
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Error loading config: %v", err)))
		return
	}

	var text string
	var keyboard tgbotapi.InlineKeyboardMarkup

	switch configType {
	case "businesses":
		text = fmt.Sprintf("🏢 Max Businesses\n\nCurrent: %d\n\nSelect new value:", userConfig.MaxBusinesses)
		keyboard = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("3", "set_businesses_3"),
				tgbotapi.NewInlineKeyboardButtonData("5", "set_businesses_5"),
				tgbotapi.NewInlineKeyboardButtonData("10", "set_businesses_10"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("15", "set_businesses_15"),
				tgbotapi.NewInlineKeyboardButtonData("20", "set_businesses_20"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "config_back"),
			),
		)
	case "reviews":
		text = fmt.Sprintf("📝 Reviews per Business\n\nCurrent: %d\n\nSelect new value:", userConfig.ReviewsPerBusiness)
		keyboard = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("5", "set_reviews_5"),
				tgbotapi.NewInlineKeyboardButtonData("10", "set_reviews_10"),
				tgbotapi.NewInlineKeyboardButtonData("20", "set_reviews_20"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("50", "set_reviews_50"),
				tgbotapi.NewInlineKeyboardButtonData("100", "set_reviews_100"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "config_back"),
			),
		)
	case "stars":
		text = fmt.Sprintf("⭐ Min Stars\n\nCurrent: %.2f\n\nSelect new value:", userConfig.MinStars)
		keyboard = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("0.0", "set_stars_0"),
				tgbotapi.NewInlineKeyboardButtonData("3.0", "set_stars_3"),
				tgbotapi.NewInlineKeyboardButtonData("4.0", "set_stars_4"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("4.5", "set_stars_4.5"),
				tgbotapi.NewInlineKeyboardButtonData("5.0", "set_stars_5"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "config_back"),
			),
		)
	case "textlen":
		text = fmt.Sprintf("📏 Min Text Length\n\nCurrent: %d\n\nSelect new value:", userConfig.MinTextLength)
		keyboard = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("0", "set_textlen_0"),
				tgbotapi.NewInlineKeyboardButtonData("20", "set_textlen_20"),
				tgbotapi.NewInlineKeyboardButtonData("50", "set_textlen_50"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("100", "set_textlen_100"),
				tgbotapi.NewInlineKeyboardButtonData("200", "set_textlen_200"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "config_back"),
			),
		)
	case "back":
		text = configMenuText("", userConfig)
		keyboard = configMenuKeyboard()
	default:
		return
	}

	// Edit the message with new keyboard
	editMsg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	editMsg.ReplyMarkup = &keyboard
	bot.Send(editMsg)
}

// handleSetConfigValue updates a config value and shows confirmation
func handleSetConfigValue(bot *tgbotapi.BotAPI, database *db.DB, chatID int64, userID int64, configType string, valueStr string, messageID int) {
	var err error
	var updateText string

	switch configType {
	case "businesses":
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid value: %s", valueStr)))
			return
		}
		err = database.UpdateUserConfig(userID, &value, nil, nil, nil)
		updateText = fmt.Sprintf("✅ Max Businesses updated to %d", value)
	case "reviews":
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid value: %s", valueStr)))
			return
		}
		err = database.UpdateUserConfig(userID, nil, &value, nil, nil)
		updateText = fmt.Sprintf("✅ Reviews per Business updated to %d", value)
	case "stars":
		var value float64
		if _, err := fmt.Sscanf(valueStr, "%f", &value); err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid value: %s", valueStr)))
			return
		}
		err = database.UpdateUserConfig(userID, nil, nil, &value, nil)
		updateText = fmt.Sprintf("✅ Min Stars updated to %.2f", value)
	case "textlen":
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Invalid value: %s", valueStr)))
			return
		}
		err = database.UpdateUserConfig(userID, nil, nil, nil, &value)
		updateText = fmt.Sprintf("✅ Min Text Length updated to %d", value)
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "Unknown config type"))
		return
	}

	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ Error updating config: %v", err)))
		return
	}

	// Show updated config
	userConfig, err := database.GetUserConfig(userID)
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, updateText))
		return
	}

	keyboard := configMenuKeyboard()
	editMsg := tgbotapi.NewEditMessageText(chatID, messageID, configMenuText(updateText, userConfig))
	editMsg.ReplyMarkup = &keyboard
	bot.Send(editMsg)
}

// runTelegramBot runs the review harvester as a Telegram bot
func runTelegramBot(spreadsheetURL, credentialsPath string) {
	// Refresh environment variables (Windows-specific)
	refreshEnvVars()

	// Get bot token from environment
	botToken := os.Getenv("MAPS_KEY_TG")
	if botToken == "" {
		log.Fatalf("Error: MAPS_KEY_TG environment variable is not set")
	}

	if spreadsheetURL == "" {
		spreadsheetURL = os.Getenv("MAPS_SPREADSHEET_URL")
	}
	if spreadsheetURL == "" {
		log.Fatalf("Error: no spreadsheet URL provided (use -spreadsheet or MAPS_SPREADSHEET_URL)")
	}

	// Initialize bot
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v\n", err)
	}

	log.Printf("Authorized on account %s\n", bot.Self.UserName)

	// Send startup notification to admin (only once)
	adminID := int64(420478432)
	startupMsg := tgbotapi.NewMessage(adminID, "🚀 Service started successfully!")
	_, err = bot.Send(startupMsg)
	if err != nil {
		log.Printf("Warning: Failed to send startup notification to admin: %v\n", err)
	} else {
		log.Printf("Startup notification sent to admin %d\n", adminID)
	}

	// Initialize database
	database, err := db.NewDB()
	if err != nil {
		log.Fatalf("Error: Failed to initialize database: %v\n", err)
	}
	defer database.Close()
	log.Println("Database initialized successfully")

	// Initialize Google Sheets writer
	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		log.Fatalf("Error: Could not extract spreadsheet ID from URL: %s\n", spreadsheetURL)
	}

	credsEnv := os.Getenv("GOOGLE_SHEETS_CREDENTIALS")
	if credentialsPath == "" && credsEnv == "" {
		log.Fatalf("Error: GOOGLE_SHEETS_CREDENTIALS environment variable is not set and no credentials file path provided")
	}
	if credentialsPath == "" && credsEnv != "" {
		log.Printf("Using GOOGLE_SHEETS_CREDENTIALS from environment variable (length: %d chars)\n", len(credsEnv))
	}

	writer, err := sheets.NewWriter(spreadsheetID, credentialsPath)
	if err != nil {
		log.Fatalf("Error: Failed to initialize Google Sheets writer: %v\n", err)
	}

	log.Printf("Google Sheets writer initialized for spreadsheet: %s\n", spreadsheetID)

	// Initialize and start scheduler (browser will be created on-demand)
	sched := scheduler.NewScheduler(database, bot, writer, spreadsheetURL)
	sched.Start()
	log.Println("Scheduler started (browser will be created on-demand for each request)")
	defer sched.Stop()

	// Start from latest update to skip old ones
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1

	updates := bot.GetUpdatesChan(updateConfig)

	for update := range updates {
		// Handle callback queries (button presses)
		if update.CallbackQuery != nil {
			userID := update.CallbackQuery.From.ID
			if !allowedUserIDs[userID] {
				log.Printf("Unauthorized user attempted to use callback: %d\n", userID)
				bot.Send(tgbotapi.NewCallback(update.CallbackQuery.ID, "Sorry, you are not authorized."))
				continue
			}

			if update.CallbackQuery.Message != nil {
				handleCallbackQuery(bot, database, update.CallbackQuery)
			}
			continue
		}

		if update.Message == nil {
			continue
		}

		userID := update.Message.From.ID

		if update.Message.IsCommand() {
			command := update.Message.Command()
			if command != "start" && !allowedUserIDs[userID] {
				log.Printf("Unauthorized user attempted to use command: %d\n", userID)
				msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Sorry, you are not authorized to use this bot.")
				bot.Send(msg)
				continue
			}

			switch command {
			case "start":
				if !allowedUserIDs[userID] {
					log.Printf("Unauthorized user attempted to use bot: %d\n", userID)
					msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Sorry, you are not authorized to use this bot.")
					bot.Send(msg)
					continue
				}

				// Initialize user config
				_, err := database.GetUserConfig(userID)
				if err != nil {
					log.Printf("Warning: Failed to initialize user config for user %d: %v\n", userID, err)
				} else {
					log.Printf("User config initialized for user %d\n", userID)
				}

				welcomeMsg := tgbotapi.NewMessage(update.Message.Chat.ID, "Welcome! Send me a search query like 'restaurants in Antwerp' and I'll collect Google Maps reviews for the top results. Results will be added to Google Sheets.")
				bot.Send(welcomeMsg)

				// Send spreadsheet link as separate message and pin it
				spreadsheetMsg := tgbotapi.NewMessage(update.Message.Chat.ID, fmt.Sprintf("📊 Spreadsheet: %s", spreadsheetURL))
				sentSpreadsheetMsg, err := bot.Send(spreadsheetMsg)
				if err == nil {
					pinMsg := tgbotapi.PinChatMessageConfig{
						ChatID:              update.Message.Chat.ID,
						MessageID:           sentSpreadsheetMsg.MessageID,
						DisableNotification: false,
					}
					bot.Send(pinMsg)
				}
			case "help":
				helpText := "Commands:\n/start - Start the bot\n/help - Show this help\n/config - Configure harvest settings\n\nJust send me a search query like 'coffee shops in Ghent' and I'll collect reviews! Results will be automatically added to Google Sheets."
				msg := tgbotapi.NewMessage(update.Message.Chat.ID, helpText)
				bot.Send(msg)
			case "config":
				userConfig, err := database.GetUserConfig(userID)
				if err != nil {
					msg := tgbotapi.NewMessage(update.Message.Chat.ID, fmt.Sprintf("Error loading config: %v", err))
					bot.Send(msg)
					continue
				}

				msg := tgbotapi.NewMessage(update.Message.Chat.ID, configMenuText("", userConfig))
				msg.ReplyMarkup = configMenuKeyboard()
				bot.Send(msg)
			case "clear":
				if err := writer.WriteReviews(nil, true); err != nil {
					msg := tgbotapi.NewMessage(update.Message.Chat.ID, fmt.Sprintf("Failed to clear spreadsheet: %v", err))
					bot.Send(msg)
				} else {
					msg := tgbotapi.NewMessage(update.Message.Chat.ID, "✅ Spreadsheet cleared successfully!")
					bot.Send(msg)
				}
			default:
				msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Unknown command. Use /help for available commands.")
				bot.Send(msg)
			}
			continue
		}

		// Check if user is allowed (for non-command messages)
		if !allowedUserIDs[userID] {
			log.Printf("Unauthorized user attempted to use bot: %d\n", userID)
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Sorry, you are not authorized to use this bot.")
			bot.Send(msg)
			continue
		}

		// Treat any other text as a search query
		query := strings.TrimSpace(update.Message.Text)
		if query == "" {
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Please send me a search query, e.g. 'restaurants in Antwerp'.")
			bot.Send(msg)
			continue
		}

		if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Please send a plain search query, not a URL, e.g. 'coffee shops in Ghent'.")
			bot.Send(msg)
			continue
		}

		// Send processing message
		processingMsg := tgbotapi.NewMessage(update.Message.Chat.ID, "📝 Request received! Your request has been queued and will be processed shortly. You'll receive status updates as the harvest progresses.")
		sentMsg, err := bot.Send(processingMsg)
		if err != nil {
			log.Printf("Error sending processing message: %v\n", err)
			continue
		}

		// Save request to database
		req, err := database.CreateRequest(userID, sentMsg.MessageID, query)
		if err != nil {
			log.Printf("Error creating request: %v\n", err)
			errorMsg := tgbotapi.NewEditMessageText(update.Message.Chat.ID, sentMsg.MessageID, fmt.Sprintf("❌ Error: Failed to create request: %v", err))
			bot.Send(errorMsg)
			continue
		}

		log.Printf("Created request ID %d for user %d\n", req.ID, userID)
	}
}

// refreshEnvVars refreshes environment variables (Windows-specific)
func refreshEnvVars() {
	// On Windows, PowerShell/CMD do not refresh env vars immediately, so
	// pull them from the system. On Linux/Unix they are already available.
	cmd := exec.Command("powershell", "-Command", "Get-ChildItem Env: | ForEach-Object { \"$($_.Name)=$($_.Value)\" }")
	output, err := cmd.Output()
	if err != nil {
		// Fallback to cmd (Windows)
		cmd = exec.Command("cmd", "/c", "set")
		output, err = cmd.Output()
		if err != nil {
			log.Printf("Note: Environment variable refresh skipped (likely running on Linux/Unix)\n")
			return
		}
	}

	lines := strings.Split(string(output), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 {
			key := line[:idx]
			value := line[idx+1:]
			value = strings.TrimRight(value, "\r")
			// Only set if not already set (preserve existing env vars from current process)
			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	}
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.HarvestConfig {
	var cfg *config.HarvestConfig
	if _, err := os.Stat(configPath); err == nil {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
			cfg = config.GetDefaultConfig()
		}
	} else {
		log.Println("Config file not found. Using default configuration.")
		cfg = config.GetDefaultConfig()
	}
	return cfg
}

// harvestReviews performs the harvesting and filtering logic
func harvestReviews(query string, cfg *config.HarvestConfig) ([]models.Review, []models.Review, error) {
	// Create browser (headless, for JS-rendered content)
	instance, err := browser.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create browser: %w", err)
	}
	defer func() {
		if err := instance.Close(); err != nil {
			log.Printf("Warning: Failed to close browser: %v\n", err)
		}
	}()

	page, err := instance.NewPage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer instance.ClosePage(page)

	harvester := scraper.ReviewHarvester(scraper.NewHarvester(page))
	allReviews, err := harvester.Harvest(query, cfg.Harvest.MaxBusinesses, cfg.Harvest.ReviewsPerBusiness)
	if err != nil {
		return nil, nil, fmt.Errorf("harvest failed: %w", err)
	}

	if len(allReviews) == 0 {
		return nil, nil, fmt.Errorf("no reviews found for query %q", query)
	}

	// Apply filters
	filterInstance := filter.NewFilter(cfg)
	filteredReviews := filterInstance.ApplyFilters(allReviews)

	return filteredReviews, allReviews, nil
}

// formatReviewsConsole prints reviews grouped by business
func formatReviewsConsole(reviews []models.Review) {
	for _, group := range models.GroupByBusiness(reviews) {
		fmt.Printf("\n%s\n", group.BusinessName)
		fmt.Println(strings.Repeat("=", len(group.BusinessName)))

		for i, review := range group.Reviews {
			fmt.Printf("\n%d. Rating: %s\n", i+1, review.Stars)
			fmt.Printf("   %s\n", review.Text)
		}
	}
}

// exportJSON writes reviews grouped by business to a JSON file
func exportJSON(path string, reviews []models.Review) error {
	grouped := models.GroupByBusiness(reviews)

	data, err := json.MarshalIndent(grouped, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
