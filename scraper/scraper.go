package scraper

import "maps-review-scraper/models"

// ReviewHarvester interface defines the contract for harvesting implementations
type ReviewHarvester interface {
	// Harvest scrapes review records for the businesses matching a search
	// query. maxBusinesses and reviewsPerBusiness bound the result size.
	Harvest(query string, maxBusinesses, reviewsPerBusiness int) ([]models.Review, error)
}
