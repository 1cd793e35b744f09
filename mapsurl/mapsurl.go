package mapsurl

import (
	"net/url"
	"strings"
)

// BaseURL is the Maps search endpoint the harvester starts from
const BaseURL = "https://www.google.com/maps/search/"

// SearchURL builds the search-results URL for a free-text query.
// Runs of whitespace are coalesced into single '+' separators, matching the
// path-segment form Maps expects.
func SearchURL(query string) string {
	return BaseURL + strings.Join(strings.Fields(query), "+")
}

// IsDetailURL reports whether a URL looks like a business detail view rather
// than the search results. Detail URLs carry a "place" path segment or an
// "@lat,lng" viewport marker.
func IsDetailURL(raw string) bool {
	return strings.Contains(raw, "place") || strings.Contains(raw, "@")
}

// ExtractPlaceName pulls the human-readable place segment out of a detail
// URL, e.g. ".../maps/place/Some+Ramen+Shop/@37.7,-122.4,17z" yields
// "Some Ramen Shop". Returns "" if the URL has no place segment.
func ExtractPlaceName(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	segments := strings.Split(parsed.Path, "/")
	for i, segment := range segments {
		if segment != "place" || i+1 >= len(segments) {
			continue
		}

		name := segments[i+1]
		name = strings.ReplaceAll(name, "+", " ")
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}
		return strings.TrimSpace(name)
	}

	return ""
}
