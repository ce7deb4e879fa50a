package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Search limits accepted by the stops endpoint.
const (
	DefaultSearchLimit = 50
	MinSearchLimit     = 1
	MaxSearchLimit     = 400
	maxQueryLength     = 200
)

var (
	// Detect potentially dangerous characters, focused on injection patterns
	dangerousPattern = regexp.MustCompile(`[<>]|--|\/\*|\*\/|;.*--`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ParseStopID validates a stop id path segment. Stop ids are positive integers.
func ParseStopID(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("id cannot be empty")
	}
	if len(raw) > 18 {
		return 0, errors.New("id too long")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	if id < 1 {
		return 0, errors.New("id must be greater than 0")
	}
	return id, nil
}

// ParseLimit reads an optional limit parameter. An empty value yields def.
func ParseLimit(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if limit < lo || limit > hi {
		return 0, fmt.Errorf("limit must be between %d and %d", lo, hi)
	}
	return limit, nil
}

// ValidateQuery validates search query strings
func ValidateQuery(query string) error {
	// Empty queries are allowed
	if query == "" {
		return nil
	}

	if len(query) > maxQueryLength {
		return fmt.Errorf("query too long (max %d characters)", maxQueryLength)
	}

	if dangerousPattern.MatchString(query) {
		return errors.New("query contains invalid characters")
	}

	return nil
}

// SanitizeInput removes HTML tags and surrounding whitespace
func SanitizeInput(input string) string {
	sanitized := htmlTagPattern.ReplaceAllString(input, "")
	return strings.TrimSpace(sanitized)
}

// ValidateAndSanitizeQuery validates and sanitizes a search query
func ValidateAndSanitizeQuery(query string) (string, error) {
	if err := ValidateQuery(query); err != nil {
		return "", err
	}

	return SanitizeInput(query), nil
}
