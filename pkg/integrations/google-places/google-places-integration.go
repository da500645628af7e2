package googleplaces

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const IntegrationName = "google_places"

const DefaultBaseURL = "https://maps.googleapis.com"

const requestTimeout = 10 * time.Second

// ErrProvider wraps any Places response whose status is neither OK nor
// ZERO_RESULTS.
var ErrProvider = errors.New("places request failed")

type GooglePlacesIntegration struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGooglePlacesIntegration(apiKey string, baseURL string, logger *zap.Logger) *GooglePlacesIntegration {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &GooglePlacesIntegration{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}
