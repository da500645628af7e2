package integrations

import (
	"context"

	"go.uber.org/zap"

	"droscher.com/DinnerGargoyle/configs"
	googleplaces "droscher.com/DinnerGargoyle/pkg/integrations/google-places"
	"droscher.com/DinnerGargoyle/pkg/model"
)

// Details is the subset of a place-details lookup the aggregator backfills
// from when the search response lacks a field.
type Details = googleplaces.Details

type VenueSource interface {
	FindNearby(ctx context.Context, lat float64, lng float64, radiusMeters int) ([]model.Venue, error)
	Details(ctx context.Context, placeID string) (*Details, error)
	Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error)
}

func GetIntegration(name string, conf *configs.Config, logger *zap.Logger) VenueSource {
	if name == googleplaces.IntegrationName {
		return googleplaces.NewGooglePlacesIntegration(conf.Google.APIKey, conf.Google.BaseURL, logger)
	}

	return nil
}
