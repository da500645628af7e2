package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.openly.dev/pointy"
	"go.uber.org/zap"

	"droscher.com/DinnerGargoyle/pkg/model"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

type placeJSON struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	PriceLevel *int64   `json:"price_level"`
	Rating     *float64 `json:"rating"`
	Photos     []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

type searchJSON struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Results      []placeJSON `json:"results"`
}

type detailsJSON struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		URL    string `json:"url"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
}

// Details carries the fields the details lookup can backfill: the canonical
// maps URL and a fallback photo reference. Either may be absent.
type Details struct {
	MapsURL        *string
	PhotoReference *string
}

// FindNearby runs a Nearby Search around (lat, lng). A ZERO_RESULTS status
// is an empty result set, not an error; any status other than OK and
// ZERO_RESULTS wraps ErrProvider.
func (g *GooglePlacesIntegration) FindNearby(ctx context.Context, lat float64, lng float64, radiusMeters int) ([]model.Venue, error) {
	query := url.Values{}
	query.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	query.Set("radius", strconv.Itoa(radiusMeters))
	query.Set("type", "restaurant")
	query.Set("key", g.apiKey)

	g.logger.Info("searching nearby places", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Int("radius_meters", radiusMeters))

	var response searchJSON
	if err := g.getJSON(ctx, "/maps/api/place/nearbysearch/json", query, &response); err != nil {
		return nil, err
	}

	if response.Status == statusZeroResults {
		return []model.Venue{}, nil
	}

	if response.Status != statusOK {
		return nil, fmt.Errorf("%w: status %s: %s", ErrProvider, response.Status, response.ErrorMessage)
	}

	venues := make([]model.Venue, 0, len(response.Results))
	for _, place := range response.Results {
		venues = append(venues, venueFromPlace(place))
	}

	return venues, nil
}

// Details looks up the canonical maps URL and a fallback photo reference for
// one place. Callers use it only to backfill fields the search left absent.
func (g *GooglePlacesIntegration) Details(ctx context.Context, placeID string) (*Details, error) {
	query := url.Values{}
	query.Set("place_id", placeID)
	query.Set("fields", "url,photo")
	query.Set("key", g.apiKey)

	var response detailsJSON
	if err := g.getJSON(ctx, "/maps/api/place/details/json", query, &response); err != nil {
		return nil, err
	}

	if response.Status != statusOK && response.Status != statusZeroResults {
		return nil, fmt.Errorf("%w: status %s: %s", ErrProvider, response.Status, response.ErrorMessage)
	}

	details := Details{}
	if response.Result.URL != "" {
		details.MapsURL = pointy.String(response.Result.URL)
	}

	if len(response.Result.Photos) > 0 {
		details.PhotoReference = pointy.String(response.Result.Photos[0].PhotoReference)
	}

	return &details, nil
}

// Photo fetches raw image bytes for an opaque photo reference. The bytes and
// content type are handed straight through to the proxy endpoint.
func (g *GooglePlacesIntegration) Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error) {
	query := url.Values{}
	query.Set("photo_reference", photoReference)
	query.Set("maxwidth", strconv.Itoa(maxWidth))
	query.Set("key", g.apiKey)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/maps/api/place/photo?"+query.Encode(), nil)
	if err != nil {
		return nil, "", err
	}

	response, err := g.client.Do(request)
	if err != nil {
		return nil, "", err
	}
	defer response.Body.Close() //nolint:errcheck // nothing useful to do with a close error

	if response.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: photo fetch returned %d", ErrProvider, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, "", err
	}

	return body, response.Header.Get("Content-Type"), nil
}

func (g *GooglePlacesIntegration) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	response, err := g.client.Do(request)
	if err != nil {
		g.logger.Error("places request failed", zap.String("path", path), zap.Error(err))

		return fmt.Errorf("%w: %w", ErrProvider, err)
	}
	defer response.Body.Close() //nolint:errcheck // nothing useful to do with a close error

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrProvider, err)
	}

	return nil
}

func venueFromPlace(place placeJSON) model.Venue {
	venue := model.Venue{
		ID:         place.PlaceID,
		Name:       place.Name,
		PriceLevel: place.PriceLevel,
		Rating:     place.Rating,
		Latitude:   place.Geometry.Location.Lat,
		Longitude:  place.Geometry.Location.Lng,
	}

	if len(place.Photos) > 0 {
		venue.PhotoReference = pointy.String(place.Photos[0].PhotoReference)
	}

	return venue
}
