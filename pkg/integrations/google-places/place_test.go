package googleplaces_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	googleplaces "droscher.com/DinnerGargoyle/pkg/integrations/google-places"
)

type PlaceTestSuite struct {
	suite.Suite
}

func TestPlaceTestSuite(t *testing.T) {
	suite.Run(t, new(PlaceTestSuite))
}

func (suite *PlaceTestSuite) newIntegration(handler http.HandlerFunc) (*googleplaces.GooglePlacesIntegration, *httptest.Server) {
	server := httptest.NewServer(handler)
	suite.T().Cleanup(server.Close)

	return googleplaces.NewGooglePlacesIntegration("test-key", server.URL, zaptest.NewLogger(suite.T())), server
}

const searchResponse = `{
	"status": "OK",
	"results": [
		{
			"place_id": "place-1",
			"name": "Taqueria",
			"geometry": {"location": {"lat": 40.7596, "lng": -111.8867}},
			"price_level": 2,
			"rating": 4.5,
			"photos": [{"photo_reference": "photo-1"}]
		},
		{
			"place_id": "place-2",
			"name": "Noodle Bar",
			"geometry": {"location": {"lat": 40.7611, "lng": -111.8844}}
		}
	]
}`

func (suite *PlaceTestSuite) TestFindNearby_MapsResults() {
	integration, _ := suite.newIntegration(func(writer http.ResponseWriter, request *http.Request) {
		suite.Equal("/maps/api/place/nearbysearch/json", request.URL.Path)
		suite.Equal("test-key", request.URL.Query().Get("key"))
		suite.Equal("1500", request.URL.Query().Get("radius"))
		suite.Equal("restaurant", request.URL.Query().Get("type"))

		_, _ = writer.Write([]byte(searchResponse))
	})

	venues, err := integration.FindNearby(context.Background(), 40.7596, -111.8867, 1500)

	suite.Require().NoError(err)
	suite.Require().Len(venues, 2)

	suite.Equal("place-1", venues[0].ID)
	suite.Equal("Taqueria", venues[0].Name)
	suite.Equal(int64(2), *venues[0].PriceLevel)
	suite.Equal(4.5, *venues[0].Rating)
	suite.Equal(40.7596, venues[0].Latitude)
	suite.Equal("photo-1", *venues[0].PhotoReference)

	suite.Equal("place-2", venues[1].ID)
	suite.Nil(venues[1].PriceLevel)
	suite.Nil(venues[1].Rating)
	suite.Nil(venues[1].PhotoReference)
}

func (suite *PlaceTestSuite) TestFindNearby_ZeroResultsIsEmptyNotError() {
	integration, _ := suite.newIntegration(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	venues, err := integration.FindNearby(context.Background(), 40.7596, -111.8867, 1500)

	suite.Require().NoError(err)
	suite.Empty(venues)
}

func (suite *PlaceTestSuite) TestFindNearby_NonOKStatusIsProviderError() {
	integration, _ := suite.newIntegration(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	})

	venues, err := integration.FindNearby(context.Background(), 40.7596, -111.8867, 1500)

	suite.Nil(venues)
	suite.Require().ErrorIs(err, googleplaces.ErrProvider)
	suite.ErrorContains(err, "REQUEST_DENIED")
}

func (suite *PlaceTestSuite) TestDetails_MapsOptionalFields() {
	integration, _ := suite.newIntegration(func(writer http.ResponseWriter, request *http.Request) {
		suite.Equal("/maps/api/place/details/json", request.URL.Path)
		suite.Equal("place-1", request.URL.Query().Get("place_id"))

		_, _ = writer.Write([]byte(`{
			"status": "OK",
			"result": {"url": "https://maps.example/place-1", "photos": [{"photo_reference": "photo-detail"}]}
		}`))
	})

	details, err := integration.Details(context.Background(), "place-1")

	suite.Require().NoError(err)
	suite.Equal("https://maps.example/place-1", *details.MapsURL)
	suite.Equal("photo-detail", *details.PhotoReference)
}

func (suite *PlaceTestSuite) TestDetails_AbsentFieldsStayNil() {
	integration, _ := suite.newIntegration(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(`{"status": "OK", "result": {}}`))
	})

	details, err := integration.Details(context.Background(), "place-1")

	suite.Require().NoError(err)
	suite.Nil(details.MapsURL)
	suite.Nil(details.PhotoReference)
}

func (suite *PlaceTestSuite) TestPhoto_ReturnsBytesAndContentType() {
	integration, _ := suite.newIntegration(func(writer http.ResponseWriter, request *http.Request) {
		suite.Equal("/maps/api/place/photo", request.URL.Path)
		suite.Equal("photo-1", request.URL.Query().Get("photo_reference"))

		writer.Header().Set("Content-Type", "image/jpeg")
		_, _ = writer.Write([]byte("jpeg-bytes"))
	})

	body, contentType, err := integration.Photo(context.Background(), "photo-1", 800)

	suite.Require().NoError(err)
	suite.Equal("image/jpeg", contentType)
	suite.Equal([]byte("jpeg-bytes"), body)
}

func (suite *PlaceTestSuite) TestPhoto_Non200IsProviderError() {
	integration, _ := suite.newIntegration(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
	})

	_, _, err := integration.Photo(context.Background(), "photo-1", 800)

	suite.ErrorIs(err, googleplaces.ErrProvider)
}
