// Package server is the thin HTTP plumbing over the dinner core: request
// parsing, the filter laxness rule, and response shaping. No aggregation or
// membership logic lives here.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.openly.dev/pointy"
	"go.uber.org/zap"

	"droscher.com/DinnerGargoyle/pkg/auth"
	"droscher.com/DinnerGargoyle/pkg/dinner"
)

const photoMaxWidth = 800

type aggregator interface {
	NearbyRestaurants(ctx context.Context, userID string) ([]dinner.Restaurant, error)
}

type attendanceService interface {
	Apply(ctx context.Context, userID string, action dinner.Action) error
}

type photoSource interface {
	Photo(ctx context.Context, photoReference string, maxWidth int) ([]byte, string, error)
}

type RestaurantServer struct {
	aggregator aggregator
	attendance attendanceService
	photos     photoSource
	logger     *zap.Logger
}

func NewRestaurantServer(agg aggregator, attendance attendanceService, photos photoSource, logger *zap.Logger) *RestaurantServer {
	return &RestaurantServer{aggregator: agg, attendance: attendance, photos: photos, logger: logger}
}

func (s *RestaurantServer) Register(router gin.IRouter) {
	router.GET("/restaurants", s.getRestaurants)
	router.POST("/attendance", s.postAttendance)
	router.GET("/photos/:ref", s.getPhoto)
}

func (s *RestaurantServer) getRestaurants(ginCtx *gin.Context) {
	user, found := auth.UserFromContext(ginCtx.Request.Context())
	if !found {
		ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	restaurants, err := s.aggregator.NearbyRestaurants(ginCtx.Request.Context(), user.UUID.String())
	if err != nil {
		s.logger.Error("error aggregating restaurants", zap.Error(err))
		ginCtx.JSON(http.StatusInternalServerError, gin.H{"error": "could not load restaurants"})

		return
	}

	results := dinner.Partition(restaurants, parseFilters(ginCtx))

	ginCtx.JSON(http.StatusOK, gin.H{
		"attending":  results.Attending,
		"candidates": results.Candidates,
	})
}

type attendanceRequest struct {
	Action       string `json:"action"`
	RestaurantID string `json:"restaurantId"`
}

// postAttendance turns the raw payload into the tagged action variant before
// anything touches the service.
func (s *RestaurantServer) postAttendance(ginCtx *gin.Context) {
	user, found := auth.UserFromContext(ginCtx.Request.Context())
	if !found {
		ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

		return
	}

	var request attendanceRequest
	if err := ginCtx.ShouldBindJSON(&request); err != nil {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})

		return
	}

	var action dinner.Action

	switch request.Action {
	case "join":
		if request.RestaurantID == "" {
			ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "restaurantId is required to join"})

			return
		}

		action = dinner.Join{RestaurantID: request.RestaurantID}
	case "leave":
		action = dinner.Leave{}
	default:
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "action must be join or leave"})

		return
	}

	if err := s.attendance.Apply(ginCtx.Request.Context(), user.UUID.String(), action); err != nil {
		if errors.Is(err, dinner.ErrTryAgain) {
			ginCtx.JSON(http.StatusConflict, gin.H{"error": "try again"})

			return
		}

		s.logger.Error("error applying attendance action", zap.Error(err))
		ginCtx.JSON(http.StatusInternalServerError, gin.H{"error": "could not update attendance"})

		return
	}

	ginCtx.Status(http.StatusNoContent)
}

func (s *RestaurantServer) getPhoto(ginCtx *gin.Context) {
	body, contentType, err := s.photos.Photo(ginCtx.Request.Context(), ginCtx.Param("ref"), photoMaxWidth)
	if err != nil {
		s.logger.Error("error proxying photo", zap.Error(err))
		ginCtx.Status(http.StatusBadGateway)

		return
	}

	ginCtx.Header("Cache-Control", "public, max-age=86400") // 24 hours
	ginCtx.Data(http.StatusOK, contentType, body)
}

// parseFilters reads the optional query filters. Unparseable values mean "no
// filter", never an error.
func parseFilters(ginCtx *gin.Context) dinner.Filters {
	filters := dinner.Filters{}

	if raw := ginCtx.Query("distance"); raw != "" {
		if miles, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MaxDistanceMiles = pointy.Float64(miles)
		}
	}

	if raw := ginCtx.Query("rating"); raw != "" {
		if minRating, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MinRating = pointy.Float64(minRating)
		}
	}

	if raw := ginCtx.Query("price"); raw != "" {
		if price, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.PriceLevel = pointy.Int64(price)
		}
	}

	return filters
}
