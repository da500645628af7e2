// Package dinner is the core engine: it merges cached venue catalogs with
// live attendance, enforces the one-group-per-user rule, and ranks the
// result for presentation.
package dinner

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"droscher.com/DinnerGargoyle/pkg/cache"
	"droscher.com/DinnerGargoyle/pkg/geo"
	"droscher.com/DinnerGargoyle/pkg/integrations"
	"droscher.com/DinnerGargoyle/pkg/model"
)

// Restaurant is a venue annotated for one user and one search center. It is
// derived per call and never persisted.
type Restaurant struct {
	model.Venue
	DistanceMiles float64
	AttendeeCount int64
	Attending     bool
}

type CatalogRepository interface {
	UpsertVenues(ctx context.Context, venues []model.Venue) error
	GetAllVenues(ctx context.Context) ([]model.Venue, error)
}

type AttendanceReader interface {
	CountAttendees(ctx context.Context) (map[string]int64, error)
	CurrentRestaurant(ctx context.Context, userID string) (*string, error)
}

const snapshotKey = "all-venues"

type Aggregator struct {
	source     integrations.VenueSource
	catalog    CatalogRepository
	attendance AttendanceReader

	providerCache *cache.Loader[[]model.Venue]
	snapshotCache *cache.Loader[[]model.Venue]

	center       geo.Point
	radiusMeters int
	logger       *zap.Logger
}

func NewAggregator(
	source integrations.VenueSource,
	catalog CatalogRepository,
	attendance AttendanceReader,
	providerCache *cache.Loader[[]model.Venue],
	snapshotCache *cache.Loader[[]model.Venue],
	center geo.Point,
	radiusMeters int,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		source:        source,
		catalog:       catalog,
		attendance:    attendance,
		providerCache: providerCache,
		snapshotCache: snapshotCache,
		center:        center,
		radiusMeters:  radiusMeters,
		logger:        logger,
	}
}

// NearbyRestaurants merges the cached provider results with the cached
// catalog snapshot and annotates each venue with distance, live attendee
// count and whether userID is attending it. Attendance is read fresh on
// every call. A failing venue source degrades to whatever the other source
// yields, down to an empty list; it never fails the call.
func (a *Aggregator) NearbyRestaurants(ctx context.Context, userID string) ([]Restaurant, error) {
	var sourceErrs error

	providerKey := fmt.Sprintf("%.6f,%.6f,%d", a.center.Latitude, a.center.Longitude, a.radiusMeters)

	fromProvider, err := a.providerCache.Get(ctx, providerKey, a.refreshProviderVenues)
	if multierr.AppendInto(&sourceErrs, err) {
		a.logger.Warn("provider venues unavailable", zap.Error(err))
	}

	fromCatalog, err := a.snapshotCache.Get(ctx, snapshotKey, a.catalog.GetAllVenues)
	if multierr.AppendInto(&sourceErrs, err) {
		a.logger.Warn("catalog snapshot unavailable", zap.Error(err))
	}

	// Snapshot first, provider last: on a shared id the provider copy is at
	// most one fresh TTL old while the snapshot may carry rows from much
	// older refreshes, so the later (provider) entry wins the merge.
	venues := mergeByID(fromCatalog, fromProvider)
	if len(venues) == 0 && sourceErrs != nil {
		a.logger.Error("no venue source available", zap.Error(sourceErrs))

		return []Restaurant{}, nil
	}

	counts, err := a.attendance.CountAttendees(ctx)
	if err != nil {
		return nil, err
	}

	attending, err := a.attendance.CurrentRestaurant(ctx, userID)
	if err != nil {
		return nil, err
	}

	restaurants := make([]Restaurant, 0, len(venues))

	for _, venue := range venues {
		restaurants = append(restaurants, Restaurant{
			Venue:         venue,
			DistanceMiles: geo.Miles(a.center, geo.Point{Latitude: venue.Latitude, Longitude: venue.Longitude}),
			AttendeeCount: counts[venue.ID],
			Attending:     attending != nil && *attending == venue.ID,
		})
	}

	return restaurants, nil
}

// refreshProviderVenues is the cache-miss path for the provider tier: search
// the source, backfill absent maps URLs and photo references from the
// details lookup, and upsert everything into the catalog.
func (a *Aggregator) refreshProviderVenues(ctx context.Context) ([]model.Venue, error) {
	venues, err := a.source.FindNearby(ctx, a.center.Latitude, a.center.Longitude, a.radiusMeters)
	if err != nil {
		return nil, err
	}

	a.backfillDetails(ctx, venues)

	if err := a.catalog.UpsertVenues(ctx, venues); err != nil {
		a.logger.Error("error upserting venues into catalog", zap.Error(err))

		return nil, err
	}

	return venues, nil
}

func (a *Aggregator) backfillDetails(ctx context.Context, venues []model.Venue) {
	var group sync.WaitGroup

	for index := range venues {
		if venues[index].MapsURL != nil && venues[index].PhotoReference != nil {
			continue
		}

		group.Add(1)

		go func(venue *model.Venue) {
			defer group.Done()

			details, err := a.source.Details(ctx, venue.ID)
			if err != nil {
				a.logger.Warn("details lookup failed, keeping search fields", zap.String("place_id", venue.ID), zap.Error(err))

				return
			}

			if venue.MapsURL == nil {
				venue.MapsURL = details.MapsURL
			}

			// The search photo reference stays preferred.
			if venue.PhotoReference == nil {
				venue.PhotoReference = details.PhotoReference
			}
		}(&venues[index])
	}

	group.Wait()
}

// mergeByID unions the two lists, deduplicating by venue id with
// last-write-wins: a later entry replaces an earlier one in place, so the
// output order stays deterministic.
func mergeByID(lists ...[]model.Venue) []model.Venue {
	merged := make([]model.Venue, 0)
	position := make(map[string]int)

	for _, list := range lists {
		for _, venue := range list {
			if at, seen := position[venue.ID]; seen {
				merged[at] = venue

				continue
			}

			position[venue.ID] = len(merged)
			merged = append(merged, venue)
		}
	}

	return merged
}
