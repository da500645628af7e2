package dinner

import "sort"

const (
	defaultMaxDistanceMiles = 1.0
	maxCandidates           = 15
)

// Filters narrow the candidate list. Every field is optional; absent means
// no constraint (distance falls back to the one-mile default). Malformed
// boundary input parses to nil fields, never to an error.
type Filters struct {
	MaxDistanceMiles *float64
	MinRating        *float64
	PriceLevel       *int64
}

// Results splits the aggregated list for presentation: groups with people in
// them, then ranked candidates.
type Results struct {
	Attending  []Restaurant
	Candidates []Restaurant
}

// Partition splits restaurants into attended groups and candidates.
// Attended groups come back in full, sorted by attendee count descending.
// Candidates are filtered, sorted by rating descending with distance
// ascending as the tie-break, and capped at 15.
func Partition(restaurants []Restaurant, filters Filters) Results {
	attending := make([]Restaurant, 0)
	candidates := make([]Restaurant, 0)

	for _, restaurant := range restaurants {
		if restaurant.AttendeeCount > 0 {
			attending = append(attending, restaurant)

			continue
		}

		if matches(restaurant, filters) {
			candidates = append(candidates, restaurant)
		}
	}

	sort.SliceStable(attending, func(i, j int) bool {
		return attending[i].AttendeeCount > attending[j].AttendeeCount
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		if rating(candidates[i]) != rating(candidates[j]) {
			return rating(candidates[i]) > rating(candidates[j])
		}

		return candidates[i].DistanceMiles < candidates[j].DistanceMiles
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return Results{Attending: attending, Candidates: candidates}
}

func matches(restaurant Restaurant, filters Filters) bool {
	maxDistance := defaultMaxDistanceMiles
	if filters.MaxDistanceMiles != nil {
		maxDistance = *filters.MaxDistanceMiles
	}

	if restaurant.DistanceMiles > maxDistance {
		return false
	}

	if filters.MinRating != nil && rating(restaurant) < *filters.MinRating {
		return false
	}

	if filters.PriceLevel != nil {
		if restaurant.PriceLevel == nil || *restaurant.PriceLevel != *filters.PriceLevel {
			return false
		}
	}

	return true
}

// rating treats an absent rating as zero for every comparison.
func rating(restaurant Restaurant) float64 {
	if restaurant.Rating == nil {
		return 0
	}

	return *restaurant.Rating
}
