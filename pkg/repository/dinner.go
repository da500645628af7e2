package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"droscher.com/DinnerGargoyle/pkg/model"
)

// JoinGroup moves a user into the dinner group for restaurantID as one
// transaction: any existing membership is removed, the group is
// found-or-created, and the new membership row is inserted. Joining the
// venue the user is already attending is a no-op. The whole sequence rolls
// back on any failure, leaving the user in their prior state.
func (r *Repository) JoinGroup(ctx context.Context, userID string, restaurantID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := currentMembership(tx, userID)
		if err != nil {
			return err
		}

		if current != nil && current.DinnerGroup.RestaurantID == restaurantID {
			return nil
		}

		if current != nil {
			if result := tx.Delete(&model.Attendee{}, current.ID); result.Error != nil {
				return result.Error
			}
		}

		group := model.DinnerGroup{RestaurantID: restaurantID}
		if result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&group); result.Error != nil {
			return result.Error
		}

		// DO NOTHING leaves the id zero when the group already exists.
		if group.ID == 0 {
			if result := tx.Where("restaurant_id = ?", restaurantID).First(&group); result.Error != nil {
				return result.Error
			}
		}

		attendee := model.Attendee{UserID: userID, DinnerGroupID: group.ID}
		if result := tx.Create(&attendee); result.Error != nil {
			return result.Error
		}

		return nil
	})
}

// LeaveGroup removes the user's membership row. Leaving while not attending
// anything is a no-op. The emptied group is left in place.
func (r *Repository) LeaveGroup(ctx context.Context, userID string) error {
	result := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Attendee{})

	return result.Error
}

// CountAttendees returns live attendee counts keyed by restaurant id.
// Never cached: the aggregator re-reads these on every call.
func (r *Repository) CountAttendees(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		RestaurantID string
		Count        int64
	}

	result := r.DB.WithContext(ctx).Table("attendees").
		Select("dinner_groups.restaurant_id, count(*) as count").
		Joins("INNER JOIN dinner_groups ON dinner_groups.id = attendees.dinner_group_id").
		Where("dinner_groups.deleted_at IS NULL").
		Group("dinner_groups.restaurant_id").
		Scan(&rows)
	if result.Error != nil {
		r.Logger.Error("error counting attendees", zap.Error(result.Error))

		return nil, result.Error
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.RestaurantID] = row.Count
	}

	return counts, nil
}

// CurrentRestaurant returns the restaurant id of the group the user is
// attending, or nil if they are not attending any.
func (r *Repository) CurrentRestaurant(ctx context.Context, userID string) (*string, error) {
	var row struct {
		RestaurantID string
	}

	result := r.DB.WithContext(ctx).Table("attendees").
		Select("dinner_groups.restaurant_id").
		Joins("INNER JOIN dinner_groups ON dinner_groups.id = attendees.dinner_group_id").
		Where("attendees.user_id = ?", userID).
		Where("dinner_groups.deleted_at IS NULL").
		Take(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return &row.RestaurantID, nil
}

func currentMembership(tx *gorm.DB, userID string) (*model.Attendee, error) {
	var attendee model.Attendee

	result := tx.Joins("DinnerGroup").Where("attendees.user_id = ?", userID).First(&attendee)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return &attendee, nil
}
