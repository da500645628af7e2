package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"droscher.com/DinnerGargoyle/pkg/model"
)

// UpsertVenues writes provider venues into the catalog, overwriting the
// mutable columns of any row that already exists. Venues are never deleted.
func (r *Repository) UpsertVenues(ctx context.Context, venues []model.Venue) error {
	if len(venues) == 0 {
		return nil
	}

	result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&venues)

	return result.Error
}

func (r *Repository) GetAllVenues(ctx context.Context) ([]model.Venue, error) {
	var venues []model.Venue

	if result := r.DB.WithContext(ctx).Order("id").Find(&venues); result.Error != nil {
		return nil, result.Error
	}

	return venues, nil
}
