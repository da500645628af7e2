package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"droscher.com/DinnerGargoyle/pkg/model"
)

var ErrUserNotFound = errors.New("user not found")

func (r *Repository) GetUserByUUID(ctx context.Context, userUUID uuid.UUID) (*model.User, error) {
	var user model.User

	result := r.DB.WithContext(ctx).Where("uuid = ?", userUUID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *Repository) AddUser(ctx context.Context, userUUID uuid.UUID, username string, email string) (*model.User, error) {
	user := model.User{
		UUID:     userUUID,
		Username: username,
		Email:    email,
	}

	if result := r.DB.WithContext(ctx).Create(&user); result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}
