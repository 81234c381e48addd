package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("email ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListByType(ctx context.Context, userType model.UserType) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("user_type = ?", userType).Order("email ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	return result.RowsAffected > 0, result.Error
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, id string, prefs model.JSONMap) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("preferences", prefs)
	return result.RowsAffected > 0, result.Error
}

// IncrementCounter bumps the stored interaction counter and returns the new value.
func (r *UserRepository) IncrementCounter(ctx context.Context, id string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).Where("id = ?", id).
			UpdateColumn("interaction_counter", gorm.Expr("interaction_counter + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var user model.User
		if err := tx.Select("interaction_counter").Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		value = user.InteractionCounter
		return nil
	})
	return value, err
}

func (r *UserRepository) SetCounter(ctx context.Context, id string, value int64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("interaction_counter", value).Error
}
