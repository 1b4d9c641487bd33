package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, classify(err, "user", id)
	}
	return &user, nil
}

// InsertIfAbsent inserts user unless a row with the same id exists. It
// reports whether this call created the row.
func (r *UserRepository) InsertIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user)
	if result.Error != nil {
		return false, classify(result.Error, "user", user.ID)
	}
	return result.RowsAffected > 0, nil
}

// UpdateGoals applies the non-nil goals and returns the stored row.
func (r *UserRepository) UpdateGoals(ctx context.Context, id string, calorieGoal *int, proteinGoal *float64) (*domain.User, error) {
	updates := map[string]any{}
	if calorieGoal != nil {
		updates["daily_calorie_goal"] = *calorieGoal
	}
	if proteinGoal != nil {
		updates["daily_protein_goal"] = *proteinGoal
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, classify(result.Error, "user", id)
		}
		if result.RowsAffected == 0 {
			return nil, classify(gorm.ErrRecordNotFound, "user", id)
		}
	}
	return r.Get(ctx, id)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, classify(err, "user", "")
}

func (r *UserRepository) Latest(ctx context.Context, limit int) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("updated_at DESC").Order("id").Limit(limit).Find(&users).Error
	return users, classify(err, "user", "")
}
