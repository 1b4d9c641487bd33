package domain

import (
	"strings"
	"time"
)

// Category classifies foods and nutrition records.
type Category string

const (
	CategoryProtein      Category = "Protein"
	CategoryProduce      Category = "Produce/Fiber"
	CategoryCarbohydrate Category = "Carbohydrate"
	CategoryOther        Category = "Other"
)

var Categories = []Category{CategoryProtein, CategoryProduce, CategoryCarbohydrate, CategoryOther}

var categoryAliases = map[string]Category{
	"protein":       CategoryProtein,
	"proteins":      CategoryProtein,
	"meat":          CategoryProtein,
	"蛋白質":           CategoryProtein,
	"肉類":            CategoryProtein,
	"produce/fiber": CategoryProduce,
	"produce":       CategoryProduce,
	"fiber":         CategoryProduce,
	"vegetable":     CategoryProduce,
	"vegetables":    CategoryProduce,
	"fruit":         CategoryProduce,
	"fruits":        CategoryProduce,
	"蔬菜":            CategoryProduce,
	"水果":            CategoryProduce,
	"蔬果":            CategoryProduce,
	"carbohydrate":  CategoryCarbohydrate,
	"carbohydrates": CategoryCarbohydrate,
	"carb":          CategoryCarbohydrate,
	"carbs":         CategoryCarbohydrate,
	"碳水化合物":         CategoryCarbohydrate,
	"澱粉":            CategoryCarbohydrate,
	"other":         CategoryOther,
	"fat":           CategoryOther,
	"脂肪":            CategoryOther,
	"其他":            CategoryOther,
}

// ParseCategory resolves a category name or one of its aliases.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// NormalizeCategory is ParseCategory with unknown values coerced to Other.
func NormalizeCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return CategoryOther
}

// SourceType tells whether a record was scaled from a catalog food or
// entered directly.
type SourceType string

const (
	SourceFood   SourceType = "food"
	SourceManual SourceType = "manual"
)

const (
	DefaultCalorieGoal = 1750
	DefaultProteinGoal = 100.0
	PlaceholderDomain  = "placeholder"
	ManualRecordName   = "manual"
)

type User struct {
	ID               string    `gorm:"primaryKey;size:191" json:"id"`
	Email            string    `gorm:"size:320;not null" json:"email"`
	DailyCalorieGoal int       `gorm:"not null" json:"dailyCalorieGoal"`
	DailyProteinGoal float64   `gorm:"not null" json:"dailyProteinGoal"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Food is a shared catalog entry. Nutrient values are per 100 g.
type Food struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Category        Category  `gorm:"size:32;not null;index:idx_foods_category_published,priority:1" json:"category"`
	Brand           *string   `gorm:"size:255" json:"brand"`
	ServingUnit     *string   `gorm:"size:32" json:"servingUnit"`
	ServingSize     *float64  `json:"servingSize"`
	CaloriesPer100g float64   `gorm:"column:calories_per_100g;not null" json:"caloriesPer100g"`
	ProteinPer100g  float64   `gorm:"column:protein_per_100g;not null" json:"proteinPer100g"`
	CarbsPer100g    *float64  `gorm:"column:carbs_per_100g" json:"carbsPer100g"`
	FatPer100g      *float64  `gorm:"column:fat_per_100g" json:"fatPer100g"`
	IsPublished     bool      `gorm:"not null;index:idx_foods_category_published,priority:2" json:"isPublished"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Food) TableName() string { return "foods" }

// NutritionRecord is one logged act of consumption. Calories and protein
// are copied at creation time and never re-derived from the food.
type NutritionRecord struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     string     `gorm:"size:191;not null;index:idx_records_user_recorded,priority:1" json:"userId"`
	User       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Category   Category   `gorm:"size:32;not null" json:"category"`
	Calories   float64    `gorm:"not null" json:"calories"`
	Protein    float64    `gorm:"not null" json:"protein"`
	SourceType SourceType `gorm:"size:16;not null" json:"sourceType"`
	FoodID     *string    `gorm:"size:64;index:idx_records_food" json:"foodId"`
	Food       *Food      `gorm:"foreignKey:FoodID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"food,omitempty"`
	Amount     *float64   `json:"amount"`
	RecordedAt time.Time  `gorm:"not null;index:idx_records_user_recorded,priority:2" json:"recordedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (NutritionRecord) TableName() string { return "nutrition_records" }

// WeeklyStats is the materialized aggregate of one user's records in one
// week. CreatedAt and UpdatedAt both move on every recompute.
type WeeklyStats struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserID           string    `gorm:"size:191;not null;uniqueIndex:idx_weekly_user_week,priority:1" json:"userId"`
	User             *User     `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	WeekStartDate    time.Time `gorm:"not null;uniqueIndex:idx_weekly_user_week,priority:2" json:"weekStartDate"`
	TotalCalories    float64   `gorm:"not null" json:"totalCalories"`
	TotalProtein     float64   `gorm:"not null" json:"totalProtein"`
	AvgDailyCalories float64   `gorm:"not null" json:"avgDailyCalories"`
	AvgProtein       float64   `gorm:"not null" json:"avgProtein"`
	RecordsCount     int       `gorm:"not null" json:"recordsCount"`
	ActualDays       int       `gorm:"not null" json:"actualDays"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (WeeklyStats) TableName() string { return "weekly_stats" }
