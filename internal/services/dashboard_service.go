package services

import (
	"context"
	"log/slog"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	"github.com/vladimiradmaev/nutrition-tracker/internal/nutrition"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

// DashboardService composes read-only views over records and aggregates.
type DashboardService struct {
	clock   *timeutil.Manager
	users   *UserService
	records *RecordService
	weekly  *WeeklyStatsService
	logger  *slog.Logger
}

func NewDashboardService(clock *timeutil.Manager, users *UserService, records *RecordService, weekly *WeeklyStatsService, logger *slog.Logger) *DashboardService {
	return &DashboardService{clock: clock, users: users, records: records, weekly: weekly, logger: logger}
}

type DailyView struct {
	Date            string                   `json:"date"`
	Records         []domain.NutritionRecord `json:"records"`
	Totals          nutrition.Summary        `json:"totals"`
	CalorieProgress nutrition.Progress       `json:"calorieProgress"`
	ProteinProgress nutrition.Progress       `json:"proteinProgress"`
	MacroRatios     []nutrition.MacroRatio   `json:"macroRatios"`
}

func (s *DashboardService) Daily(ctx context.Context, userID string) (*DailyView, error) {
	user, err := s.users.EnsureUserExists(ctx, userID)
	if err != nil {
		return nil, err
	}

	date := s.clock.DateString(s.clock.Now())
	records, err := s.records.GetByDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}

	totals := nutrition.Sum(records)
	return &DailyView{
		Date:            date,
		Records:         records,
		Totals:          totals,
		CalorieProgress: nutrition.CalorieProgress(totals.Calories, float64(user.DailyCalorieGoal)),
		ProteinProgress: nutrition.ProteinProgress(totals.Protein, user.DailyProteinGoal),
		MacroRatios:     nutrition.MacroRatios(totals),
	}, nil
}

type WeeklyView struct {
	Stats      *domain.WeeklyStats  `json:"stats"`
	WeekRange  string               `json:"weekRange"`
	ThisWeek   []DailyPoint         `json:"thisWeek"`
	LastWeek   []DailyPoint         `json:"lastWeek"`
	Comparison nutrition.Difference `json:"comparison"`
}

func (s *DashboardService) Weekly(ctx context.Context, userID string) (*WeeklyView, error) {
	user, err := s.users.EnsureUserExists(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stats, err := s.weekly.GetOrCreate(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	thisWeek, err := s.weekly.DailySeries(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	lastWeek, err := s.weekly.DailySeries(ctx, user.ID, s.clock.AddDays(now, -7))
	if err != nil {
		return nil, err
	}

	return &WeeklyView{
		Stats:      stats,
		WeekRange:  s.clock.FormatWeekRange(stats.WeekStartDate),
		ThisWeek:   thisWeek,
		LastWeek:   lastWeek,
		Comparison: nutrition.CalorieDifference(seriesCalories(thisWeek), seriesCalories(lastWeek)),
	}, nil
}

func seriesCalories(points []DailyPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Calories
	}
	return total
}

type DayGroup struct {
	Date    string                   `json:"date"`
	Label   string                   `json:"label"`
	Records []domain.NutritionRecord `json:"records"`
	Totals  nutrition.Summary        `json:"totals"`
}

// History groups the most recent records by civil date, newest day first
// and newest record first within a day.
func (s *DashboardService) History(ctx context.Context, userID string, limit int) ([]DayGroup, error) {
	records, err := s.records.GetRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	groups := make([]DayGroup, 0)
	for _, r := range records {
		date := s.clock.DateString(r.RecordedAt)
		if n := len(groups); n == 0 || groups[n-1].Date != date {
			groups = append(groups, DayGroup{
				Date:  date,
				Label: s.clock.FormatWeekday(r.RecordedAt) + ", " + s.clock.FormatShortDate(r.RecordedAt),
			})
		}
		g := &groups[len(groups)-1]
		g.Records = append(g.Records, r)
	}
	for i := range groups {
		groups[i].Totals = nutrition.Sum(groups[i].Records)
	}
	return groups, nil
}
