// Package nutrition holds the pure arithmetic over nutrient values: portion
// scaling, totals, goal progress and macro splits. Storage keeps full
// precision; rounding is left to whoever renders the numbers.
package nutrition

import (
	"math"
	"sort"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
)

const (
	KcalPerGramCarbs   = 4.0
	KcalPerGramProtein = 4.0
	KcalPerGramFat     = 9.0
)

type Summary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Scale computes the nutrients of grams of food from its per-100g values.
// Carbs and fat stay zero when the food does not track them.
func Scale(food domain.Food, grams float64) Summary {
	factor := grams / 100
	s := Summary{
		Calories: food.CaloriesPer100g * factor,
		Protein:  food.ProteinPer100g * factor,
	}
	if food.CarbsPer100g != nil {
		s.Carbs = *food.CarbsPer100g * factor
	}
	if food.FatPer100g != nil {
		s.Fat = *food.FatPer100g * factor
	}
	return s
}

// Sum totals the stored values of records.
func Sum(records []domain.NutritionRecord) Summary {
	var s Summary
	for i := range records {
		s.Calories += records[i].Calories
		s.Protein += records[i].Protein
	}
	return s
}

func Add(a, b Summary) Summary {
	return Summary{
		Calories: a.Calories + b.Calories,
		Protein:  a.Protein + b.Protein,
		Carbs:    a.Carbs + b.Carbs,
		Fat:      a.Fat + b.Fat,
	}
}

type Progress struct {
	Consumed   float64 `json:"consumed"`
	Goal       float64 `json:"goal"`
	Remaining  float64 `json:"remaining"`
	IsOverGoal bool    `json:"isOverGoal"`
	Percentage float64 `json:"percentage"`
}

// CalorieProgress reports how far consumed is from goal. When over goal,
// Remaining holds the overshoot.
func CalorieProgress(consumed, goal float64) Progress {
	return progress(consumed, goal)
}

func ProteinProgress(consumed, goal float64) Progress {
	return progress(consumed, goal)
}

func progress(consumed, goal float64) Progress {
	p := Progress{Consumed: consumed, Goal: goal}
	if consumed > goal {
		p.IsOverGoal = true
		p.Remaining = consumed - goal
	} else {
		p.Remaining = goal - consumed
	}
	if goal > 0 {
		p.Percentage = consumed / goal * 100
	}
	return p
}

type MacroRatio struct {
	Name     string  `json:"name"`
	Value    int     `json:"value"` // percent
	Calories float64 `json:"calories"`
}

const (
	MacroCarbohydrate = "Carbohydrate"
	MacroProtein      = "Protein"
	MacroFat          = "Fat"
	MacroOther        = "Other"
)

// MacroRatios splits energy into carbohydrate, protein, fat and the
// remainder not attributed to any tracked macro. Percentages sum to exactly
// 100 whenever there is any energy; otherwise every component is zero.
func MacroRatios(s Summary) []MacroRatio {
	ratios := []MacroRatio{
		{Name: MacroCarbohydrate, Calories: nonNegative(s.Carbs) * KcalPerGramCarbs},
		{Name: MacroProtein, Calories: nonNegative(s.Protein) * KcalPerGramProtein},
		{Name: MacroFat, Calories: nonNegative(s.Fat) * KcalPerGramFat},
		{Name: MacroOther},
	}

	macroKcal := ratios[0].Calories + ratios[1].Calories + ratios[2].Calories
	total := nonNegative(s.Calories)
	ratios[3].Calories = math.Max(0, total-macroKcal)

	denominator := math.Max(total, macroKcal)
	if denominator <= 0 {
		return ratios
	}

	type share struct {
		idx  int
		frac float64
	}
	shares := make([]share, len(ratios))
	assigned := 0
	for i := range ratios {
		exact := ratios[i].Calories / denominator * 100
		floor := math.Floor(exact)
		ratios[i].Value = int(floor)
		assigned += int(floor)
		shares[i] = share{idx: i, frac: exact - floor}
	}

	// Largest remainder; ties go to the earlier component.
	sort.SliceStable(shares, func(a, b int) bool { return shares[a].frac > shares[b].frac })
	for i := 0; assigned < 100 && i < len(shares); i++ {
		ratios[shares[i].idx].Value++
		assigned++
	}
	return ratios
}

type Difference struct {
	Difference float64 `json:"difference"`
	IsIncrease bool    `json:"isIncrease"`
	Percentage int     `json:"percentage"`
}

// CalorieDifference compares current with previous. Percentage is relative
// to previous and zero when there is nothing to compare against.
func CalorieDifference(current, previous float64) Difference {
	d := Difference{Difference: current - previous}
	d.IsIncrease = d.Difference > 0
	if previous > 0 {
		d.Percentage = int(math.Round(math.Abs(d.Difference) / previous * 100))
	}
	return d
}

// IsWithinGoal reports whether current lies within tolerance (a fraction,
// 0.1 for ten percent) of target.
func IsWithinGoal(current, target, tolerance float64) bool {
	if target <= 0 {
		return current == 0
	}
	return math.Abs(current-target)/target <= tolerance
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
