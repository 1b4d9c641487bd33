package menus

import (
	"fmt"
	"math"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/nutrition-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	"github.com/vladimiradmaev/nutrition-tracker/internal/nutrition"
	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
	"github.com/vladimiradmaev/nutrition-tracker/internal/timeutil"
)

// Sender is the slice of *tgbotapi.BotAPI the bot talks through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

const MainMenuText = `🥗 Nutrition tracker

Log what you eat and keep an eye on calories and protein.

• /log 450 30 chicken salad records 450 kcal and 30 g protein
• /today shows today's intake against your goals
• /week compares this week with the last one
• /history lists your recent meals

Choose an action:`

const HelpText = `Commands:
/today  today's totals and meals
/week   weekly totals, averages and comparison
/history  recent meals grouped by day
/log <calories> <protein> [name]  record a meal
/help  this message

Numbers may use a decimal point, e.g. /log 320 12.5 oatmeal.`

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, MainMenuText)
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendReport sends text with the navigation keyboard underneath.
func SendReport(api Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.Navigation()
	_, err := api.Send(msg)
	return err
}

func SendText(api Sender, chatID int64, text string) error {
	_, err := api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func FormatDaily(clock *timeutil.Manager, view *services.DailyView) string {
	var b strings.Builder
	label := view.Date
	if day, err := clock.ParseDate(view.Date); err == nil {
		label = clock.FormatWeekday(day) + ", " + clock.FormatShortDate(day)
	}
	fmt.Fprintf(&b, "📅 Today, %s\n\n", label)
	writeProgress(&b, "🔥 Calories", "kcal", view.CalorieProgress)
	writeProgress(&b, "💪 Protein", "g", view.ProteinProgress)

	if len(view.Records) == 0 {
		b.WriteString("\nNothing logged yet today.")
		return b.String()
	}

	b.WriteString("\nMacros:")
	for _, m := range view.MacroRatios {
		fmt.Fprintf(&b, " %s %d%%", m.Name, m.Value)
	}
	b.WriteString("\n\nMeals:\n")
	for _, r := range view.Records {
		writeRecord(&b, clock, r)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeProgress(b *strings.Builder, title, unit string, p nutrition.Progress) {
	fmt.Fprintf(b, "%s: %s / %s %s (%.0f%%)", title, formatAmount(p.Consumed), formatAmount(p.Goal), unit, p.Percentage)
	if p.IsOverGoal {
		fmt.Fprintf(b, ", over by %s", formatAmount(p.Remaining))
	} else {
		fmt.Fprintf(b, ", %s left", formatAmount(p.Remaining))
	}
	b.WriteString("\n")
}

func writeRecord(b *strings.Builder, clock *timeutil.Manager, r domain.NutritionRecord) {
	fmt.Fprintf(b, "• %s %s: %s kcal, %s g protein\n",
		clock.FormatTime(r.RecordedAt), r.Name, formatAmount(r.Calories), formatAmount(r.Protein))
}

func FormatWeekly(view *services.WeeklyView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Week %s\n\n", view.WeekRange)

	s := view.Stats
	if s == nil || s.RecordsCount == 0 {
		b.WriteString("Nothing logged this week yet.")
		return b.String()
	}
	fmt.Fprintf(&b, "Total: %s kcal, %s g protein\n", formatAmount(s.TotalCalories), formatAmount(s.TotalProtein))
	fmt.Fprintf(&b, "Daily average: %s kcal, %s g protein over %d %s\n",
		formatAmount(s.AvgDailyCalories), formatAmount(s.AvgProtein), s.ActualDays, plural(s.ActualDays, "day", "days"))
	fmt.Fprintf(&b, "Meals logged: %d\n\n", s.RecordsCount)

	for _, p := range view.ThisWeek {
		fmt.Fprintf(&b, "%s  %s kcal\n", p.Label, formatAmount(p.Calories))
	}

	b.WriteString("\n")
	b.WriteString(formatComparison(view.Comparison))
	return b.String()
}

func formatComparison(d nutrition.Difference) string {
	if d.Difference == 0 {
		return "Same as last week."
	}
	sign := "-"
	if d.IsIncrease {
		sign = "+"
	}
	amount := formatAmount(math.Abs(d.Difference))
	if d.Percentage == 0 {
		return fmt.Sprintf("vs last week: %s%s kcal", sign, amount)
	}
	return fmt.Sprintf("vs last week: %s%s kcal (%s%d%%)", sign, amount, sign, d.Percentage)
}

func FormatHistory(clock *timeutil.Manager, groups []services.DayGroup) string {
	if len(groups) == 0 {
		return "🕘 No meals logged yet."
	}
	var b strings.Builder
	b.WriteString("🕘 Recent meals\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "\n%s: %s kcal, %s g protein\n", g.Label, formatAmount(g.Totals.Calories), formatAmount(g.Totals.Protein))
		for _, r := range g.Records {
			writeRecord(&b, clock, r)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEstimate renders an estimator draft together with the command
// that would log it.
func FormatEstimate(est *services.Estimate) string {
	return fmt.Sprintf("🔎 %s (%s)\n%s kcal, %s g protein\nConfidence: %s\n\nTo log it send:\n/log %s %s %s",
		est.Name, est.Category, formatAmount(est.Calories), formatAmount(est.Protein), est.Confidence,
		formatAmount(est.Calories), formatAmount(est.Protein), est.Name)
}

func FormatRecorded(r *domain.NutritionRecord) string {
	return fmt.Sprintf("✅ Logged %s: %s kcal, %s g protein", r.Name, formatAmount(r.Calories), formatAmount(r.Protein))
}

// formatAmount drops the decimal for whole numbers: 130, 2.5.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
