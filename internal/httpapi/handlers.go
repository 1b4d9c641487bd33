package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
)

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationErrorf("%s must be an integer", name)
	}
	return n, nil
}

// queryInstant resolves an optional YYYY-MM-DD query parameter to the start
// of that civil day, or now when absent.
func (h *Handler) queryInstant(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return h.clock.Now(), nil
	}
	t, err := h.clock.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(err.Error())
	}
	return t, nil
}

func (h *Handler) ListFoods(c *gin.Context) {
	foods, err := h.foods.SearchFoods(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, foods, map[string]any{"count": len(foods)})
}

func (h *Handler) GetFood(c *gin.Context) {
	food, err := h.foods.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, food)
}

func (h *Handler) CreateFoodRecord(c *gin.Context) {
	var body services.CreateFromFoodInput
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	record, err := h.records.CreateFromFood(c.Request.Context(), currentUser(c), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusCreated, record, nil)
}

func (h *Handler) CreateManualRecord(c *gin.Context) {
	var body services.CreateManualInput
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	record, err := h.records.CreateManual(c.Request.Context(), currentUser(c), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusCreated, record, nil)
}

type estimateRequest struct {
	Description string  `json:"description"`
	Grams       float64 `json:"grams"`
}

// EstimateRecord returns a draft for a manual record; nothing is stored.
func (h *Handler) EstimateRecord(c *gin.Context) {
	var body estimateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	if h.estimator == nil {
		h.fail(c, apperrors.NewExternalAPIError(nil, "estimator"))
		return
	}
	est, err := h.estimator.Estimate(c.Request.Context(), body.Description, body.Grams)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, est)
}

func (h *Handler) RecordsByDate(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = h.clock.DateString(h.clock.Now())
	}
	records, err := h.records.GetByDate(c.Request.Context(), currentUser(c), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, records, map[string]any{"date": date, "count": len(records)})
}

func (h *Handler) RecordsByRange(c *gin.Context) {
	records, err := h.records.GetByRange(c.Request.Context(), currentUser(c), c.Query("start"), c.Query("end"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, records, map[string]any{"count": len(records)})
}

func (h *Handler) RecentRecords(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	records, err := h.records.GetRecent(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, records, map[string]any{"count": len(records)})
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	var body services.RecordPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	record, err := h.records.Update(c.Request.Context(), currentUser(c), c.Param("id"), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	if err := h.records.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) GetGoals(c *gin.Context) {
	goals, err := h.users.GetGoals(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, goals)
}

func (h *Handler) UpdateGoals(c *gin.Context) {
	var body services.GoalsPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	goals, err := h.users.UpdateGoals(c.Request.Context(), currentUser(c), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, goals)
}
