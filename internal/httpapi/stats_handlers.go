package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) WeeklyStats(c *gin.Context) {
	at, err := h.queryInstant(c, "date")
	if err != nil {
		h.fail(c, err)
		return
	}
	stats, err := h.weekly.GetOrCreate(c.Request.Context(), currentUser(c), at)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, stats, map[string]any{"weekRange": h.clock.FormatWeekRange(stats.WeekStartDate)})
}

func (h *Handler) WeeklyHistory(c *gin.Context) {
	weeks, err := queryInt(c, "weeks")
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.weekly.History(c.Request.Context(), currentUser(c), weeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, rows, map[string]any{"count": len(rows)})
}

func (h *Handler) WeeklySeries(c *gin.Context) {
	at, err := h.queryInstant(c, "date")
	if err != nil {
		h.fail(c, err)
		return
	}
	points, err := h.weekly.DailySeries(c.Request.Context(), currentUser(c), at)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, points)
}

func (h *Handler) DailyDashboard(c *gin.Context) {
	view, err := h.dashboard.Daily(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, view)
}

func (h *Handler) WeeklyDashboard(c *gin.Context) {
	view, err := h.dashboard.Weekly(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, view)
}

func (h *Handler) HistoryDashboard(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	groups, err := h.dashboard.History(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusOK, groups, map[string]any{"days": len(groups)})
}
