package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/nutrition-tracker/internal/services"
)

const defaultMaxSyncBody = 16 << 20

func (h *Handler) Health(c *gin.Context) {
	tz := ""
	if h.clock != nil {
		tz = h.clock.Location().String()
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"node":        runtime.Version(),
		"tz":          tz,
		"envPresence": h.envPresence,
	})
}

func (h *Handler) SyncPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339Nano)})
}

// SyncRows upserts catalog rows posted as {"rows": [...]}. An unreadable
// body counts as no rows; entries that are not JSON objects are skipped.
func (h *Handler) SyncRows(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok || !tokenMatches(h.syncToken, token) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Unauthorized"})
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxSyncBody+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
		return
	}
	if int64(len(raw)) > h.maxSyncBody {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "message": "payload too large"})
		return
	}

	var body struct {
		Rows []json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		h.logger.WarnContext(c.Request.Context(), "Ignoring unreadable sync body", "error", err)
		body.Rows = nil
	}
	rows := decodeSyncRows(body.Rows)
	if len(rows) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "count": 0, "message": "no rows"})
		return
	}
	if skipped := len(body.Rows) - len(rows); skipped > 0 {
		h.logger.WarnContext(c.Request.Context(), "Skipping sync entries that are not objects", "skipped", skipped)
	}

	count, err := h.sync.SyncRows(c.Request.Context(), rows)
	if err != nil {
		h.errs.Handle(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": err.Error()})
		return
	}
	if count == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "count": 0, "message": "no valid rows"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}

// decodeSyncRows keeps the entries that decode to a JSON object. Numbers
// stay json.Number so MapRow sees them unrounded.
func decodeSyncRows(entries []json.RawMessage) []map[string]any {
	rows := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		var row map[string]any
		dec := json.NewDecoder(bytes.NewReader(entry))
		dec.UseNumber()
		if err := dec.Decode(&row); err != nil || row == nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *Handler) CreateFood(c *gin.Context) {
	var body services.CreateFoodInput
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	food, err := h.foods.CreateFood(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.success(c, http.StatusCreated, food, nil)
}

func (h *Handler) UpdateFood(c *gin.Context) {
	var body services.FoodPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}
	food, err := h.foods.UpdateFood(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, food)
}

func (h *Handler) DeleteFood(c *gin.Context) {
	if err := h.foods.DeleteFood(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) RecalculateWeekly(c *gin.Context) {
	result, err := h.weekly.RecalculateAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, result)
}

func (h *Handler) Overview(c *gin.Context) {
	tables, err := h.overview.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, tables)
}
