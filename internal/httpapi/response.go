package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
)

type errorBody struct {
	Type    apperrors.ErrorType `json:"type"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
}

// apiResponse is the envelope of every /api route.
type apiResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *errorBody     `json:"error,omitempty"`
}

func (h *Handler) success(c *gin.Context, status int, data any, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["requestId"] = c.GetString(requestIDKey)
	c.JSON(status, apiResponse{Data: data, Meta: meta})
}

func (h *Handler) ok(c *gin.Context, data any) {
	h.success(c, http.StatusOK, data, nil)
}

// fail renders err with the status of its type. Storage and internal
// failures never leak their cause to the client.
func (h *Handler) fail(c *gin.Context, err error) {
	h.errs.Handle(c.Request.Context(), err)

	body := &errorBody{
		Type:    apperrors.ErrorTypeInternal,
		Code:    "INTERNAL",
		Message: "Internal server error",
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Type = appErr.Type
		body.Code = appErr.Code
		body.Message = appErr.Message
	}
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), apiResponse{
		Error: body,
		Meta:  map[string]any{"requestId": c.GetString(requestIDKey)},
	})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.fail(c, apperrors.NewValidationErrorf("invalid request body: %v", err))
}
