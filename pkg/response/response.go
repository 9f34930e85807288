package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the body of every non-2xx response. Detail carries the
// human-readable message clients match on.
type ErrorBody struct {
	Detail    string      `json:"detail"`
	Errors    interface{} `json:"errors,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Success writes data as the bare JSON body.
func Success[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

// Error writes an ErrorBody and aborts the handler chain.
func Error(ctx *gin.Context, status int, detail string, errs interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, ErrorBody{
		Detail:    detail,
		Errors:    errs,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now().UTC(),
	})
}
