package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
)

// Envelope is the contract every JSON endpoint answers with. Exactly one
// of Data or Error is set.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON writes a success envelope. Meta is optional and may be nil.
func JSON(c *gin.Context, status int, data interface{}, meta map[string]interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Meta: meta})
}

// Created writes the data with HTTP 201.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error maps err onto the envelope, normalizing unknown errors to 500.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// Schedule and approval responses must never be served stale by
// intermediaries, so every envelope opts out of caching.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
