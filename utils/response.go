package utils

import (
	"github.com/gin-gonic/gin"
)

// Envelope wraps every JSON answer. Status mirrors a 2xx code; Message is either
// a human readable text or an outcome tag such as "TableOccupied".
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func newEnvelope(code int, message string, data interface{}) Envelope {
	return Envelope{Status: code >= 200 && code < 300, Message: message, Data: data}
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, newEnvelope(code, message, data))
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, newEnvelope(code, err.Error(), nil))
}

// AbortJSON answers and stops the remaining handlers, for middlewares.
func AbortJSON(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, newEnvelope(code, message, nil))
}

func AbortError(c *gin.Context, code int, err error) {
	AbortJSON(c, code, err.Error())
}
