package response

import "github.com/gin-gonic/gin"

// ErrorBody is the error envelope every endpoint returns.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// MessageBody is returned by mutations that have nothing else to report.
type MessageBody struct {
	Message string `json:"message"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageBody{Message: message})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, ErrorBody{Error: code, Message: message})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, ErrorBody{Error: code, Message: message, Details: details})
}

// Abort writes the error and stops the middleware chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: code, Message: message})
}
