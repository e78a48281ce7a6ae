package responses

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Raw writes an already encoded JSON document unchanged.
func Raw(c *gin.Context, statusCode int, body []byte) {
	c.Data(statusCode, "application/json; charset=utf-8", body)
}

func Success(c *gin.Context, statusCode int) {
	c.JSON(statusCode, SuccessResponse{Success: true})
}

func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}
