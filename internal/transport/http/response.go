package httptransport

import "github.com/gin-gonic/gin"

// ErrorBody is the wire shape for every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondError writes the {error} envelope the web client expects.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}
