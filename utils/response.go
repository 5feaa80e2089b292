package utils

import "github.com/gin-gonic/gin"

// JSONError writes the error body every endpoint uses: a human readable message plus a stable code.
func JSONError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// AbortJSONError is JSONError for middleware: the handler chain stops here.
func AbortJSONError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}
