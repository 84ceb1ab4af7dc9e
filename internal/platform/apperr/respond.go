package apperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"go.uber.org/zap"
)

// Respond writes err as {"error": msg} using the status of its kind. Unclassified
// errors are logged and answered with fallback so driver messages never leak.
func Respond(c *gin.Context, op string, err error, fallback string) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+": service error", err, zap.String("request_id", c.GetString("request_id")))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// BadRequest answers a payload that failed binding.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
}
