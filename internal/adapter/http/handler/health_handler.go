package handler

import (
	"errors"
	"net/http"

	"agent-chain-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles GET /health by pinging every dependency.
// A dependency reporting ports.ErrNotConfigured is listed as disabled and
// degrades the status without failing the check.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true
		degraded := false

		for _, checker := range checkers {
			err := checker.Ping(c.Request.Context())
			switch {
			case err == nil:
				deps[checker.Name()] = depStatus{Status: "healthy"}
			case errors.Is(err, ports.ErrNotConfigured):
				deps[checker.Name()] = depStatus{Status: "disabled"}
				degraded = true
			default:
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			httpCode = http.StatusServiceUnavailable
		} else if degraded {
			status = "degraded"
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
