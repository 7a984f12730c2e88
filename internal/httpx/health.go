package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is anything with a Ping method.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the dependencies the health endpoint probes. Redis is
// optional; nil reports "disabled".
type HealthChecks struct {
	Backend HealthChecker
	Redis   HealthChecker
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Redis   string `json:"redis"`
}

// HealthHandler probes every registered dependency and reports degraded
// when any of them fail.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:  "ok",
			Backend: "ok",
			Redis:   "disabled",
		}

		if err := checks.Backend.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Backend = "unreachable"
		}
		if checks.Redis != nil {
			resp.Redis = "ok"
			if err := checks.Redis.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Redis = "unreachable"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

// PingHandler always answers "pong".
func PingHandler(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
