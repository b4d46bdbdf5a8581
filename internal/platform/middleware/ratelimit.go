// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/securepass/internal/platform/apperr"
	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/respond"
)

// # Rate Limiting

// RatePolicy is a per-IP token bucket.
type RatePolicy struct {
	RPS   float64
	Burst int
}

var (
	// DefaultRatePolicy applies to every route.
	DefaultRatePolicy = RatePolicy{RPS: constants.DefaultRateLimitRPS, Burst: constants.DefaultRateLimitBurst}

	// AuthRatePolicy is stacked on /api/auth to slow password guessing from
	// one address across many emails; the per-email lockout covers the rest.
	AuthRatePolicy = RatePolicy{RPS: constants.AuthRateLimitRPS, Burst: constants.AuthRateLimitBurst}
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

/*
RateLimit throttles requests per client IP.

Each call owns its bucket table, so the global limiter and the auth limiter
count independently. Idle entries are swept until context is cancelled.
A rejected request gets 429 RATE_LIMITED with Retry-After.
*/
func RateLimit(context context.Context, policy RatePolicy) func(http.Handler) http.Handler {
	var mu sync.Mutex
	clients := make(map[string]*rateLimitClient)

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				mu.Lock()
				for ip, client := range clients {
					if time.Since(client.lastSeen) > constants.RateLimitClientTTL {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			case <-context.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			now := time.Now()
			clientIP := RealIP(request)

			mu.Lock()
			client, found := clients[clientIP]
			if !found {
				client = &rateLimitClient{limiter: rate.NewLimiter(rate.Limit(policy.RPS), policy.Burst)}
				clients[clientIP] = client
			}
			client.lastSeen = now
			allowed := client.limiter.AllowN(now, 1)
			var wait time.Duration
			if !allowed {
				reservation := client.limiter.ReserveN(now, 1)
				wait = reservation.DelayFrom(now)
				reservation.CancelAt(now)
			}
			mu.Unlock()

			if !allowed {
				seconds := max(1, int(math.Ceil(wait.Seconds())))
				writer.Header().Set("Retry-After", strconv.Itoa(seconds))
				respond.Error(writer, request, apperr.RateLimited(seconds))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
