// Package middleware provides rate limiting for the market's HTTP API and
// its OTP endpoints.
//
// Two limiters share the Limiter interface: RateLimiter is an in-process
// token bucket, DistributedRateLimiter a Redis fixed window that holds
// across replicas.
//
//	limiter := middleware.NewDistributedRateLimiter(redisClient, middleware.SessionRateLimitConfig(), "ratelimit:api")
//	router.Use(middleware.NewRateLimitMiddleware(limiter, logger).Handler)
//
// Requests on /sessions/{id}/... are keyed by session, everything else by
// client IP.
//
// Defaults:
//
//	anonymous (per IP)   100 req/min, burst 10
//	per session          300 req/min, burst 30
//	OTP (per contact)    5 per 10 min
package middleware
