// Package auth implements the one-time-password login used by the market.
//
// Codes are not delivered anywhere yet: Send logs the request and Verify
// accepts the fixed test code.
//
//	otp := auth.NewOTPService(auth.OTPOptions{Logger: logger})
//	ok, err := otp.Send(ctx, "0712345678")
//	ok, err = otp.Verify(ctx, "0712345678", "1234")
//
// An optional Limiter throttles both calls per contact. The Redis-backed
// middleware.DistributedRateLimiter satisfies it, so throttling holds
// across replicas.
package auth
