// Package redis provides Redis client initialization with connection
// verification and retry logic. The client backs the shared session and
// rate limit stores in multi-instance deployments.
package redis
