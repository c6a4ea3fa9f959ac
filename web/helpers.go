package web

import (
	"context"
	"encoding/base64"
	"time"
)

func contextWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
