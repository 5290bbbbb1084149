package fetch

import (
	"context"
	"time"

	"fontd/internal/backoff"
	"fontd/internal/catalog"
)

func fastRetry(attempts int) backoff.Policy {
	return backoff.Policy{
		Base:        time.Millisecond,
		MaxAttempts: attempts,
		JitterFunc:  func(time.Duration) time.Duration { return 0 },
	}
}

type staticCatalog map[string]catalog.Entry

func (s staticCatalog) FindFamily(_ context.Context, family string) (catalog.Entry, bool, error) {
	e, ok := s[family]
	return e, ok, nil
}
