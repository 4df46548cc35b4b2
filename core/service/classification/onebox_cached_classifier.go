package classification

import (
	"context"
	"time"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/cache"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// =============================================================================
// Cached Classifier Decorator
// =============================================================================

const classifyCachePrefix = "classify:"

// CachedClassifier memoizes classification results in Redis keyed by
// message id. Re-ingested messages (backfill overlap, IDLE re-delivery)
// skip the LLM entirely.
type CachedClassifier struct {
	inner out.IntentClassifier
	redis *cache.RedisCache
	ttl   time.Duration
}

// NewCachedClassifier wraps inner with a Redis cache. A nil redis cache
// disables memoization.
func NewCachedClassifier(inner out.IntentClassifier, redis *cache.RedisCache, ttl time.Duration) *CachedClassifier {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedClassifier{
		inner: inner,
		redis: redis,
		ttl:   ttl,
	}
}

// Classify consults the cache before delegating to the inner classifier.
// Cache failures fall through to the LLM.
func (c *CachedClassifier) Classify(ctx context.Context, email *domain.Email) (domain.Category, error) {
	key := classifyCachePrefix + email.ID

	if c.redis != nil {
		cached, err := c.redis.Get(ctx, key)
		if err == nil {
			if category := domain.Category(cached); category.IsValid() {
				return category, nil
			}
		}
	}

	category, err := c.inner.Classify(ctx, email)
	if err != nil {
		return category, err
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, category.String(), c.ttl); err != nil {
			logger.WithError(err).WithField("message_id", email.ID).
				Debug("failed to cache classification result")
		}
	}

	return category, nil
}
