package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/idempotency"
)

func TestRedisKey_DistinguishesFields(t *testing.T) {
	t.Parallel()

	base := idempotency.Fingerprint{Key: "k1", Method: "POST", Route: "/rides", BodyHash: "h1"}
	other := base
	other.BodyHash = "h2"
	// Field boundaries matter: "k1"+"POST" must not equal "k1P"+"OST".
	shifted := idempotency.Fingerprint{Key: "k1P", Method: "OST", Route: "/rides", BodyHash: "h1"}

	assert.Equal(t, redisKey(base), redisKey(base))
	assert.NotEqual(t, redisKey(base), redisKey(other))
	assert.NotEqual(t, redisKey(base), redisKey(shifted))
	assert.Contains(t, redisKey(base), keyPrefix)
}
