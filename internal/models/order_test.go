package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyKeyGoldenVector(t *testing.T) {
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	key := IdempotencyKey("R1", "TRI", "1-2-3", 500, ts)

	// sha256("R1|TRI|1-2-3|500|2024-06-01T10:00:00Z")
	assert.Equal(t, "2c32ca98a7282f157aceb44a6c6f9bc114695b801420cbef9c36edd9ab54fb14", key)
}

func TestIdempotencyKeyIsDeterministic(t *testing.T) {
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	first := IdempotencyKey("R1", "TRI", "1-2-3", 500, ts)
	second := IdempotencyKey("R1", "TRI", "1-2-3", 500, ts)

	assert.Equal(t, first, second)
}

func TestIdempotencyKeyCanonicalizesTimezone(t *testing.T) {
	utc := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	tokyo := utc.In(time.FixedZone("JST", 9*3600))

	assert.Equal(t,
		IdempotencyKey("R1", "TRI", "1-2-3", 500, utc),
		IdempotencyKey("R1", "TRI", "1-2-3", 500, tokyo),
	)
}

func TestIdempotencyKeySensitiveToEveryField(t *testing.T) {
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	base := IdempotencyKey("R1", "TRI", "1-2-3", 500, ts)

	variants := []string{
		IdempotencyKey("R2", "TRI", "1-2-3", 500, ts),
		IdempotencyKey("R1", "QN", "1-2-3", 500, ts),
		IdempotencyKey("R1", "TRI", "1-3-2", 500, ts),
		IdempotencyKey("R1", "TRI", "1-2-3", 501, ts),
		IdempotencyKey("R1", "TRI", "1-2-3", 500, ts.Add(time.Second)),
	}

	for i, v := range variants {
		assert.NotEqual(t, base, v, "variant %d should produce a different key", i)
	}
}
