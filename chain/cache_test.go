package chain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestCache_TTL(t *testing.T) {
	req := require.New(t)
	clock := clockwork.NewFakeClock()
	cache := NewCache(time.Hour, clock)

	cache.Set("fren.eth", "0x0904DAc3347eA47d208F3Fd67402D039a3b99859")

	value, ok := cache.Get("fren.eth")
	req.True(ok)
	req.Equal("0x0904DAc3347eA47d208F3Fd67402D039a3b99859", value)

	// When the TTL passes, the entry reads as a miss but still occupies
	// a slot until eviction.
	clock.Advance(time.Hour + time.Second)
	_, ok = cache.Get("fren.eth")
	req.False(ok)
	req.Equal(1, cache.Size())

	req.Equal(1, cache.EvictExpired())
	req.Equal(0, cache.Size())
}

func TestCache_EvictKeepsFreshEntries(t *testing.T) {
	req := require.New(t)
	clock := clockwork.NewFakeClock()
	cache := NewCache(time.Hour, clock)

	cache.Set("old.eth", "0x0904DAc3347eA47d208F3Fd67402D039a3b99859")
	clock.Advance(45 * time.Minute)
	cache.Set("new.eth", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	clock.Advance(30 * time.Minute)

	req.Equal(1, cache.EvictExpired())

	_, ok := cache.Get("new.eth")
	req.True(ok)
	_, ok = cache.Get("old.eth")
	req.False(ok)
}
