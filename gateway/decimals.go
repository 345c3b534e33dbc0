package gateway

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/purelabio/ethgate/eth"
)

/*
Looks up the "decimals()" of tokens, remembering results for the configured
TTL. A token's decimals are fixed at deployment. A TTL of zero disables
caching. Failed lookups are not remembered. Safe for concurrent use.
*/
type DecimalsCache struct {
	ledger Ledger
	cache  *cache.Cache
}

func NewDecimalsCache(ledger Ledger, ttl time.Duration) *DecimalsCache {
	out := &DecimalsCache{ledger: ledger}
	if ttl > 0 {
		out.cache = cache.New(ttl, 2*ttl)
	}
	return out
}

func (self *DecimalsCache) Decimals(ctx context.Context, token eth.Address) (uint8, error) {
	key := token.String()

	if self.cache != nil {
		val, ok := self.cache.Get(key)
		if ok {
			return val.(uint8), nil
		}
	}

	decimals, err := Erc20{token}.QueryDecimals(ctx, self.ledger)
	if err != nil {
		return 0, err
	}

	if self.cache != nil {
		self.cache.SetDefault(key, decimals)
	}
	return decimals, nil
}

// Number of remembered tokens, including expired entries not yet evicted.
func (self *DecimalsCache) Len() int {
	if self.cache == nil {
		return 0
	}
	return self.cache.ItemCount()
}
