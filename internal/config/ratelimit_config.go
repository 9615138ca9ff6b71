package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	redisAddrVar       = "REDIS_ADDR"
	redisPasswordVar   = "REDIS_PASSWORD"
	redisDBVar         = "REDIS_DB"
	loginRateLimitVar  = "LOGIN_RATE_LIMIT"
	loginRateWindowVar = "LOGIN_RATE_WINDOW"
	trustedProxiesVar  = "TRUSTED_PROXIES"
)

type RateLimitConfig interface {
	// GetRedisAddr returns the Redis address. Empty selects the in-memory limiter.
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetLoginRateLimit() int
	GetLoginRateWindow() time.Duration
	// GetTrustedProxies returns the peers whose X-Forwarded-For header is believed.
	GetTrustedProxies() (TrustedProxies, error)
}

// TrustedProxies is a set of addresses and networks.
type TrustedProxies []netip.Prefix

func (t TrustedProxies) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range t {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

type RateLimit struct {
	v *viper.Viper
}

var _ RateLimitConfig = RateLimit{}

func (r RateLimit) GetRedisAddr() string {
	return r.v.GetString(redisAddrVar)
}

func (r RateLimit) GetRedisPassword() string {
	return r.v.GetString(redisPasswordVar)
}

func (r RateLimit) GetRedisDB() int {
	return r.v.GetInt(redisDBVar)
}

func (r RateLimit) GetLoginRateLimit() int {
	return r.v.GetInt(loginRateLimitVar)
}

func (r RateLimit) GetLoginRateWindow() time.Duration {
	return r.v.GetDuration(loginRateWindowVar)
}

// GetTrustedProxies parses the comma separated TRUSTED_PROXIES list of IPs and CIDRs.
func (r RateLimit) GetTrustedProxies() (TrustedProxies, error) {
	var proxies TrustedProxies
	for _, entry := range strings.Split(r.v.GetString(trustedProxiesVar), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return proxies, nil
}
