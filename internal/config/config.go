package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const configFileVar = "CONFIG_FILE"

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	DatabaseConfig
	StorageConfig
	RateLimitConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Database
	Storage
	RateLimit
}

// New loads configuration from the environment, optionally overlaid on the
// file named by CONFIG_FILE.
func New() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString(configFileVar); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return newFromViper(v), nil
}

func newFromViper(v *viper.Viper) Config {
	return mainConfig{
		EnvVars:   EnvVars{v: v},
		Cors:      Cors{v: v},
		Tokens:    Tokens{v: v},
		Database:  Database{v: v},
		Storage:   Storage{v: v},
		RateLimit: RateLimit{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(portEnvVar, "8080")
	v.SetDefault(appNameVar, "VideoTube")
	v.SetDefault(folderEnvVar, "./data")
	v.SetDefault(baseURLVar, "http://localhost:8080")
	v.SetDefault(envVar, "DEV")
	v.SetDefault(logLevelVar, "info")

	v.SetDefault(allowedOriginsVar, "http://localhost:3000")

	v.SetDefault(accessExpiryVar, "15m")
	v.SetDefault(refreshExpiryVar, "10d")

	v.SetDefault(s3RegionVar, "us-east-1")
	v.SetDefault(maxUploadBytesVar, 10<<20)

	v.SetDefault(redisDBVar, 0)
	v.SetDefault(loginRateLimitVar, 10)
	v.SetDefault(loginRateWindowVar, "1m")
}

// ParseExpiry parses a token lifetime. It accepts Go durations ("15m",
// "24h"), whole days ("10d") and bare seconds ("3600").
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty expiry")
	}

	if strings.HasSuffix(value, "d") {
		var days int
		if _, err := fmt.Sscanf(value, "%dd", &days); err != nil || fmt.Sprintf("%dd", days) != value {
			return 0, fmt.Errorf("invalid expiry %q", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	var seconds int64
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil && fmt.Sprintf("%d", seconds) == value {
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", value, err)
	}
	return d, nil
}
