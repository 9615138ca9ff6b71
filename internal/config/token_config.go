package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	accessSecretVar  = "ACCESS_TOKEN_SECRET"
	accessExpiryVar  = "ACCESS_TOKEN_EXPIRY"
	refreshSecretVar = "REFRESH_TOKEN_SECRET"
	refreshExpiryVar = "REFRESH_TOKEN_EXPIRY"
)

type TokenConfig interface {
	GetAccessTokenSecret() string
	GetAccessTokenExpiry() (time.Duration, error)
	GetRefreshTokenSecret() string
	GetRefreshTokenExpiry() (time.Duration, error)
}

type Tokens struct {
	v *viper.Viper
}

var _ TokenConfig = Tokens{}

func (t Tokens) GetAccessTokenSecret() string {
	return t.v.GetString(accessSecretVar)
}

func (t Tokens) GetAccessTokenExpiry() (time.Duration, error) {
	return ParseExpiry(t.v.GetString(accessExpiryVar))
}

func (t Tokens) GetRefreshTokenSecret() string {
	return t.v.GetString(refreshSecretVar)
}

func (t Tokens) GetRefreshTokenExpiry() (time.Duration, error) {
	return ParseExpiry(t.v.GetString(refreshExpiryVar))
}
