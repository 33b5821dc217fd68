package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/shopauth/internal/flagx"
)

// EnvConfig lists the environment variables understood by the server.
// Pointer fields stay nil when the variable is unset.
type EnvConfig struct {
	Port                         *string        `env:"PORT"`
	EndpointAddrHTTP             *string        `env:"SERVER_ADDRESS"`
	DatabaseDSN                  *string        `env:"DATABASE_URL"`
	SecretKey                    *string        `env:"JWT_SECRET"`
	AccessTokenValidityDuration  *time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration *time.Duration `env:"REFRESH_TOKEN_TTL"`
	CookieDomain                 *string        `env:"DOMAIN"`
	RefreshCookieName            *string        `env:"REFRESH_COOKIE_NAME"`
	ClientOrigins                *string        `env:"CLIENT_URL"`
	DefaultPicture               *string        `env:"DEFAULT_PICTURE"`
	GoogleClientID               *string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret           *string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL            *string        `env:"GOOGLE_CALLBACK_URL"`
	OAuthSuccessURL              *string        `env:"OAUTH_SUCCESS_URL"`
	RunMigrations                *bool          `env:"RUN_MIGRATIONS"`
	LogLevel                     *string        `env:"LOG_LEVEL"`
}

// parseEnv overlays environment variables onto config. PORT is a bare port
// number; SERVER_ADDRESS, when also set, wins.
func parseEnv(config *Config) error {
	c := EnvConfig{}
	if err := env.Parse(&c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if c.Port != nil && *c.Port != "" {
		config.EndpointAddrHTTP = ":" + *c.Port
	}
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = *c.AccessTokenValidityDuration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = *c.RefreshTokenValidityDuration
	}
	setString(&config.CookieDomain, c.CookieDomain)
	setString(&config.RefreshCookieName, c.RefreshCookieName)
	if c.ClientOrigins != nil {
		config.ClientOrigins = flagx.SplitList(*c.ClientOrigins)
	}
	setString(&config.DefaultPicture, c.DefaultPicture)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleClientSecret, c.GoogleClientSecret)
	setString(&config.GoogleRedirectURL, c.GoogleRedirectURL)
	setString(&config.OAuthSuccessURL, c.OAuthSuccessURL)
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	setString(&config.LogLevel, c.LogLevel)

	return nil
}
