// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds the server settings.
type Config struct {
	Addr          string
	WebDir        string
	DatabaseURL   string
	SeedFile      string
	StrictRecipes bool
	OIDC          OIDC
}

// OIDC holds the single sign-on provider settings.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether every SSO setting is present.
func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != "" && o.ClientSecret != "" && o.RedirectURL != ""
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	strict, err := envBool("STRICT_RECIPES", false)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Addr:          env("ADDR", ":8080"),
		WebDir:        env("WEB_DIR", "web"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SeedFile:      os.Getenv("SEED_FILE"),
		StrictRecipes: strict,
		OIDC: OIDC{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
	}, nil
}

// BindFlags registers command-line overrides. The current values become the
// flag defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Addr, "addr", "a", c.Addr, "listen address")
	fs.StringVarP(&c.WebDir, "web-dir", "w", c.WebDir, "directory of the static web app")
	fs.StringVarP(&c.SeedFile, "seed", "s", c.SeedFile, "HuJSON recipe catalog to load at startup")
	fs.BoolVar(&c.StrictRecipes, "strict-recipes", c.StrictRecipes, "refuse to open plans that reference deleted recipes")
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
