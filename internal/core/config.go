package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Base URL of the backend REST API.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8000/api/v1"`

	// Where the token pair is persisted. Defaults to the user config dir.
	CredentialsFile string `envconfig:"CREDENTIALS_FILE"`
}

func (c *Config) Init(_ context.Context) error {
	if err := envconfig.Process("gramflow", c); err != nil {
		return err
	}

	if c.CredentialsFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return err
		}
		c.CredentialsFile = filepath.Join(dir, "gramflow", "credentials.json")
	}

	return nil
}
