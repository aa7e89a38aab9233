package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted for credentials and default identifiers.
const (
	EnvAPIKey  = "TRELLO_API_KEY"
	EnvToken   = "TRELLO_TOKEN"
	EnvBoardID = "TRELLO_BOARD_ID"
	EnvListID  = "TRELLO_LIST_ID"
)

// ErrMissingCredentials is returned when no API key/token pair could be
// resolved from flags, the environment, or dotenv files.
var ErrMissingCredentials = errors.New("missing Trello credentials: set --api-key/--token or TRELLO_API_KEY/TRELLO_TOKEN")

// Credentials is a resolved API key/token pair.
type Credentials struct {
	APIKey string
	Token  string
}

// LoadDotenv loads .env files into the process environment. With an
// explicit file only that file is read, and a file that cannot be loaded
// is an error; the implicit candidates (./.env, then the global fallback)
// are optional and skipped silently when absent. Variables already set
// are never overridden, so earlier sources win.
func LoadDotenv(explicit, globalFallback string) error {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return fmt.Errorf("load env file %s: %w", explicit, err)
		}
		return nil
	}
	_ = godotenv.Load(".env")
	if globalFallback != "" {
		_ = godotenv.Load(globalFallback)
	}
	return nil
}

// ResolveCredentials picks the key/token pair: flag values win, then the
// environment (which LoadDotenv may have populated).
func ResolveCredentials(flagKey, flagToken string) (Credentials, error) {
	key := strings.TrimSpace(flagKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	token := strings.TrimSpace(flagToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(EnvToken))
	}
	if key == "" || token == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return Credentials{APIKey: key, Token: token}, nil
}

// ResolveID picks an identifier: flag value, then environment variable,
// then config default. Empty when none is set.
func ResolveID(flagValue, envName, configDefault string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v
	}
	return strings.TrimSpace(configDefault)
}
