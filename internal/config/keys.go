package config

import (
	"fmt"

	"gridiron_intel/ingestion/internal/models"

	"github.com/kelseyhightower/envconfig"
)

// ConfigurationError reports a required setting that is missing.
// It is fatal for the affected sport and must not be retried.
type ConfigurationError struct {
	Var string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is required", e.Var)
}

// APIKeys holds the Sportradar credential for each sport
type APIKeys struct {
	NFL    string `envconfig:"SPORTSRADAR_NFL_KEY"`
	NCAAFB string `envconfig:"SPORTSRADAR_NCAAFB_KEY"`
	NCAAMB string `envconfig:"SPORTSRADAR_NCAAMB_KEY"`
}

// LoadAPIKeys reads the current key environment variables
func LoadAPIKeys() (APIKeys, error) {
	var keys APIKeys
	if err := envconfig.Process("", &keys); err != nil {
		return APIKeys{}, fmt.Errorf("failed to process API key config: %w", err)
	}
	return keys, nil
}

// Key returns the key for sport, or a ConfigurationError naming its variable
func (k APIKeys) Key(sport models.Sport) (string, error) {
	var key string
	switch sport {
	case models.SportNFL:
		key = k.NFL
	case models.SportNCAAFB:
		key = k.NCAAFB
	case models.SportNCAAMB:
		key = k.NCAAMB
	default:
		return "", fmt.Errorf("unknown sport %q", sport)
	}

	if key == "" {
		return "", &ConfigurationError{Var: sport.KeyEnvVar()}
	}
	return key, nil
}

// APIKey satisfies client.KeySource with keys loaded once at startup
func (k APIKeys) APIKey(sport models.Sport) (string, error) {
	return k.Key(sport)
}

// EnvKeys resolves keys from the environment on every call
type EnvKeys struct{}

// APIKey re-reads the environment so rotated or removed keys take effect immediately
func (EnvKeys) APIKey(sport models.Sport) (string, error) {
	keys, err := LoadAPIKeys()
	if err != nil {
		return "", err
	}
	return keys.Key(sport)
}

// NFLAPIKey returns SPORTSRADAR_NFL_KEY
func NFLAPIKey() (string, error) {
	return EnvKeys{}.APIKey(models.SportNFL)
}

// NCAAFBAPIKey returns SPORTSRADAR_NCAAFB_KEY
func NCAAFBAPIKey() (string, error) {
	return EnvKeys{}.APIKey(models.SportNCAAFB)
}

// NCAAMBAPIKey returns SPORTSRADAR_NCAAMB_KEY
func NCAAMBAPIKey() (string, error) {
	return EnvKeys{}.APIKey(models.SportNCAAMB)
}
