package config

import (
	"github.com/joho/godotenv"

	"github.com/ksyq12/wpstack/internal/errors"
)

// Defaults holds optional pre-filled answers for the interactive prompts,
// loaded from a dotenv file passed to `wpstack setup --defaults`. Empty
// fields are still prompted for.
type Defaults struct {
	Domain     string
	Email      string
	DBUser     string
	DBPassword string
	DBName     string
	SiteName   string
}

// Dotenv keys recognized in a defaults file.
const (
	envDomain     = "WPSTACK_DOMAIN"
	envEmail      = "WPSTACK_EMAIL"
	envDBUser     = "WPSTACK_DB_USER"
	envDBPassword = "WPSTACK_DB_PASSWORD"
	envDBName     = "WPSTACK_DB_NAME"
	envSiteName   = "WPSTACK_SITE_NAME"
)

// LoadDefaults reads prompt defaults from a dotenv file.
func LoadDefaults(path string) (*Defaults, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to read defaults file", err)
	}

	return &Defaults{
		Domain:     env[envDomain],
		Email:      env[envEmail],
		DBUser:     env[envDBUser],
		DBPassword: env[envDBPassword],
		DBName:     env[envDBName],
		SiteName:   env[envSiteName],
	}, nil
}
