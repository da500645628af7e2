package configs

import (
	"errors"
	"os"
	"strings"

	"github.com/kkyr/fig"
	"go.uber.org/zap"
)

type DB struct {
	Host               string `validate:"required"`
	Port               int    `default:"5432"`
	User               string `default:"postgres"`
	Password           string `validate:"required"`
	Database           string `default:"postgres"`
	MaxIdleConnections int    `default:"10"`
	MaxOpenConnections int    `default:"10"`
}

type Server struct {
	Port int `default:"8080"`
}

// Search is the fixed center and radius every venue lookup uses.
type Search struct {
	Latitude     float64 `default:"40.7596"`
	Longitude    float64 `default:"-111.8867"`
	RadiusMeters int     `default:"1500"`
}

// Google holds the Places credentials. A missing API key fails validation at
// startup; there is no per-request recovery from a bad credential.
type Google struct {
	APIKey  string `validate:"required"`
	BaseURL string `default:"https://maps.googleapis.com"`
}

type Integrations struct {
	Venues []string `default:"google_places"`
}

type Auth struct {
	SecretKey string
}

type Config struct {
	DB           DB
	Server       Server
	Search       Search
	Google       Google
	Integrations Integrations
	Auth         Auth
}

const envPrefix = "DINNERGARGOYLE" // env prefix for env vars

var ErrConfiguration = errors.New("configuration error")

func GetConfig(configFileName string, logger *zap.Logger) (*Config, error) {
	config := Config{}
	homeDir, _ := os.UserHomeDir()

	logger.Info("Loading config", zap.String("file", configFileName))

	err := fig.Load(&config, fig.File(configFileName), fig.Dirs(".", homeDir), fig.UseEnv(envPrefix))
	if err != nil {
		if strings.Contains(err.Error(), "file not found") {
			logger.Warn("Could not find config file", zap.String("file", configFileName))

			err = fig.Load(&config, fig.IgnoreFile(), fig.UseEnv(envPrefix))
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	return &config, nil
}
