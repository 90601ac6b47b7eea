package config

import (
	"errors"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
)

type Config struct {
	HTTPPort       int   `env:"HTTP_PORT" env-default:"8080"`
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" env-default:"20971520"`

	CategoryColumn  string `env:"CATEGORY_COLUMN" env-default:"Province"`
	TimestampColumn string `env:"TIMESTAMP_COLUMN" env-default:"SubmissionDate"`
	IDColumn        string `env:"ID_COLUMN" env-default:"KEY"`

	PrimaryLatColumn   string `env:"PRIMARY_LAT_COLUMN" env-default:"Geopoint1-Latitude"`
	PrimaryLonColumn   string `env:"PRIMARY_LON_COLUMN" env-default:"Geopoint1-Longitude"`
	SecondaryLatColumn string `env:"SECONDARY_LAT_COLUMN" env-default:"geopoint-Latitude"`
	SecondaryLonColumn string `env:"SECONDARY_LON_COLUMN" env-default:"geopoint-Longitude"`

	MapZoom int `env:"MAP_ZOOM" env-default:"6"`
}

func New() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig("./config/.env", &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}
