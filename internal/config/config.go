// Package config assembles the hike session settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"trailtutor/internal/env"
	"trailtutor/internal/storage"
	"trailtutor/internal/tracker"
)

type Config struct {
	HikeFile  string
	CacheDir  string
	Threshold float64

	// Location source: a GPX file to replay, or a Kafka topic.
	ReplayFile   string
	ReplaySpeed  float64
	KafkaBroker  string
	FixTopic     string
	FixGroupID   string
	NotifyTopic  string
	NtfyURL      string
	NtfyTopic    string
	PostgresDSN  string
	Geocoder     string // "", "nominatim" or "google"
	GoogleAPIKey string

	MirrorToS3 bool
	S3         storage.S3Config
}

// Load reads the configuration. It calls env.LoadEnv first so a .env file in
// the working directory is honoured.
func Load() (*Config, error) {
	env.LoadEnv()

	cfg := &Config{
		HikeFile:     os.Getenv("HIKE_FILE"),
		CacheDir:     env.GetEnv("MEDIA_CACHE_DIR", defaultCacheDir()),
		Threshold:    env.GetFloat("ARRIVAL_RADIUS_METERS", tracker.DefaultThreshold),
		ReplayFile:   os.Getenv("REPLAY_GPX"),
		ReplaySpeed:  env.GetFloat("REPLAY_SPEED", 1),
		KafkaBroker:  os.Getenv("KAFKA_BROKER"),
		FixTopic:     env.GetEnv("KAFKA_FIX_TOPIC", "hike-locations"),
		FixGroupID:   env.GetEnv("KAFKA_GROUP_ID", "trailtutor"),
		NotifyTopic:  os.Getenv("KAFKA_NOTIFY_TOPIC"),
		NtfyURL:      env.GetEnv("NTFY_URL", "https://ntfy.sh"),
		NtfyTopic:    os.Getenv("NTFY_TOPIC"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		Geocoder:     os.Getenv("GEOCODER"),
		GoogleAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		MirrorToS3:   env.GetBool("MEDIA_MIRROR_S3", false),
		S3: storage.S3Config{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    env.GetBool("MINIO_USE_SSL", false),
			Region:    os.Getenv("MINIO_REGION"),
			Bucket:    env.GetEnv("MEDIA_BUCKET", "trailtutor-media"),
			Prefix:    os.Getenv("MEDIA_PREFIX"),
		},
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.HikeFile == "" {
		return fmt.Errorf("HIKE_FILE not set")
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("ARRIVAL_RADIUS_METERS must be positive, got %v", c.Threshold)
	}
	switch c.Geocoder {
	case "", "nominatim":
	case "google":
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GEOCODER=google needs GOOGLE_MAPS_API_KEY")
		}
	default:
		return fmt.Errorf("unknown GEOCODER %q", c.Geocoder)
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "trailtutor", "media")
	}
	return filepath.Join(os.TempDir(), "trailtutor", "media")
}
