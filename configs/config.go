package config

import (
	"os"
	"strconv"
	"time"
)

type S3 struct {
	AccessKey          string
	SecretKey          string
	Region             string
	Endpoint           string
	QueueBucket        string
	QueueKey           string
	MediaBucket        string
	MediaPublicBaseURL string
}

type Config struct {
	MetaAPIVersion    string
	GraphBaseURL      string
	IGUserID          string
	FBPageID          string
	IGAccessToken     string
	FBPageAccessToken string

	Timezone      string
	OddAMChannel  string
	SlotChannelAM string
	SlotChannelPM string
	CooldownDays  int

	IGPollTimeout  time.Duration
	IGPollInterval time.Duration

	S3 S3

	AdminAPIKey    string
	SecretKey      string
	ApproveBaseURL string

	SchedulerCronAM string
	SchedulerCronPM string

	ListenAddr string
}

func LoadConfig() *Config {
	cfg := &Config{
		MetaAPIVersion:    getEnv("META_API_VERSION", "v23.0"),
		GraphBaseURL:      getEnv("GRAPH_BASE_URL", "https://graph.facebook.com"),
		IGUserID:          getEnv("IG_USER_ID", ""),
		FBPageID:          getEnv("FB_PAGE_ID", ""),
		IGAccessToken:     getEnv("IG_ACCESS_TOKEN", ""),
		FBPageAccessToken: getEnv("FB_PAGE_ACCESS_TOKEN", ""),
		Timezone:          getEnv("TZ", "America/New_York"),
		OddAMChannel:      getEnv("SCHEDULER_ODD_AM", "instagram"),
		SlotChannelAM:     getEnv("SLOT_CHANNEL_AM", ""),
		SlotChannelPM:     getEnv("SLOT_CHANNEL_PM", ""),
		CooldownDays:      getEnvInt("RECENT_COOLDOWN_DAYS", 3),
		IGPollTimeout:     time.Duration(getEnvInt("IG_POLL_TIMEOUT_S", 600)) * time.Second,
		IGPollInterval:    time.Duration(getEnvInt("IG_POLL_INTERVAL_S", 5)) * time.Second,
		S3: S3{
			AccessKey:          getEnv("S3_ACCESS_KEY", ""),
			SecretKey:          getEnv("S3_SECRET_KEY", ""),
			Region:             getEnv("S3_REGION", "auto"),
			Endpoint:           getEnv("S3_ENDPOINT", ""),
			QueueBucket:        getEnv("QUEUE_S3_BUCKET", ""),
			QueueKey:           getEnv("QUEUE_S3_KEY", "social/approved_posts.json"),
			MediaBucket:        getEnv("MEDIA_S3_BUCKET", ""),
			MediaPublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", ""),
		},
		AdminAPIKey:     getEnv("ADMIN_API_KEY", ""),
		SecretKey:       getEnv("SECRET_KEY", ""),
		ApproveBaseURL:  getEnv("APPROVE_BASE_URL", "http://localhost:3000"),
		SchedulerCronAM: getEnv("SCHEDULER_CRON_AM", ""),
		SchedulerCronPM: getEnv("SCHEDULER_CRON_PM", ""),
		ListenAddr:      getEnv("LISTEN_ADDR", ":3000"),
	}

	// single-bucket deployments keep ingested media alongside the queue document
	if cfg.S3.MediaBucket == "" {
		cfg.S3.MediaBucket = cfg.S3.QueueBucket
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
