package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the application.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Redis is optional; without an address the ranking cache is a no-op.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RankingCacheTTL time.Duration

	// R2 is optional; without credentials report archiving is disabled.
	R2 R2Config

	ArchiveSweepInterval time.Duration
	ShuffleSeeds         bool

	Rewards RewardTable
}

// R2Config points the report archiver at a Cloudflare R2 bucket.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Configured reports whether enough of the R2 settings are present to
// build an uploader.
func (c R2Config) Configured() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		c.BucketName != "" && c.PublicBaseURL != ""
}

// RewardTier is the payout for one final rank.
type RewardTier struct {
	Credits int
	XP      int
}

// RewardTable maps final ranks to payouts. Ranks beyond third place
// fall back to the Default tier.
type RewardTable struct {
	First   RewardTier
	Second  RewardTier
	Third   RewardTier
	Default RewardTier
}

func (t RewardTable) TierFor(rank int) RewardTier {
	switch rank {
	case 1:
		return t.First
	case 2:
		return t.Second
	case 3:
		return t.Third
	default:
		return t.Default
	}
}

// Load reads the configuration from environment variables, optionally
// loading a .env file first (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationEnv("RANKING_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := durationEnv("ARCHIVE_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	rewards, err := rewardTableFromEnv()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:     dbURL,
		JWTSecretKey:    jwtKey,
		ServerPort:      port,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		RankingCacheTTL: cacheTTL,
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		ArchiveSweepInterval: sweepInterval,
		ShuffleSeeds:         os.Getenv("SHUFFLE_SEEDS") == "true",
		Rewards:              rewards,
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}

func rewardTableFromEnv() (RewardTable, error) {
	table := RewardTable{
		First:   RewardTier{Credits: 500, XP: 1000},
		Second:  RewardTier{Credits: 250, XP: 600},
		Third:   RewardTier{Credits: 100, XP: 300},
		Default: RewardTier{Credits: 50, XP: 100},
	}

	var err error
	if table.First.Credits, err = intEnv("REWARD_CREDITS_FIRST", table.First.Credits); err != nil {
		return table, err
	}
	if table.First.XP, err = intEnv("REWARD_XP_FIRST", table.First.XP); err != nil {
		return table, err
	}
	if table.Second.Credits, err = intEnv("REWARD_CREDITS_SECOND", table.Second.Credits); err != nil {
		return table, err
	}
	if table.Second.XP, err = intEnv("REWARD_XP_SECOND", table.Second.XP); err != nil {
		return table, err
	}
	if table.Third.Credits, err = intEnv("REWARD_CREDITS_THIRD", table.Third.Credits); err != nil {
		return table, err
	}
	if table.Third.XP, err = intEnv("REWARD_XP_THIRD", table.Third.XP); err != nil {
		return table, err
	}
	if table.Default.Credits, err = intEnv("REWARD_CREDITS_OTHER", table.Default.Credits); err != nil {
		return table, err
	}
	if table.Default.XP, err = intEnv("REWARD_XP_OTHER", table.Default.XP); err != nil {
		return table, err
	}
	return table, nil
}
