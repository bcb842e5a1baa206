// Package config handles application configuration from environment
// variables and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "RADAR_CONFIG"
	startDateLayout  = "2006-01-02"
	defaultStartDate = "2019-02-01"
	defaultTimezone  = "America/Sao_Paulo"
)

// DefaultSubjects are the bill subject codes tracked when none are configured.
var DefaultSubjects = []string{"PLS", "PLC", "PEC"}

// NewsFeed describes one RSS feed watched for keyword matches.
type NewsFeed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config holds the application configuration.
type Config struct {
	StartDate            time.Time
	Subjects             []string
	Keywords             []string
	Timezone             string
	DatabasePath         string
	LogLevel             string
	CrawlIntervalMinutes int
	NewsIntervalMinutes  int
	TelegramBotToken     string
	TelegramChatID       int64
	AllowedUsers         []int64
	NewsFeeds            []NewsFeed

	location *time.Location
}

// fileConfig mirrors Config for the optional YAML file.
type fileConfig struct {
	StartDate            string     `yaml:"start_date"`
	Subjects             []string   `yaml:"subjects"`
	Keywords             []string   `yaml:"keywords"`
	Timezone             string     `yaml:"timezone"`
	DatabasePath         string     `yaml:"database_path"`
	LogLevel             string     `yaml:"log_level"`
	CrawlIntervalMinutes int        `yaml:"crawl_interval_minutes"`
	NewsIntervalMinutes  int        `yaml:"news_interval_minutes"`
	TelegramBotToken     string     `yaml:"telegram_bot_token"`
	TelegramChatID       int64      `yaml:"telegram_chat_id"`
	AllowedUsers         []int64    `yaml:"allowed_users"`
	NewsFeeds            []NewsFeed `yaml:"news_feeds"`
}

// Load builds the configuration from defaults, the optional YAML file named
// by RADAR_CONFIG, and environment variable overrides, in that order.
func Load() (*Config, error) {
	raw := rawDefaults()

	if path := os.Getenv(configPathEnv); path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		raw.merge(fc)
	}

	if err := raw.applyEnv(); err != nil {
		return nil, err
	}

	return raw.resolve()
}

// rawConfig carries pre-validation values; resolve turns it into a Config.
type rawConfig struct {
	fileConfig
}

func rawDefaults() *rawConfig {
	return &rawConfig{fileConfig: fileConfig{
		StartDate:            defaultStartDate,
		Subjects:             append([]string(nil), DefaultSubjects...),
		Timezone:             defaultTimezone,
		DatabasePath:         "./data/radar.db",
		LogLevel:             "info",
		CrawlIntervalMinutes: 360,
		NewsIntervalMinutes:  30,
	}}
}

func (r *rawConfig) merge(fc fileConfig) {
	if fc.StartDate != "" {
		r.StartDate = fc.StartDate
	}
	if len(fc.Subjects) > 0 {
		r.Subjects = fc.Subjects
	}
	if len(fc.Keywords) > 0 {
		r.Keywords = fc.Keywords
	}
	if fc.Timezone != "" {
		r.Timezone = fc.Timezone
	}
	if fc.DatabasePath != "" {
		r.DatabasePath = fc.DatabasePath
	}
	if fc.LogLevel != "" {
		r.LogLevel = fc.LogLevel
	}
	if fc.CrawlIntervalMinutes > 0 {
		r.CrawlIntervalMinutes = fc.CrawlIntervalMinutes
	}
	if fc.NewsIntervalMinutes > 0 {
		r.NewsIntervalMinutes = fc.NewsIntervalMinutes
	}
	if fc.TelegramBotToken != "" {
		r.TelegramBotToken = fc.TelegramBotToken
	}
	if fc.TelegramChatID != 0 {
		r.TelegramChatID = fc.TelegramChatID
	}
	if len(fc.AllowedUsers) > 0 {
		r.AllowedUsers = fc.AllowedUsers
	}
	if len(fc.NewsFeeds) > 0 {
		r.NewsFeeds = fc.NewsFeeds
	}
}

func (r *rawConfig) applyEnv() error {
	if v := os.Getenv("START_DATE"); v != "" {
		r.StartDate = v
	}
	if v := os.Getenv("SUBJECTS"); v != "" {
		r.Subjects = splitList(v)
	}
	if v := os.Getenv("KEYWORDS"); v != "" {
		r.Keywords = splitList(v)
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		r.Timezone = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		r.DatabasePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		r.LogLevel = v
	}
	if v := os.Getenv("CRAWL_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CRAWL_INTERVAL_MINUTES %q: %w", v, err)
		}
		r.CrawlIntervalMinutes = n
	}
	if v := os.Getenv("NEWS_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NEWS_INTERVAL_MINUTES %q: %w", v, err)
		}
		r.NewsIntervalMinutes = n
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		r.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		r.TelegramChatID = id
	}
	if v := os.Getenv("ALLOWED_USERS"); v != "" {
		users, err := parseUserList(v)
		if err != nil {
			return err
		}
		r.AllowedUsers = users
	}
	return nil
}

func (r *rawConfig) resolve() (*Config, error) {
	start, err := time.Parse(startDateLayout, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", r.StartDate, err)
	}

	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", r.Timezone, err)
	}

	if len(r.Subjects) == 0 {
		return nil, fmt.Errorf("at least one subject code is required")
	}
	if r.CrawlIntervalMinutes < 1 {
		return nil, fmt.Errorf("crawl interval must be at least 1 minute")
	}
	if r.NewsIntervalMinutes < 1 {
		return nil, fmt.Errorf("news interval must be at least 1 minute")
	}

	return &Config{
		StartDate:            start,
		Subjects:             r.Subjects,
		Keywords:             r.Keywords,
		Timezone:             r.Timezone,
		DatabasePath:         r.DatabasePath,
		LogLevel:             r.LogLevel,
		CrawlIntervalMinutes: r.CrawlIntervalMinutes,
		NewsIntervalMinutes:  r.NewsIntervalMinutes,
		TelegramBotToken:     r.TelegramBotToken,
		TelegramChatID:       r.TelegramChatID,
		AllowedUsers:         r.AllowedUsers,
		NewsFeeds:            r.NewsFeeds,
		location:             loc,
	}, nil
}

// Location returns the civil timezone used for event timestamps.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CrawlInterval returns the bill/agenda crawl period.
func (c *Config) CrawlInterval() time.Duration {
	return time.Duration(c.CrawlIntervalMinutes) * time.Minute
}

// NewsInterval returns the news-feed check period.
func (c *Config) NewsInterval() time.Duration {
	return time.Duration(c.NewsIntervalMinutes) * time.Minute
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func parseUserList(raw string) ([]int64, error) {
	var users []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
		}
		users = append(users, uid)
	}
	return users, nil
}
