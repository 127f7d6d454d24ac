package cliparse

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken         string
	DBPath           string
	PollChannelID    string
	EventsChannelID  string
	QuarterChannelID string
	Timezone         string
}

// ParseFlags reads configuration from CLI flags with environment-variable
// fallback. A .env file in the working directory is loaded first if present.
func ParseFlags(args []string) (Config, error) {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("clubplan", flag.ContinueOnError)

	fs.StringVar(&cfg.BotToken, "token", "", "Bot credential token (prefer BOT_TOKEN env)")
	fs.StringVar(&cfg.DBPath, "db", "", "SQLite database path")
	fs.StringVar(&cfg.PollChannelID, "poll-channel", "", "Weekly poll channel id")
	fs.StringVar(&cfg.EventsChannelID, "events-channel", "", "Event announcements channel id")
	fs.StringVar(&cfg.QuarterChannelID, "quarter-channel", "", "Quarterly poll channel id")
	fs.StringVar(&cfg.Timezone, "tz", "", "Display timezone (IANA name)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.BotToken == "" {
		cfg.BotToken = os.Getenv("BOT_TOKEN")
	}
	if cfg.BotToken == "" {
		return Config{}, errors.New("bot token required (use -token or BOT_TOKEN env)")
	}

	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv("POLL_DB")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "polls.sqlite"
	}

	if cfg.PollChannelID == "" {
		cfg.PollChannelID = os.Getenv("CHANNEL_ID")
	}
	if cfg.EventsChannelID == "" {
		cfg.EventsChannelID = os.Getenv("EVENTS_CHANNEL_ID")
	}
	if cfg.QuarterChannelID == "" {
		cfg.QuarterChannelID = os.Getenv("QUARTER_POLL_CHANNEL_ID")
	}

	if cfg.Timezone == "" {
		cfg.Timezone = os.Getenv("POST_TIMEZONE")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Berlin"
	}

	return cfg, nil
}

// Location resolves the configured display timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.New("invalid POST_TIMEZONE: " + c.Timezone)
	}
	return loc, nil
}
