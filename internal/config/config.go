package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full shape of config.yaml
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Log       LogConfig       `mapstructure:"log"`
	Anonymize AnonymizeConfig `mapstructure:"anonymize"`
	Reshape   ReshapeConfig   `mapstructure:"reshape"`
	Collector CollectorConfig `mapstructure:"collector"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // sqlite or mongo
	Path          string `mapstructure:"path"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	LogLevel      string `mapstructure:"log_level"`
}

type IngestConfig struct {
	SourceID    string  `mapstructure:"source_id"`
	PostIDField string  `mapstructure:"post_id_field"`
	RatePerSec  float64 `mapstructure:"rate_per_sec"`
	Burst       int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json or text
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type AnonymizeConfig struct {
	Salt string `mapstructure:"salt"`
}

type ReshapeConfig struct {
	Root      string          `mapstructure:"root"`
	Forum     ForumConfig     `mapstructure:"forum"`
	Social    SocialConfig    `mapstructure:"social"`
	Microblog MicroblogConfig `mapstructure:"microblog"`
}

type ForumConfig struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
	Repair string `mapstructure:"repair"` // random or none
	Seed   int64  `mapstructure:"seed"`   // 0 seeds from the clock
}

type SocialConfig struct {
	Posts     string `mapstructure:"posts"`
	Comments  string `mapstructure:"comments"`
	Output    string `mapstructure:"output"`
	Delimiter string `mapstructure:"delimiter"`
}

type MicroblogConfig struct {
	Shards []string `mapstructure:"shards"`
	Output string   `mapstructure:"output"`
}

type CollectorConfig struct {
	Mode         string `mapstructure:"mode"` // api, public or mock
	UserAgent    string `mapstructure:"user_agent"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Targets      string `mapstructure:"targets"`
	Keywords     string `mapstructure:"keywords"`
	Limit        int    `mapstructure:"limit"`
	Workers      int    `mapstructure:"workers"`
	IngesterURL  string `mapstructure:"ingester_url"`
	Spool        string `mapstructure:"spool"` // NDJSON copy of every submitted result; empty disables
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.mongo_uri", "")
	v.SetDefault("storage.mongo_database", "scraper")
	v.SetDefault("storage.log_level", "warn")

	v.SetDefault("ingest.source_id", "twitter")
	v.SetDefault("ingest.post_id_field", "id_str")
	v.SetDefault("ingest.rate_per_sec", 50.0)
	v.SetDefault("ingest.burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", false)

	v.SetDefault("anonymize.salt", "")

	v.SetDefault("reshape.root", ".")
	v.SetDefault("reshape.forum.input", "reddit_data/raw/reddit_final_data.csv")
	v.SetDefault("reshape.forum.output", "reddit_data/processed/filtered_reddit_data.csv")
	v.SetDefault("reshape.forum.repair", "random")
	v.SetDefault("reshape.forum.seed", 0)
	v.SetDefault("reshape.social.posts", "facebook_data/raw/fb_news_posts.csv")
	v.SetDefault("reshape.social.comments", "facebook_data/raw/fb_news_comments.csv")
	v.SetDefault("reshape.social.output", "facebook_data/processed/filtered_comment_post.csv")
	v.SetDefault("reshape.social.delimiter", "_")
	v.SetDefault("reshape.microblog.shards", []string{
		"twitter_data/raw/samp1.json",
		"twitter_data/raw/samp2.json",
		"twitter_data/raw/samp3.json",
		"twitter_data/raw/samp4.json",
		"twitter_data/raw/samp5.json",
	})
	v.SetDefault("reshape.microblog.output", "twitter_data/processed/filtered_jan_2023.json")

	v.SetDefault("collector.mode", "mock")
	v.SetDefault("collector.user_agent", "")
	v.SetDefault("collector.client_id", "")
	v.SetDefault("collector.client_secret", "")
	v.SetDefault("collector.username", "")
	v.SetDefault("collector.password", "")
	v.SetDefault("collector.targets", "input/subreddits.csv")
	v.SetDefault("collector.keywords", "input/keywords.csv")
	v.SetDefault("collector.limit", 25)
	v.SetDefault("collector.workers", 4)
	v.SetDefault("collector.ingester_url", "http://localhost:8080/data/scraper")
	v.SetDefault("collector.spool", "data/current.json")
}

// Load reads .env, then config.yaml (explicit path, or ./config.yaml, or
// ./config/config.yaml), then the environment. A missing config file is not
// an error; defaults and env vars still apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Names the original deployment used.
	_ = v.BindEnv("storage.path", "STORAGE_PATH", "DB_FILE_PATH")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("collector.mode", "COLLECTOR_MODE")
	_ = v.BindEnv("collector.user_agent", "REDDIT_USER_AGENT")
	_ = v.BindEnv("collector.client_id", "REDDIT_CLIENT_ID")
	_ = v.BindEnv("collector.client_secret", "REDDIT_CLIENT_SECRET")
	_ = v.BindEnv("collector.username", "REDDIT_USERNAME")
	_ = v.BindEnv("collector.password", "REDDIT_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
