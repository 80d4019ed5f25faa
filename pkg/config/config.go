// Package config loads dashboard settings.
//
// Settings come from three layers, later layers winning:
//
//  1. [Default] values
//  2. a TOML file (bookdash.toml, or the path given with --config)
//  3. BOOKDASH_* environment variables, including those read from a .env
//     file in the working directory
//
// A minimal file:
//
//	[source]
//	kind = "csv"
//	path = "data/best-selling-books.csv"
//
//	[dataset]
//	policy = "fingerprint"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/bookdash/pkg/dataset"
	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/source/csvfile"
)

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "bookdash.toml"

// Source kinds.
const (
	SourceCSV   = "csv"
	SourceMongo = "mongodb"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config holds every setting of the dashboard.
type Config struct {
	Source  SourceConfig  `toml:"source"`
	Dataset DatasetConfig `toml:"dataset"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Render  RenderConfig  `toml:"render"`
	Log     LogConfig     `toml:"log"`

	// File is the TOML file the settings were read from, if any.
	File string `toml:"-"`
}

// SourceConfig selects where book rows come from.
type SourceConfig struct {
	Kind string `toml:"kind"` // csv or mongodb
	Path string `toml:"path"` // csv file

	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	Timeout         time.Duration `toml:"timeout"`
}

// DatasetConfig controls the loaded-dataset cache.
type DatasetConfig struct {
	Policy string `toml:"policy"` // process, fingerprint or watch
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend  string `toml:"backend"` // none, file or redis
	Dir      string `toml:"dir"`     // file cache directory; empty selects the user cache dir
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures the web dashboard.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// RenderConfig sets the default figure size in inches.
type RenderConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:            SourceCSV,
			Path:            csvfile.DefaultPath,
			MongoCollection: "books",
			Timeout:         10 * time.Second,
		},
		Dataset: DatasetConfig{Policy: string(dataset.PolicyProcess)},
		Cache:   CacheConfig{Backend: CacheFile},
		Server:  ServerConfig{Addr: "127.0.0.1:8501"},
		Render:  RenderConfig{Width: render.DefaultWidth, Height: render.DefaultHeight},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the configuration. An empty path reads DefaultFile when it
// exists; a non-empty path must exist. The result is validated.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults without consulting the
// environment.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := undecoded(md); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := undecoded(md); err != nil {
		return err
	}
	c.File = path
	return nil
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(names, ", "))
}

// ApplyEnv overrides settings from BOOKDASH_* variables looked up with
// getenv. Unparseable numbers and durations are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v := getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	str("BOOKDASH_SOURCE", &c.Source.Kind)
	str("BOOKDASH_CSV_PATH", &c.Source.Path)
	str("BOOKDASH_MONGO_URI", &c.Source.MongoURI)
	str("BOOKDASH_MONGO_DATABASE", &c.Source.MongoDatabase)
	str("BOOKDASH_MONGO_COLLECTION", &c.Source.MongoCollection)
	if v := getenv("BOOKDASH_SOURCE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Source.Timeout = d
		}
	}

	str("BOOKDASH_POLICY", &c.Dataset.Policy)

	str("BOOKDASH_CACHE", &c.Cache.Backend)
	str("BOOKDASH_CACHE_DIR", &c.Cache.Dir)
	str("BOOKDASH_REDIS_URL", &c.Cache.RedisURL)
	str("BOOKDASH_CACHE_PREFIX", &c.Cache.Prefix)

	str("BOOKDASH_ADDR", &c.Server.Addr)
	num("BOOKDASH_WIDTH", &c.Render.Width)
	num("BOOKDASH_HEIGHT", &c.Render.Height)
	str("BOOKDASH_LOG_LEVEL", &c.Log.Level)
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.Path == "" {
			problems = append(problems, "source path cannot be empty for the csv source")
		}
	case SourceMongo:
		if c.Source.MongoURI == "" {
			problems = append(problems, "mongo_uri is required for the mongodb source")
		} else if u, err := url.Parse(c.Source.MongoURI); err != nil {
			problems = append(problems, fmt.Sprintf("invalid mongo_uri: %v", err))
		} else if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
			problems = append(problems, fmt.Sprintf("invalid mongo_uri scheme '%s': must be 'mongodb' or 'mongodb+srv'", u.Scheme))
		}
		if c.Source.MongoDatabase == "" {
			problems = append(problems, "mongo_database is required for the mongodb source")
		}
		if c.Source.MongoCollection == "" {
			problems = append(problems, "mongo_collection is required for the mongodb source")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid source kind '%s': must be one of %v", c.Source.Kind, []string{SourceCSV, SourceMongo}))
	}
	if c.Source.Timeout < 0 {
		problems = append(problems, fmt.Sprintf("invalid source timeout %v: must not be negative", c.Source.Timeout))
	}

	if p, err := dataset.ParsePolicy(c.Dataset.Policy); err != nil {
		problems = append(problems, errors.UserMessage(err))
	} else if p == dataset.PolicyWatch && c.Source.Kind != SourceCSV {
		problems = append(problems, "the watch policy needs the csv source")
	}

	backends := []string{CacheNone, CacheFile, CacheRedis}
	if !slices.Contains(backends, c.Cache.Backend) {
		problems = append(problems, fmt.Sprintf("invalid cache backend '%s': must be one of %v", c.Cache.Backend, backends))
	}
	if c.Cache.Backend == CacheRedis {
		if c.Cache.RedisURL == "" {
			problems = append(problems, "redis_url is required for the redis cache")
		} else if u, err := url.Parse(c.Cache.RedisURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid redis_url: %v", err))
		} else if u.Scheme != "redis" && u.Scheme != "rediss" {
			problems = append(problems, fmt.Sprintf("invalid redis_url scheme '%s': must be 'redis' or 'rediss'", u.Scheme))
		}
	}
	if strings.HasPrefix(c.Cache.Dir, "~") {
		problems = append(problems, fmt.Sprintf("cache dir '%s': ~ is not expanded, use an absolute path", c.Cache.Dir))
	}

	if c.Server.Addr == "" {
		problems = append(problems, "server addr cannot be empty")
	}

	if c.Render.Width <= 0 || c.Render.Width > 100 {
		problems = append(problems, fmt.Sprintf("invalid render width %v: must be in (0, 100] inches", c.Render.Width))
	}
	if c.Render.Height <= 0 || c.Render.Height > 100 {
		problems = append(problems, fmt.Sprintf("invalid render height %v: must be in (0, 100] inches", c.Render.Height))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Log.Level, levels))
	}

	return errors.Validation(errors.ErrCodeInvalidConfig, "configuration", problems)
}
