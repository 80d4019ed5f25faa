package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/bookdash/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[source]
kind = "mongodb"
mongo_uri = "mongodb://localhost:27017"
mongo_database = "library"
timeout = "3s"

[dataset]
policy = "fingerprint"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
prefix = "staging:"

[render]
width = 8.0
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if cfg.Source.Kind != SourceMongo || cfg.Source.MongoDatabase != "library" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Source.MongoCollection != "books" {
		t.Errorf("collection default lost: %q", cfg.Source.MongoCollection)
	}
	if cfg.Source.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Source.Timeout)
	}
	if cfg.Render.Width != 8 || cfg.Render.Height != 6 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse("[source]\nfile = \"books.csv\"\n")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("error = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(err.Error(), "source.file") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse("[source\n"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidateAggregates(t *testing.T) {
	cfg := Default()
	cfg.Source.Kind = "sqlite"
	cfg.Dataset.Policy = "hourly"
	cfg.Cache.Backend = "memcached"
	cfg.Render.Width = 0
	cfg.Log.Level = "trace"

	err := cfg.Validate()
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("error = %v, want INVALID_CONFIG", err)
	}
	msg := err.Error()
	for _, want := range []string{"source kind 'sqlite'", "hourly", "memcached", "render width", "log level 'trace'"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if n := strings.Count(msg, "\n- "); n != 5 {
		t.Errorf("got %d problems, want 5:\n%s", n, msg)
	}
	if n := len(errors.Details(err)); n != 5 {
		t.Errorf("Details() has %d entries, want 5", n)
	}
}

func TestValidateDependentSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"mongo without uri", func(c *Config) {
			c.Source.Kind = SourceMongo
			c.Source.MongoDatabase = "db"
		}, "mongo_uri is required"},
		{"mongo bad scheme", func(c *Config) {
			c.Source.Kind = SourceMongo
			c.Source.MongoURI = "http://localhost"
			c.Source.MongoDatabase = "db"
		}, "mongo_uri scheme"},
		{"watch needs csv", func(c *Config) {
			c.Source.Kind = SourceMongo
			c.Source.MongoURI = "mongodb://localhost"
			c.Source.MongoDatabase = "db"
			c.Dataset.Policy = "watch"
		}, "watch policy"},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheRedis }, "redis_url is required"},
		{"redis bad scheme", func(c *Config) {
			c.Cache.Backend = CacheRedis
			c.Cache.RedisURL = "tcp://localhost:6379"
		}, "redis_url scheme"},
		{"empty csv path", func(c *Config) { c.Source.Path = "" }, "source path"},
		{"tilde cache dir", func(c *Config) { c.Cache.Dir = "~/cache" }, "not expanded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BOOKDASH_CSV_PATH":       "/data/books.csv",
		"BOOKDASH_POLICY":         "watch",
		"BOOKDASH_CACHE":          "file",
		"BOOKDASH_ADDR":           ":9000",
		"BOOKDASH_WIDTH":          "12.5",
		"BOOKDASH_HEIGHT":         "tall",
		"BOOKDASH_SOURCE_TIMEOUT": "250ms",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Source.Path != "/data/books.csv" || cfg.Dataset.Policy != "watch" {
		t.Errorf("env not applied: %+v %+v", cfg.Source, cfg.Dataset)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Server.Addr != ":9000" {
		t.Errorf("env not applied: %+v %+v", cfg.Cache, cfg.Server)
	}
	if cfg.Render.Width != 12.5 || cfg.Render.Height != 6 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Source.Timeout != 250*time.Millisecond {
		t.Errorf("timeout = %v", cfg.Source.Timeout)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.toml")
	data := "[source]\npath = \"from-file.csv\"\n\n[server]\naddr = \":7000\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOOKDASH_ADDR", ":7001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.File != path {
		t.Errorf("File = %q", cfg.File)
	}
	if cfg.Source.Path != "from-file.csv" {
		t.Errorf("path = %q", cfg.Source.Path)
	}
	if cfg.Server.Addr != ":7001" {
		t.Errorf("env should override the file: addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}
