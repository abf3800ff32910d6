// Package config loads the TimeNexus configuration file.
//
// The file is TOML. Environment variables written as $VAR or ${VAR} are
// expanded before decoding, so secrets such as the Redis password or the
// MongoDB URI can live in the environment or in a .env file. Every field
// has a default; a missing file yields the defaults.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/timenexus/timenexus/pkg/cache"
	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/integrations/anat"
	"github.com/timenexus/timenexus/pkg/integrations/pathlinker"
	"github.com/timenexus/timenexus/pkg/pipeline"
	"github.com/timenexus/timenexus/pkg/session"
)

// EnvPath names the variable holding the config file path.
const EnvPath = "TIMENEXUS_CONFIG"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheLRU   = "lru"
	CacheRedis = "redis"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionFile   = "file"
	SessionMongo  = "mongo"
)

// Config is the whole configuration.
type Config struct {
	Extraction ExtractionConfig   `toml:"extraction"`
	PathLinker pathlinker.Options `toml:"pathlinker"`
	Anat       anat.Options       `toml:"anat"`
	Cache      CacheConfig        `toml:"cache"`
	Session    SessionConfig      `toml:"session"`
	Server     ServerConfig       `toml:"server"`
}

// ExtractionConfig holds the defaults of the extract command and API.
type ExtractionConfig struct {
	Service  string `toml:"service"`
	Strategy string `toml:"strategy"`
	// SkipChecks disables the layer contiguity check of the queries.
	SkipChecks bool `toml:"skip_checks"`
}

// Validate validates the extraction configuration.
func (c *ExtractionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Service, validation.Required,
			validation.In(pipeline.ServicePathLinker, pipeline.ServiceAnat)),
		validation.Field(&c.Strategy, validation.Required, validation.By(func(any) error {
			_, err := extract.ParseStrategy(c.Strategy)
			return err
		})),
	)
}

// CacheConfig selects where extraction results are cached.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	Size    int           `toml:"size"`
	TTL     time.Duration `toml:"ttl"`
	// Compress snappy-compresses cached results.
	Compress bool `toml:"compress"`
	// Namespace prefixes every key, for deployments sharing a backend.
	Namespace string            `toml:"namespace"`
	Redis     cache.RedisConfig `toml:"redis"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(CacheNone, CacheFile, CacheLRU, CacheRedis)),
		validation.Field(&c.Size, validation.When(c.Backend == CacheLRU, validation.Required, validation.Min(1))),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Redis, validation.By(func(any) error {
			if c.Backend == CacheRedis && c.Redis.Addr == "" {
				return validation.NewError("validation_redis_addr", "addr is required for the redis backend")
			}
			return nil
		})),
	)
}

// Open creates the configured cache. Entries are reported to the cache
// hooks and, when Compress is set, compressed.
func (c *CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	var (
		inner cache.Cache
		err   error
	)
	switch c.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheLRU:
		inner, err = cache.NewLRUCache(c.Size)
	case CacheRedis:
		inner, err = cache.NewRedisCache(ctx, c.Redis)
	default:
		dir := c.Dir
		if dir == "" {
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, fmt.Errorf("get cache dir: %w", err)
			}
		}
		inner, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Backend, err)
	}
	if c.Compress {
		inner = cache.Compressed{Inner: inner}
	}
	return cache.Instrumented{Inner: inner, KeyType: "extraction"}, nil
}

// Keyer returns the key builder of the cache, scoped to Namespace when set.
func (c *CacheConfig) Keyer() cache.Keyer {
	if c.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Namespace+":")
}

// SessionConfig selects where collections are kept between runs.
type SessionConfig struct {
	Backend string              `toml:"backend"`
	Dir     string              `toml:"dir"`
	TTL     time.Duration       `toml:"ttl"`
	Mongo   session.MongoConfig `toml:"mongo"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required,
			validation.In(SessionMemory, SessionFile, SessionMongo)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Mongo, validation.By(func(any) error {
			if c.Backend == SessionMongo && c.Mongo.URI == "" {
				return validation.NewError("validation_mongo_uri", "uri is required for the mongo backend")
			}
			return nil
		})),
	)
}

// Open creates the configured session store.
func (c *SessionConfig) Open(ctx context.Context) (session.Store, error) {
	switch c.Backend {
	case SessionMemory:
		return session.NewMemoryStore(), nil
	case SessionMongo:
		s, err := session.NewMongoStore(ctx, c.Mongo)
		if err != nil {
			return nil, fmt.Errorf("open mongo sessions: %w", err)
		}
		return s, nil
	}
	return session.NewFileStore(c.Dir)
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	// MaxBodyBytes bounds the size of request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
	)
}

// Validate validates the configuration. The first invalid section is
// reported.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"extraction", &c.Extraction},
		{"pathlinker", &c.PathLinker},
		{"anat", &c.Anat},
		{"cache", &c.Cache},
		{"session", &c.Session},
		{"server", &c.Server},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// Services returns the service settings of the pipeline.
func (c *Config) Services() pipeline.Services {
	return pipeline.Services{PathLinker: c.PathLinker, Anat: c.Anat}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Service:  pipeline.ServicePathLinker,
			Strategy: pipeline.DefaultStrategy,
		},
		PathLinker: pathlinker.DefaultOptions(),
		Anat:       anat.DefaultOptions(),
		Cache: CacheConfig{
			Backend: CacheFile,
			Size:    256,
			TTL:     pipeline.DefaultCacheTTL,
		},
		Session: SessionConfig{
			Backend: SessionFile,
			TTL:     session.DefaultTTL,
			Mongo: session.MongoConfig{
				Database:   session.DefaultMongoDatabase,
				Collection: session.DefaultMongoCollection,
			},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
			MaxBodyBytes: 32 << 20,
		},
	}
}

// DefaultPath returns ~/.config/timenexus/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "timenexus", "config.toml"), nil
}

// Load reads the configuration at path over the defaults. An empty path
// falls back to $TIMENEXUS_CONFIG, then to DefaultPath; a default file
// that does not exist yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPath)
		explicit = path != ""
	}
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid configuration",
			"The configuration file %q could not be read.", path)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid configuration",
			"%s: %v", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg after expanding environment variables,
// then validates the result.
func Parse(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	md, err := toml.Decode(expanded, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return cfg.Validate()
}
