package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Replica kinds understood by the server.
const (
	ReplicaBDO      = "bdo"
	ReplicaSQLite   = "sqlite"
	ReplicaPostgres = "postgres"
)

type Config struct {
	Env         string
	DB          db
	Server      server
	Logger      logger
	Geocoder    geocoder
	Replication replication
	Admin       admin
	Search      search
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

type logger struct {
	// Level overrides the environment's default level when set.
	Level string `env:"LOG_LEVEL"`
}

type geocoder struct {
	URL       string        `env:"GEOCODER_URL"`
	Timeout   time.Duration `env:"GEOCODER_TIMEOUT"`
	UserAgent string        `env:"GEOCODER_USER_AGENT"`
}

type replication struct {
	Replicas       []ReplicaSpec `env:"REPLICAS"`
	Timeout        time.Duration `env:"REPLICA_TIMEOUT"`
	RetryInterval  time.Duration `env:"REPLICA_RETRY_INTERVAL"`
	Hash           string        `env:"REPLICA_HASH"`
	CredentialPath string        `env:"CREDENTIAL_PATH"`
}

type admin struct {
	PublicKey string        `env:"ADMIN_PUBLIC_KEY"`
	Window    time.Duration `env:"ADMIN_SIGNATURE_WINDOW"`
}

type search struct {
	RadiusMiles float64 `env:"SEARCH_RADIUS_MILES"`
}

// UseDatabaseURI as a postgres replica target means "connect to DATABASE_URI".
const UseDatabaseURI = "database_uri"

// ReplicaSpec is one configured replication endpoint, written as kind=target.
type ReplicaSpec struct {
	Kind   string
	Target string
}

func (r ReplicaSpec) String() string {
	return r.Kind + "=" + r.Target
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":3000")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("geocoder_url", "https://api.zippopotam.us/us")
	v.SetDefault("geocoder_timeout", 8*time.Second)
	v.SetDefault("geocoder_user_agent", "vigil/1.0")
	v.SetDefault("replicas", "sqlite=./data/replica.db")
	v.SetDefault("replica_timeout", 8*time.Second)
	v.SetDefault("replica_retry_interval", 30*time.Second)
	v.SetDefault("replica_hash", "vigils")
	v.SetDefault("credential_path", "./data/credential.json")
	v.SetDefault("admin_signature_window", 2*time.Minute)
	v.SetDefault("search_radius_miles", 10.0)
}

// Load reads .env (if present), the optional config file and the environment.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	replicas, err := ParseReplicas(v.GetString("replicas"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: db{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: server{
			RunAddress:      v.GetString("run_address"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Logger: logger{Level: strings.ToLower(strings.TrimSpace(v.GetString("log_level")))},
		Geocoder: geocoder{
			URL:       v.GetString("geocoder_url"),
			Timeout:   v.GetDuration("geocoder_timeout"),
			UserAgent: v.GetString("geocoder_user_agent"),
		},
		Replication: replication{
			Replicas:       replicas,
			Timeout:        v.GetDuration("replica_timeout"),
			Hash:           v.GetString("replica_hash"),
			CredentialPath: v.GetString("credential_path"),
		},
		Admin: admin{
			PublicKey: strings.TrimSpace(v.GetString("admin_public_key")),
			Window:    v.GetDuration("admin_signature_window"),
		},
		Search: search{RadiusMiles: v.GetFloat64("search_radius_miles")},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseReplicas parses "kind=target,kind=target".
func ParseReplicas(raw string) ([]ReplicaSpec, error) {
	var specs []ReplicaSpec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, target, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(target) == "" {
			return nil, fmt.Errorf("replica %q: expected kind=target", part)
		}
		kind = strings.ToLower(strings.TrimSpace(kind))
		switch kind {
		case ReplicaBDO, ReplicaSQLite, ReplicaPostgres:
		default:
			return nil, fmt.Errorf("replica %q: unknown kind %q", part, kind)
		}
		specs = append(specs, ReplicaSpec{Kind: kind, Target: strings.TrimSpace(target)})
	}
	return specs, nil
}

func (c *Config) validate() error {
	if c.Server.RunAddress == "" {
		return errors.New("run_address must not be empty")
	}
	if len(c.Replication.Replicas) == 0 {
		return errors.New("at least one replica must be configured")
	}
	if c.Replication.CredentialPath == "" {
		return errors.New("credential_path must not be empty")
	}
	if c.Search.RadiusMiles <= 0 {
		return fmt.Errorf("search_radius_miles must be positive, got %v", c.Search.RadiusMiles)
	}
	for _, r := range c.Replication.Replicas {
		if r.Kind == ReplicaPostgres && r.Target == UseDatabaseURI && c.DB.DatabaseURI == "" {
			return errors.New("postgres replica points at database_uri, but database_uri is empty")
		}
	}
	return nil
}
