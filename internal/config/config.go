package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
		Mode string
	}
	Database struct {
		URL string
	}
	Auth struct {
		Secret           string
		SessionTTL       time.Duration
		CookieName       string
		SecureCookies    bool
		BootstrapAdmins  int
		AdminEmails      []string
		PasswordScheme   string
		PBKDF2Iterations int
		SaltLength       int
	}
	Session struct {
		Store         string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		SweepInterval time.Duration
	}
	RateLimit struct {
		LoginPerMinute int
		LoginBurst     int
	}
	Metrics struct {
		Enabled bool
	}
	Log struct {
		Level string
		JSON  bool
	}
	Backup struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
		Keep      int
	}
	AWS struct {
		Profile string
	}
}

const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
)

var ErrMissingSecret = errors.New("auth.secret (or SECRET_KEY) must be set")

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// A missing .env is fine; existing variables win over the file.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Variable names the Flask deployment already used.
	_ = v.BindEnv("database.url", "BLOG_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.secret", "BLOG_AUTH_SECRET", "SECRET_KEY")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Auth.AdminEmails = normalizeEmails(cfg.Auth.AdminEmails)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.url", "blog.db")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.sessionttl", 7*24*time.Hour)
	v.SetDefault("auth.cookiename", "blog_session")
	v.SetDefault("auth.securecookies", false)
	v.SetDefault("auth.bootstrapadmins", 2)
	v.SetDefault("auth.adminemails", []string{})
	v.SetDefault("auth.passwordscheme", "pbkdf2:sha256")
	v.SetDefault("auth.pbkdf2iterations", 600000)
	v.SetDefault("auth.saltlength", 16)
	v.SetDefault("session.store", SessionStoreSQLite)
	v.SetDefault("session.redisaddr", "localhost:6379")
	v.SetDefault("session.redispassword", "")
	v.SetDefault("session.redisdb", 0)
	v.SetDefault("session.sweepinterval", time.Hour)
	v.SetDefault("ratelimit.loginperminute", 10)
	v.SetDefault("ratelimit.loginburst", 5)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.keyprefix", "blog-backups")
	v.SetDefault("backup.region", "us-east-1")
	v.SetDefault("backup.endpoint", "")
	v.SetDefault("backup.keep", 7)
	v.SetDefault("aws.profile", "")
}

// Validate checks the settings the HTTP server cannot start without.
func (c Config) Validate() error {
	if c.Auth.Secret == "" {
		return ErrMissingSecret
	}
	switch c.Session.Store {
	case SessionStoreSQLite, SessionStoreRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.sessionttl must be positive")
	}
	return nil
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, email := range strings.Split(raw, ",") {
			email = strings.ToLower(strings.TrimSpace(email))
			if email != "" {
				out = append(out, email)
			}
		}
	}
	return out
}
