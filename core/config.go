package core

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	SessionConfig struct {
		MaxAge        time.Duration
		SecureCookies bool
	}

	DraftConfig struct {
		Store       string // memory | redis | postgres
		IdleTimeout time.Duration
		TTL         time.Duration // redis only; 0 keeps drafts until cleared
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	MockConfig struct {
		Addr      string
		Password  string
		SecretKey string
		TokenTTL  time.Duration
	}

	Config struct {
		Env              string
		Debug            bool
		TestMode         bool
		AppName          string
		Build            string
		WorkDir          string
		APIBaseURL       string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail string
		NotifyApplicants bool
		UploadMaxBytes   int64

		Server   ServerConfig
		Session  SessionConfig
		Draft    DraftConfig
		Redis    RedisConfig
		Database DatabaseConfig
		Mock     MockConfig
	}
)

// Address returns the "host:port" of the database server.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultFromAddress parses DefaultFromEmail; the app name is used when no display name is set.
func (c *Config) DefaultFromAddress() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

// NewConfig loads the configuration for the current ENV (DEV (default), TEST, QA or PROD).
// Values come from defaults, then `config/.env.<env>` if it exists, then the environment.
func NewConfig() *Config {
	conf, err := LoadConfig(os.Getenv("ENV"), "")
	if err != nil {
		panic(err)
	}
	return conf
}

// LoadConfig is NewConfig with an explicit environment and working directory.
func LoadConfig(env, workDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env = strings.ToUpper(strings.TrimSpace(env))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}

	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "getting working directory")
		}
		workDir = wd
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		WorkDir:          workDir,
		APIBaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("apiBaseURL")), "/"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		NotifyApplicants: v.GetBool("notifyApplicants"),
		UploadMaxBytes:   v.GetInt64("upload.maxBytes"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Session: SessionConfig{
			MaxAge:        v.GetDuration("session.maxAge"),
			SecureCookies: v.GetBool("session.secureCookies"),
		},
		Draft: DraftConfig{
			Store:       strings.ToLower(v.GetString("draft.store")),
			IdleTimeout: v.GetDuration("draft.idleTimeout"),
			TTL:         v.GetDuration("draft.ttl"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Mock: MockConfig{
			Addr:      v.GetString("mock.addr"),
			Password:  v.GetString("mock.password"),
			SecretKey: v.GetString("mock.secretKey"),
			TokenTTL:  v.GetDuration("mock.tokenTTL"),
		},
	}

	if err := conf.check(); err != nil {
		return nil, err
	}
	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "TClass")
	v.SetDefault("build", "develop")
	v.SetDefault("apiBaseURL", "")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("notifyApplicants", false)
	v.SetDefault("upload.maxBytes", int64(10<<20))

	v.SetDefault("server.host", ":3000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("session.maxAge", 24*time.Hour)
	v.SetDefault("session.secureCookies", false)

	v.SetDefault("draft.store", "memory")
	v.SetDefault("draft.idleTimeout", 2*time.Hour)
	v.SetDefault("draft.ttl", time.Duration(0))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tclass_web")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("mock.addr", ":8000")
	v.SetDefault("mock.password", "tclass-dev")
	v.SetDefault("mock.secretKey", "x1q9-kd7)ab+27=vz&mpr3(k!w)#c4t(#yq2^$hsm8tqa")
	v.SetDefault("mock.tokenTTL", 24*time.Hour)
}

func (c *Config) check() error {
	switch c.Draft.Store {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("config: unknown draft store %q", c.Draft.Store)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("config: upload.maxBytes must be positive")
	}
	return nil
}
