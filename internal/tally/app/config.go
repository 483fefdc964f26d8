package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/tally/internal/tally/store"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	JWTKey        string        // Required: HMAC secret, at least 32 bytes
	JWTIssuer     string        // Required: iss claim
	JWTAudience   string        // Required: aud claim
	TokenLifetime time.Duration // Optional: access token lifetime (default: 60m)

	DatabaseURL    string // Required: postgres:// URL or sqlite path
	PasswordHasher string // Optional: argon2id or sha256 (default: argon2id)
	PepperFile     string // Optional: path to the password pepper (default: ./pepper)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// Config keys, shared by the YAML file, the environment and flags.
const (
	keyJWTKey        = "jwt.key"
	keyJWTIssuer     = "jwt.issuer"
	keyJWTAudience   = "jwt.audience"
	keyJWTExpiration = "jwt.expiration_in_minutes"
	keyDatabaseURL   = "database.url"
	keyHasher        = "password.hasher"
	keyPepperFile    = "password.pepper_file"
	keyPort          = "http.port"
	keyEnv           = "env"
	keyLogLevel      = "log.level"
	keyLogFormat     = "log.format"
	keyShutdownGrace = "shutdown_grace_period"
)

var defaults = map[string]string{
	keyJWTExpiration: "60",
	keyHasher:        cryptox.HasherArgon2id,
	keyPepperFile:    "pepper",
	keyPort:          "8080",
	keyEnv:           "dev",
	keyLogLevel:      "info",
	keyLogFormat:     "json",
	keyShutdownGrace: "10s",
}

var envKeys = map[string]string{
	"JWT_KEY":                   keyJWTKey,
	"JWT_ISSUER":                keyJWTIssuer,
	"JWT_AUDIENCE":              keyJWTAudience,
	"JWT_EXPIRATION_IN_MINUTES": keyJWTExpiration,
	"DATABASE_URL":              keyDatabaseURL,
	"PASSWORD_HASHER":           keyHasher,
	"PASSWORD_PEPPER_FILE":      keyPepperFile,
	"PORT":                      keyPort,
	"ENV":                       keyEnv,
	"LOG_LEVEL":                 keyLogLevel,
	"LOG_FORMAT":                keyLogFormat,
	"SHUTDOWN_GRACE_PERIOD":     keyShutdownGrace,
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"database-url": keyDatabaseURL,
	"port":         keyPort,
	"env":          keyEnv,
	"log-level":    keyLogLevel,
	"log-format":   keyLogFormat,
	"hasher":       keyHasher,
	"pepper-file":  keyPepperFile,
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("database-url", "", "postgres:// URL or sqlite database path")
	fs.Int("port", 0, "HTTP listen port")
	fs.String("env", "", "environment name (dev, staging, prod)")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (json, text)")
	fs.String("hasher", "", "password hasher (argon2id, sha256)")
	fs.String("pepper-file", "", "path to the password pepper file")
}

// LoadOptions selects the optional configuration sources.
type LoadOptions struct {
	// ConfigFile is a YAML file layered over the environment.
	ConfigFile string

	// Flags, when set, override everything else. Only flags the user
	// actually passed take effect.
	Flags *pflag.FlagSet

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// LoadConfig layers defaults, the environment, an optional YAML file and
// command-line flags, in that order of precedence.
func LoadConfig(opts LoadOptions) (Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for env, key := range envKeys {
		if val := getenv(env); val != "" {
			if err := k.Set(key, val); err != nil {
				return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("env", env).Wrap(err)
			}
		}
	}

	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("file", opts.ConfigFile).Wrap(err)
		}
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	return fromKoanf(k), nil
}

func fromKoanf(k *koanf.Koanf) Config {
	return Config{
		JWTKey:        k.String(keyJWTKey),
		JWTIssuer:     k.String(keyJWTIssuer),
		JWTAudience:   k.String(keyJWTAudience),
		TokenLifetime: parseMinutes(k.String(keyJWTExpiration), jwtx.DefaultTokenLifetime),

		DatabaseURL:    k.String(keyDatabaseURL),
		PasswordHasher: strings.ToLower(strings.TrimSpace(k.String(keyHasher))),
		PepperFile:     k.String(keyPepperFile),

		Env:                 k.String(keyEnv),
		LogLevel:            k.String(keyLogLevel),
		LogFormat:           k.String(keyLogFormat),
		Port:                parseInt(k.String(keyPort), 8080),
		ShutdownGracePeriod: parseDuration(k.String(keyShutdownGrace), 10*time.Second),
	}
}

// TokenConfig is the signing configuration derived from c.
func (c Config) TokenConfig() jwtx.TokenConfig {
	return jwtx.TokenConfig{
		Secret:   []byte(c.JWTKey),
		Issuer:   c.JWTIssuer,
		Audience: c.JWTAudience,
		Lifetime: c.TokenLifetime,
	}
}

// Validate reports every problem at once so operators can fix them in one go.
func (c Config) Validate() error {
	var errs []error

	if err := c.TokenConfig().Validate(); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("database.url is required"))
	}

	switch c.PasswordHasher {
	case "", cryptox.HasherArgon2id, cryptox.HasherSHA256:
	default:
		errs = append(errs, fmt.Errorf("password.hasher %q is not supported", c.PasswordHasher))
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d is out of range", c.Port))
	}
	if c.ShutdownGracePeriod < 0 {
		errs = append(errs, errors.New("shutdown_grace_period must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}
	return oops.Code("CONFIG_INVALID").
		Wrap(fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...)))
}

// Driver is the store driver selected by DatabaseURL.
func (c Config) Driver() string {
	return store.DriverFor(c.DatabaseURL)
}

// parseMinutes reads a whole number of minutes. Anything unparsable falls
// back to def; zero is kept.
func parseMinutes(value string, def time.Duration) time.Duration {
	minutes, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || minutes < 0 {
		return def
	}
	return time.Duration(minutes) * time.Minute
}

func parseInt(value string, def int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return i
	}
	return def
}

func parseDuration(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	// Bare integers are seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return def
}
