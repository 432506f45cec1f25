package app

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/winshl/pkg/constants"
	"github.com/agentstation/winshl/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// ConfigFile is the configuration file read, if any.
	ConfigFile string

	// Extraction
	WindowsVersion    string
	ContinueOnError   bool
	ASCIICodepage     string
	PreferredLanguage uint32
	KnownDefinitions  []string

	// LogLevel is set by --log-level only. EnvLogLevel comes from
	// log_level in the config file, WINSHL_LOG_LEVEL or LOG_LEVEL.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables (WINSHL_ prefix)
//  3. .env and .env.local files
//  4. Config file (configFile, else ~/.winshl.yaml or ./.winshl.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("ascii_codepage", constants.DefaultASCIICodepage)
	v.SetDefault("preferred_language", "0x0409")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	// The unprefixed LOG_* variables are shared with the logging package.
	for _, key := range []string{"log_level", "log_format", "log_output"} {
		env := strings.ToUpper(key)
		if err := v.BindEnv(key, constants.EnvPrefix+"_"+env, env); err != nil {
			return nil, errors.NewConfigError("env", "binding "+env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(constants.DefaultConfigFile, ".yaml"))
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit config file must exist.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("file", err.Error(), err)
		}
	}

	lang, err := parseLanguage(v.GetString("preferred_language"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		WindowsVersion:    v.GetString("windows_version"),
		ContinueOnError:   v.GetBool("continue_on_error"),
		ASCIICodepage:     v.GetString("ascii_codepage"),
		PreferredLanguage: lang,
		KnownDefinitions:  v.GetStringSlice("known_definitions"),

		EnvLogLevel: v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		LogOutput:   v.GetString("log_output"),
	}, nil
}

// UpdateFromFlags applies parsed command flags, which take precedence over
// the config file and environment variables.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	c.LogLevel = logLevel
}

// parseLanguage accepts a Windows language identifier in decimal or 0x
// hexadecimal form.
func parseLanguage(s string) (uint32, error) {
	lang, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil || lang == 0 {
		return 0, errors.NewConfigError("preferred_language",
			"invalid language identifier "+strconv.Quote(s), err)
	}
	return uint32(lang), nil
}

// loadEnvFiles loads .env and then .env.local. Variables already set are
// not overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
