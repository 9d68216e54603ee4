package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ss13community/banwatch/core/database"
	"github.com/ss13community/banwatch/core/logger"
	"github.com/ss13community/banwatch/core/objectstore"
	"github.com/ss13community/banwatch/core/opsserver"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SourceConfig configures a single upstream adapter instance. Not every
// field is meaningful for every adapter kind; each adapter reads only the
// fields its own contract needs.
type SourceConfig struct {
	// Adapter selects which adapter kind serves this source: "jsonpaged"
	// or "htmltable".
	Adapter string `mapstructure:"adapter"`
	// BaseURL is the jsonpaged adapter's upstream root.
	BaseURL string `mapstructure:"baseUrl"`
	// PerPage is the jsonpaged adapter's page size.
	PerPage int `mapstructure:"perPage" default:"50"`
	// ListURL is the htmltable adapter's ban list page.
	ListURL string `mapstructure:"listUrl"`
}

// Config holds all configuration for the application, divided into
// partial configurations for better modularity.
type Config struct {
	// DBConfig holds the database connection.
	DBConfig database.Config `mapstructure:"dbConfig"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Server holds configuration for the ops HTTP surface.
	Server opsserver.Config `mapstructure:"server"`
	// Archive holds configuration for the optional raw-payload archiver.
	Archive objectstore.Config `mapstructure:"archive"`
	// Sources maps a source name to its adapter configuration.
	Sources map[string]SourceConfig `mapstructure:"sources"`
}

// LoadConfig loads configuration from an optional config file named
// "config" (config.yaml, config.json, ...) under path, an optional .env
// file under path, environment variables, and any flags already parsed onto
// flags (flags may be nil, e.g. in tests). Precedence, lowest to highest:
// struct defaults, config file, environment variables, flags. The .env file
// is loaded into the process environment first and overrides variables
// already set there.
//
// A missing dbConfig section is a fatal startup error.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindDefaults(v, Config{}, "")

	v.SetConfigName("config")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DBConfig.ConnectionString == "" {
		return nil, fmt.Errorf("missing required config section: dbConfig")
	}

	// bindDefaults skips the sources map, so apply SourceConfig's perPage
	// default to each entry here.
	for name, src := range cfg.Sources {
		if src.PerPage <= 0 {
			src.PerPage = 50
			cfg.Sources[name] = src
		}
	}

	return &cfg, nil
}

// bindDefaults uses reflection to walk Config and register every
// 'default' struct tag with viper, so a key exists (and AutomaticEnv can
// see it) even before any file, env var, or flag sets it. Maps and slices
// carry no static keys of their own and are skipped, since the sources
// map's keys are only known at load time.
func bindDefaults(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindDefaults(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Map, reflect.Slice:
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}

// FlagKeys returns every dotted config key discoverable by reflection over
// Config, so the root command can register one `--path.to.key=value`
// override flag per leaf.
func FlagKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			collectKeys(field.Type, key, keys)
		case reflect.Map, reflect.Slice:
			continue
		default:
			*keys = append(*keys, key)
		}
	}
}
