package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the billing service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Sheets        SheetsConfig        `mapstructure:"sheets"`
	Layout        LayoutConfig        `mapstructure:"layout"`
	Cycle         CycleConfig         `mapstructure:"cycle"`
	Pricing       PricingConfig       `mapstructure:"pricing"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

// SheetsConfig points the service at the spreadsheet that holds both the
// month tabs and the billing-cycle ledger.
type SheetsConfig struct {
	SpreadsheetURL  string        `mapstructure:"spreadsheet_url"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id"`
	BillingTab      string        `mapstructure:"billing_tab"`
	CredentialsJSON string        `mapstructure:"credentials_json"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	ReadOnly        bool          `mapstructure:"read_only"`
}

// LayoutConfig describes where the month tabs keep their data. Offsets are
// zero-based column indexes into the raw grid.
type LayoutConfig struct {
	ClientColumn        int `mapstructure:"client_column"`
	TypeColumn          int `mapstructure:"type_column"`
	DeliveryPriceColumn int `mapstructure:"delivery_price_column"`
	FirstDateColumn     int `mapstructure:"first_date_column"`
	BlockWidth          int `mapstructure:"block_width"`
	MaxRows             int `mapstructure:"max_rows"`
}

type CycleConfig struct {
	BillingLength int `mapstructure:"billing_length"`
}

// PricingConfig carries the operator-set meal prices used for the draft
// invoice, plus the optional per-day delivery override.
type PricingConfig struct {
	NutriMeal        float64  `mapstructure:"nutri_meal"`
	HighProteinMeal  float64  `mapstructure:"high_protein_meal"`
	SeafoodAddon     float64  `mapstructure:"seafood_addon"`
	GSTPercent       float64  `mapstructure:"gst_percent"`
	DeliveryOverride *float64 `mapstructure:"delivery_override"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	GridTTL time.Duration `mapstructure:"grid_ttl"`
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// Options influence where Load looks for configuration.
type Options struct {
	ConfigFile string
	EnvFile    string
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// Load reads configuration from file and environment (BILLING_ prefix).
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else if cfg := os.Getenv("BILLING_CONFIG_FILE"); cfg != "" {
		v.SetConfigFile(cfg)
		explicitFile = true
	}

	if !explicitFile {
		v.SetConfigName("billing")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are present and derives the spreadsheet ID
// from the URL when only the URL was supplied.
func (c *Config) Validate() error {
	var missing []string

	if c.Sheets.SpreadsheetID == "" {
		if id, ok := SpreadsheetIDFromURL(c.Sheets.SpreadsheetURL); ok {
			c.Sheets.SpreadsheetID = id
		} else {
			missing = append(missing, "BILLING_SHEETS_SPREADSHEET_ID")
		}
	}
	if c.Sheets.CredentialsJSON == "" && c.Sheets.CredentialsFile == "" {
		missing = append(missing, "BILLING_SHEETS_CREDENTIALS_JSON")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Sheets.BillingTab == "" {
		return fmt.Errorf("sheets.billing_tab must not be empty")
	}
	if c.Layout.BlockWidth <= 0 {
		return fmt.Errorf("layout.block_width must be > 0")
	}
	if c.Layout.FirstDateColumn <= c.Layout.DeliveryPriceColumn {
		return fmt.Errorf("layout.first_date_column must come after layout.delivery_price_column")
	}
	if c.Cycle.BillingLength <= 0 {
		return fmt.Errorf("cycle.billing_length must be > 0")
	}
	if c.Pricing.GSTPercent < 0 {
		return fmt.Errorf("pricing.gst_percent must not be negative")
	}
	if c.Cache.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required when cache.enabled is set")
	}
	return nil
}

// SpreadsheetIDFromURL extracts the document ID from a full Sheets URL.
func SpreadsheetIDFromURL(url string) (string, bool) {
	m := spreadsheetIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.body_limit_mb", 1)
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("sheets.billing_tab", "BillingCycle")
	v.SetDefault("sheets.http_timeout", "30s")

	// Matches the layout of the operator's workbook: clients in column B,
	// delivery type in C, delivery price in G, date blocks from H onward.
	v.SetDefault("layout.client_column", 1)
	v.SetDefault("layout.type_column", 2)
	v.SetDefault("layout.delivery_price_column", 6)
	v.SetDefault("layout.first_date_column", 7)
	v.SetDefault("layout.block_width", 6)
	v.SetDefault("layout.max_rows", 2000)

	v.SetDefault("cycle.billing_length", 26)

	v.SetDefault("pricing.nutri_meal", 180.0)
	v.SetDefault("pricing.high_protein_meal", 200.0)
	v.SetDefault("pricing.seafood_addon", 80.0)
	v.SetDefault("pricing.gst_percent", 5.0)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.grid_ttl", "5m")

	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_otlp", false)
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch f.Kind() {
		case reflect.String:
			return time.ParseDuration(data.(string))
		case reflect.Int, reflect.Int64, reflect.Float64:
			return data, nil
		default:
			return data, nil
		}
	}
}
