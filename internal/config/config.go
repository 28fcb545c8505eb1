package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/statements-cli/internal/statement"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig       `yaml:"store" mapstructure:"store"`
	EDGAR   EDGARConfig       `yaml:"edgar" mapstructure:"edgar"`
	Extract ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Fiscal  FiscalConfig      `yaml:"fiscal" mapstructure:"fiscal"`
	Tickers map[string]string `yaml:"tickers" mapstructure:"tickers"`
	Export  ExportConfig      `yaml:"export" mapstructure:"export"`
	Log     LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// EDGARConfig configures access to SEC EDGAR.
type EDGARConfig struct {
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	SubmissionsURL string `yaml:"submissions_url" mapstructure:"submissions_url"`
	ArchivesURL    string `yaml:"archives_url" mapstructure:"archives_url"`
	TickersURL     string `yaml:"tickers_url" mapstructure:"tickers_url"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// Timeout returns the HTTP timeout as a duration.
func (c EDGARConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ExtractConfig configures filing discovery, pacing and extraction.
type ExtractConfig struct {
	Forms             []string            `yaml:"forms" mapstructure:"forms"`
	IncludeAmendments bool                `yaml:"include_amendments" mapstructure:"include_amendments"`
	BatchSize         int                 `yaml:"batch_size" mapstructure:"batch_size"`
	BatchPause        time.Duration       `yaml:"batch_pause" mapstructure:"batch_pause"`
	DocumentDelay     time.Duration       `yaml:"document_delay" mapstructure:"document_delay"`
	Workers           int                 `yaml:"workers" mapstructure:"workers"`
	CacheTTLHours     int                 `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	MatchCaption      bool                `yaml:"match_caption" mapstructure:"match_caption"`
	Keywords          map[string][]string `yaml:"keywords" mapstructure:"keywords"`
}

// FiscalConfig maps tickers to fiscal calendars. Calendars listed here win
// over the fiscal year end reported by EDGAR.
type FiscalConfig struct {
	Calendars     map[string]statement.Calendar `yaml:"calendars" mapstructure:"calendars"`
	CalendarsFile string                        `yaml:"calendars_file" mapstructure:"calendars_file"`
}

// ExportConfig configures workbook output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// KnownCIKs seeds the static ticker lookup so common filers resolve without
// a network call.
var KnownCIKs = map[string]string{
	"WMT":   "0000104169",
	"AAPL":  "0000320193",
	"MSFT":  "0000789019",
	"GOOGL": "0001652044",
	"GOOG":  "0001652044",
	"AMZN":  "0001018724",
	"TSLA":  "0001318605",
	"META":  "0001326801",
	"NVDA":  "0001045810",
	"JPM":   "0000019617",
	"V":     "0001403161",
	"MA":    "0001141391",
	"JNJ":   "0000200406",
	"PG":    "0000080424",
	"KO":    "0000021344",
	"PEP":   "0000077476",
	"NKE":   "0000320187",
	"DIS":   "0001744489",
	"NFLX":  "0001065280",
	"INTC":  "0000050863",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STATEMENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "statements.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("edgar.user_agent", "Sells Advisors research@sellsadvisors.com")
	v.SetDefault("edgar.submissions_url", "https://data.sec.gov/submissions")
	v.SetDefault("edgar.archives_url", "https://www.sec.gov/Archives/edgar/data")
	v.SetDefault("edgar.tickers_url", "https://www.sec.gov/files/company_tickers.json")
	v.SetDefault("edgar.timeout_secs", 30)
	v.SetDefault("edgar.max_retries", 3)
	v.SetDefault("extract.forms", []string{"10-Q", "10-K"})
	v.SetDefault("extract.include_amendments", false)
	v.SetDefault("extract.batch_size", 5)
	v.SetDefault("extract.batch_pause", 2*time.Second)
	v.SetDefault("extract.document_delay", time.Second)
	v.SetDefault("extract.workers", 4)
	v.SetDefault("extract.cache_ttl_hours", 24*30)
	v.SetDefault("extract.match_caption", false)
	v.SetDefault("export.dir", ".")
	v.SetDefault("tickers", KnownCIKs)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	cfg.Fiscal.Calendars = upperKeys(cfg.Fiscal.Calendars)
	cfg.Tickers = upperKeys(cfg.Tickers)

	if cfg.Fiscal.CalendarsFile != "" {
		cals, err := LoadCalendars(cfg.Fiscal.CalendarsFile)
		if err != nil {
			return nil, err
		}
		if cfg.Fiscal.Calendars == nil {
			cfg.Fiscal.Calendars = make(map[string]statement.Calendar, len(cals))
		}
		for ticker, cal := range cals {
			if _, ok := cfg.Fiscal.Calendars[ticker]; !ok {
				cfg.Fiscal.Calendars[ticker] = cal
			}
		}
	}

	return &cfg, nil
}

// calendarsFile is the standalone fiscal calendar document:
//
//	calendars:
//	  WMT: {year_end_month: 1}
//	  MSFT: {year_end_month: 6}
type calendarsFile struct {
	Calendars map[string]statement.Calendar `yaml:"calendars"`
}

// LoadCalendars reads per-ticker fiscal calendars from a YAML file.
func LoadCalendars(path string) (map[string]statement.Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read calendars file %s", path)
	}
	var f calendarsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "config: parse calendars file %s", path)
	}
	for ticker, cal := range f.Calendars {
		if cal.YearEndMonth < 1 || cal.YearEndMonth > 12 {
			return nil, eris.Errorf("config: calendar for %s: year_end_month %d out of range", ticker, cal.YearEndMonth)
		}
	}
	return upperKeys(f.Calendars), nil
}

// Calendar returns the configured fiscal calendar for ticker, if any.
func (c *Config) Calendar(ticker string) (statement.Calendar, bool) {
	cal, ok := c.Fiscal.Calendars[strings.ToUpper(ticker)]
	return cal, ok
}

// StatementKeywords converts configured keyword overrides to classifier input.
func (c *Config) StatementKeywords() (map[statement.Type][]string, error) {
	out := make(map[statement.Type][]string, len(c.Extract.Keywords))
	for name, kws := range c.Extract.Keywords {
		t, err := statement.ParseType(name)
		if err != nil {
			return nil, eris.Wrap(err, "config: extract.keywords")
		}
		out[t] = kws
	}
	return out, nil
}

// Validate checks that required fields are present for the given mode.
// Valid modes: "extract", "store".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "extract":
		if strings.TrimSpace(c.EDGAR.UserAgent) == "" {
			errs = append(errs, "edgar.user_agent is required (SEC rejects anonymous clients)")
		}
		if len(c.Extract.Forms) == 0 {
			errs = append(errs, "extract.forms must list at least one form type")
		}
		if c.Extract.BatchSize < 1 {
			errs = append(errs, "extract.batch_size must be >= 1")
		}
		if c.Extract.Workers < 1 || c.Extract.Workers > 32 {
			errs = append(errs, "extract.workers must be between 1 and 32")
		}
		if c.Extract.BatchPause < 0 || c.Extract.DocumentDelay < 0 {
			errs = append(errs, "extract pacing delays must be >= 0")
		}
		if _, err := c.StatementKeywords(); err != nil {
			errs = append(errs, err.Error())
		}
		for _, ticker := range slices.Sorted(maps.Keys(c.Fiscal.Calendars)) {
			if m := c.Fiscal.Calendars[ticker].YearEndMonth; m < 1 || m > 12 {
				errs = append(errs, fmt.Sprintf("fiscal.calendars.%s.year_end_month must be between 1 and 12, got %d", ticker, m))
			}
		}
		errs = append(errs, c.storeErrors()...)
	case "store":
		errs = append(errs, c.storeErrors()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: validation failed: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func (c *Config) storeErrors() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

func upperKeys[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
