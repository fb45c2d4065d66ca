package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"storage-bca/internal/finance"
	"storage-bca/internal/policy"
	"storage-bca/internal/strategy"
)

// EnvPrefix prefixes environment overrides, e.g. BCA_FINANCE__DISCOUNT_RATE.
const EnvPrefix = "BCA_"

// Config is the run configuration (YAML or JSON).
type Config struct {
	SettlementPeriodMinutes float64 `yaml:"settlement_period_minutes"`
	StorageRTE              float64 `yaml:"storage_rte"`
	GreenCertificatePrice   float64 `yaml:"green_certificate_price"`

	Finance  FinanceConfig  `yaml:"finance"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Policy   PolicyConfig   `yaml:"policy"`
	Run      RunConfig      `yaml:"run"`
	API      APIConfig      `yaml:"api"`
}

type FinanceConfig struct {
	PowerCapexPerKW     float64 `yaml:"power_capex_per_kw"`
	CapacityCapexPerKWh float64 `yaml:"capacity_capex_per_kwh"`
	AnnualOPEXRate      float64 `yaml:"annual_opex_rate"`
	ProjectLifeYears    int     `yaml:"project_life_years"`
	DiscountRate        float64 `yaml:"discount_rate"`
	IRRFallback         float64 `yaml:"irr_fallback"`
	IRRCeiling          float64 `yaml:"irr_ceiling"`
}

type DispatchConfig struct {
	DischargePriceMultiplier float64 `yaml:"discharge_price_multiplier"`
}

type PolicyConfig struct {
	Method string `yaml:"method"`
	// TransformerRatingMW of 0 selects the method's default rating.
	TransformerRatingMW float64             `yaml:"transformer_rating_mw"`
	ExportCapacityMW    float64             `yaml:"export_transmission_capacity_mw"`
	ReferenceSolarMWp   float64             `yaml:"reference_solar_mwp"`
	Turbine             policy.TurbineCurve `yaml:"turbine"`
}

type RunConfig struct {
	TimeSeries    string `yaml:"timeseries"`
	ScenarioTable string `yaml:"scenario_table"`
	Scenarios     string `yaml:"scenarios"`
	Workers       int    `yaml:"workers"`
	Output        string `yaml:"output"`
	LedgerDir     string `yaml:"ledger_dir"`
}

type APIConfig struct {
	Port           string        `yaml:"port"`
	ResultTTL      time.Duration `yaml:"result_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// Default returns a configuration with every field populated.
func Default() Config {
	return Config{
		SettlementPeriodMinutes: 15,
		StorageRTE:              0.85,
		GreenCertificatePrice:   0,
		Finance: FinanceConfig{
			PowerCapexPerKW:     300,
			CapacityCapexPerKWh: 250,
			AnnualOPEXRate:      0.02,
			ProjectLifeYears:    15,
			DiscountRate:        0.07,
			IRRFallback:         finance.DefaultIRRFallback,
			IRRCeiling:          finance.DefaultIRRCeiling,
		},
		Dispatch: DispatchConfig{
			DischargePriceMultiplier: strategy.DefaultDischargeMultiplier,
		},
		Policy: PolicyConfig{
			Method:            policy.Direct.String(),
			ReferenceSolarMWp: 15,
			Turbine:           policy.DefaultTurbineCurve(),
		},
		Run: RunConfig{
			Scenarios: "ALL",
			Workers:   runtime.NumCPU(),
			Output:    "results/scenarios.csv",
		},
		API: APIConfig{
			Port:      "8080",
			ResultTTL: time.Hour,
		},
	}
}

// Load reads path over the defaults, applies BCA_ environment overrides and
// validates the result. An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Double underscores separate nested keys; the callback maps them to the
	// "." delimiter the provider unflattens on.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	c := Default()
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, err
	}
	c.resolvePaths(path)
	return &c, nil
}

// resolvePaths interprets relative input paths against the config file
// directory when the file exists there.
func (c *Config) resolvePaths(cfgPath string) {
	if cfgPath == "" {
		return
	}
	dir := filepath.Dir(cfgPath)
	for _, p := range []*string{&c.Run.TimeSeries, &c.Run.ScenarioTable} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		cand := filepath.Join(dir, *p)
		if _, err := os.Stat(cand); err == nil {
			*p = cand
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.SettlementPeriodMinutes <= 0 {
		return errors.New("settlement_period_minutes must be > 0")
	}
	if c.StorageRTE <= 0 || c.StorageRTE > 1 {
		return errors.New("storage_rte must be in (0, 1]")
	}
	if err := c.FinanceParams().Validate(); err != nil {
		return fmt.Errorf("finance config invalid: %w", err)
	}
	if c.Dispatch.DischargePriceMultiplier <= 0 {
		return errors.New("dispatch.discharge_price_multiplier must be > 0")
	}
	kind, err := c.PolicyKind()
	if err != nil {
		return fmt.Errorf("policy config invalid: %w", err)
	}
	if _, err := policy.New(kind, c.PolicyParams()); err != nil {
		return fmt.Errorf("policy config invalid: %w", err)
	}
	if c.Run.Workers < 0 {
		return errors.New("run.workers must be >= 0")
	}
	return nil
}

// Step is the settlement period length.
func (c *Config) Step() time.Duration {
	return time.Duration(c.SettlementPeriodMinutes * float64(time.Minute))
}

func (c *Config) FinanceParams() finance.Params {
	f := c.Finance
	return finance.Params{
		PowerCapexPerKW:     f.PowerCapexPerKW,
		CapacityCapexPerKWh: f.CapacityCapexPerKWh,
		OPEXRate:            f.AnnualOPEXRate,
		ProjectLifeYears:    f.ProjectLifeYears,
		DiscountRate:        f.DiscountRate,
		IRRFallback:         f.IRRFallback,
		IRRCeiling:          f.IRRCeiling,
	}
}

func (c *Config) PolicyKind() (policy.Kind, error) {
	return policy.ParseKind(c.Policy.Method)
}

func (c *Config) PolicyParams() policy.Params {
	return policy.Params{
		Turbine:             c.Policy.Turbine,
		TransformerRatingMW: c.Policy.TransformerRatingMW,
		ExportCapacityMW:    c.Policy.ExportCapacityMW,
		ReferenceSolarMWp:   c.Policy.ReferenceSolarMWp,
	}
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yamlv3.Marshal(c)
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	raw, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
