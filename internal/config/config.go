package config

import (
	"errors"
	"fmt"
	"os"

	"balneario/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig          `yaml:"app"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Backend      BackendConfig      `yaml:"backend"`
	Pricing      PricingConfig      `yaml:"pricing"`
	Venue        VenueConfig        `yaml:"venue"`
	Availability AvailabilityConfig `yaml:"availability"`
	Redis        RedisConfig        `yaml:"redis"`
	Cache        CacheConfig        `yaml:"cache"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Logging      LoggingConfig      `yaml:"logging"`
	Exports      ExportConfig       `yaml:"exports"`
	Bot          BotConfig          `yaml:"bot"`
	Services     []models.Service   `yaml:"services"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type BackendConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RateRPS        float64 `yaml:"rate_rps"`
	RateBurst      int     `yaml:"rate_burst"`
}

// PricingConfig carries the deployment-time tariff. Amounts are whole pesos.
type PricingConfig struct {
	GeneralDay       int64 `yaml:"general_day"`
	GeneralNight     int64 `yaml:"general_night"`
	PrivateWeekday   int64 `yaml:"private_weekday"`
	PrivateWeekend   int64 `yaml:"private_weekend"`
	MinimumSurcharge int64 `yaml:"minimum_surcharge"`
}

type VenueConfig struct {
	Capacity          int `yaml:"capacity"`
	MinPrivateWeekday int `yaml:"min_private_weekday"`
	MinPrivateWeekend int `yaml:"min_private_weekend"`
	MinAdvanceDays    int `yaml:"min_advance_days"`
	MaxAdvanceDays    int `yaml:"max_advance_days"`
}

type AvailabilityConfig struct {
	// FailOpen assumes full availability when the occupancy query fails.
	// Off unless a deployment opts in.
	FailOpen bool `yaml:"fail_open"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	Path string `yaml:"path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type BotConfig struct {
	PaginationSize    int `yaml:"pagination_size"`
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; ignore absence, surface everything else.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url is required")
	}

	if c.Venue.Capacity <= 0 {
		return errors.New("venue capacity must be positive")
	}

	if c.Venue.MinPrivateWeekday <= 0 || c.Venue.MinPrivateWeekend <= 0 {
		return errors.New("private minimum headcounts must be positive")
	}

	return ValidateServices(c.Services)
}

func ValidateServices(services []models.Service) error {
	seen := make(map[string]bool)
	for _, svc := range services {
		if svc.ID == "" {
			return fmt.Errorf("service %q has empty id", svc.Name)
		}
		if seen[svc.ID] {
			return fmt.Errorf("duplicate service id: %s", svc.ID)
		}
		if svc.DayRate < 0 {
			return fmt.Errorf("service %s has negative day rate", svc.ID)
		}
		seen[svc.ID] = true
	}
	return nil
}

// ServiceCatalog builds the lookup used by the pricing engine.
func (c *Config) ServiceCatalog() models.ServiceCatalog {
	catalog := make(models.ServiceCatalog, len(c.Services))
	for _, svc := range c.Services {
		catalog[svc.ID] = svc
	}
	return catalog
}

func (c *Config) applyDefaults() {
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 15
	}
	if c.Backend.RateBurst == 0 {
		c.Backend.RateBurst = 5
	}

	// Tariff defaults mirror the production deployment.
	if c.Pricing.GeneralDay == 0 {
		c.Pricing.GeneralDay = 5000
	}
	if c.Pricing.GeneralNight == 0 {
		c.Pricing.GeneralNight = 10000
	}
	if c.Pricing.PrivateWeekday == 0 {
		c.Pricing.PrivateWeekday = 20000
	}
	if c.Pricing.PrivateWeekend == 0 {
		c.Pricing.PrivateWeekend = 25000
	}
	if c.Pricing.MinimumSurcharge == 0 {
		c.Pricing.MinimumSurcharge = 100000
	}

	if c.Venue.Capacity == 0 {
		c.Venue.Capacity = 120
	}
	if c.Venue.MinPrivateWeekday == 0 {
		c.Venue.MinPrivateWeekday = 10
	}
	if c.Venue.MinPrivateWeekend == 0 {
		c.Venue.MinPrivateWeekend = 15
	}
	if c.Venue.MinAdvanceDays == 0 {
		c.Venue.MinAdvanceDays = 1
	}
	if c.Venue.MaxAdvanceDays == 0 {
		c.Venue.MaxAdvanceDays = 90
	}

	if c.Cache.Path == "" {
		c.Cache.Path = "data/cache.db"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Bot.PaginationSize == 0 {
		c.Bot.PaginationSize = models.DefaultPaginationSize
	}
	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}

	if len(c.Services) == 0 {
		c.Services = []models.Service{
			{ID: models.ServiceKitchen, Name: "Servicio de Cocina", Description: "Acceso completo a la cocina del balneario", DayRate: 25000},
			{ID: models.ServiceRoom, Name: "Servicio de Cuarto", Description: "Habitación privada por noche", DayRate: 50000},
		}
	}
}
