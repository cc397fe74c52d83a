package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"TicketPulse/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logging struct {
		Level              string        `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format             string        `yaml:"format" default:"console" validate:"oneof=json console"`
		Output             string        `yaml:"output" default:"stdout"`
		CollectorInterval  time.Duration `yaml:"collector_interval" default:"30s"`
		CollectorThreshold int           `yaml:"collector_threshold" default:"100"`
	} `yaml:"logging"`
	Metrics struct {
		Path        string        `yaml:"path" default:"/metrics"`
		SlowRequest time.Duration `yaml:"slow_request" default:"1s"`
	} `yaml:"metrics"`
	Vendor struct {
		BaseURL   string        `yaml:"base_url" validate:"required,url"`
		APIKey    string        `yaml:"api_key" validate:"required"`
		Action    string        `yaml:"action" default:"getSubCmp"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36"`
		Timeout   time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	} `yaml:"vendor"`
	Monitor struct {
		PollInterval  time.Duration `yaml:"poll_interval" default:"3s" validate:"gte=1s,lte=30s"`
		EnableLogin   bool          `yaml:"enable_login"`
		Password      string        `yaml:"password"`
		AggregatorURL string        `yaml:"aggregator_url" validate:"omitempty,url"`
		SnapshotTTL   time.Duration `yaml:"snapshot_ttl" default:"1m"`
		RefreshBurst  float64       `yaml:"refresh_burst" default:"3"`
		RefreshPerSec float64       `yaml:"refresh_per_sec" default:"0.5"`
	} `yaml:"monitor"`
	Event struct {
		Name                     string `yaml:"name"`
		VenueName                string `yaml:"venue_name"`
		VenueAddress             string `yaml:"venue_address"`
		VenueMapsLink            string `yaml:"venue_maps_link" validate:"omitempty,url"`
		MainRegistrationOpens    string `yaml:"main_registration_opens"`
		MainOpeningText          string `yaml:"main_opening_text"`
		TeacherRegistrationOpens string `yaml:"teacher_registration_opens"`
		TeacherOpeningText       string `yaml:"teacher_opening_text"`
	} `yaml:"event"`
	Tiers       []Tier `yaml:"tiers" validate:"required,min=1,dive"`
	TeacherTier string `yaml:"teacher_tier"`
	Redis       struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"ticketpulse"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled       bool          `yaml:"enabled"`
		Brokers       []string      `yaml:"brokers"`
		SnapshotTopic string        `yaml:"snapshot_topic" default:"ticketpulse.snapshots"`
		LogTopic      string        `yaml:"log_topic" default:"ticketpulse.logs"`
		RequiredAcks  int           `yaml:"required_acks" default:"1"`
		Compression   string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts   int           `yaml:"max_attempts" default:"3"`
		WriteTimeout  time.Duration `yaml:"write_timeout" default:"5s"`
		Async         bool          `yaml:"async"`
	} `yaml:"kafka"`
}

// Tier is the YAML shape of one ticket tier.
type Tier struct {
	Name            string `yaml:"name" validate:"required"`
	ExternalID      string `yaml:"external_id" validate:"required"`
	Price           string `yaml:"price"`
	BookingLink     string `yaml:"booking_link" validate:"omitempty,url"`
	NominalCapacity int    `yaml:"nominal_capacity" validate:"gte=0"`
	PartySize       int    `yaml:"party_size" validate:"gte=0"`
	SoldOut         bool   `yaml:"sold_out"`
	Enabled         *bool  `yaml:"enabled"` // nil means enabled
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse applies defaults, decodes YAML over them and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Validation runs after the overrides so secrets may come from the environment only.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("VENDOR_API_KEY"); v != "" {
		c.Vendor.APIKey = v
	}
	if v := getenv("VENDOR_BASE_URL"); v != "" {
		c.Vendor.BaseURL = v
	}
	if v := getenv("MONITOR_PASSWORD"); v != "" {
		c.Monitor.Password = v
	}
	if v := getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POLL_INTERVAL: %w", err)
		}
		c.Monitor.PollInterval = d
	}
	if v := getenv("HTTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR port: %w", err)
		}
		c.Redis.Host, c.Redis.Port = host, p
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	names := make(map[string]struct{}, len(c.Tiers))
	ids := make(map[string]struct{}, len(c.Tiers))
	for _, t := range c.Tiers {
		if _, dup := names[t.Name]; dup {
			return fmt.Errorf("tiers: duplicate name %q", t.Name)
		}
		if _, dup := ids[t.ExternalID]; dup {
			return fmt.Errorf("tiers: duplicate external_id %q", t.ExternalID)
		}
		names[t.Name] = struct{}{}
		ids[t.ExternalID] = struct{}{}
	}
	if c.TeacherTier != "" {
		if _, ok := names[c.TeacherTier]; !ok {
			return fmt.Errorf("teacher_tier %q is not a configured tier", c.TeacherTier)
		}
	}
	if c.Monitor.EnableLogin && c.Monitor.Password == "" {
		return fmt.Errorf("monitor.password is required when monitor.enable_login is set")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// IsEnabled reports whether the tier is shown and monitored.
func (t Tier) IsEnabled() bool { return t.Enabled == nil || *t.Enabled }

// Model converts the YAML tier into the domain value.
func (t Tier) Model() models.TierConfig {
	return models.TierConfig{
		Name:            t.Name,
		ExternalID:      t.ExternalID,
		PriceLabel:      t.Price,
		BookingLink:     t.BookingLink,
		NominalCapacity: t.NominalCapacity,
		PartySize:       t.PartySize,
		SoldOut:         t.SoldOut,
		Enabled:         t.IsEnabled(),
	}
}

// AllTiers returns a fresh copy of every configured tier, in file order.
func (c *Config) AllTiers() []models.TierConfig {
	out := make([]models.TierConfig, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		out = append(out, t.Model())
	}
	return out
}

// ActiveTiers returns a fresh copy of the enabled tiers, in file order.
func (c *Config) ActiveTiers() []models.TierConfig {
	out := make([]models.TierConfig, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.IsEnabled() {
			out = append(out, t.Model())
		}
	}
	return out
}

// EventInfo returns the static event metadata.
func (c *Config) EventInfo() models.EventInfo {
	return models.EventInfo{
		Name:          c.Event.Name,
		VenueName:     c.Event.VenueName,
		VenueAddress:  c.Event.VenueAddress,
		VenueMapsLink: c.Event.VenueMapsLink,
		Main: models.RegistrationWindow{
			OpensAt:     c.Event.MainRegistrationOpens,
			OpeningText: c.Event.MainOpeningText,
		},
		Teacher: models.RegistrationWindow{
			OpensAt:     c.Event.TeacherRegistrationOpens,
			OpeningText: c.Event.TeacherOpeningText,
		},
	}
}
