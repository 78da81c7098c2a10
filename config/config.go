// Package config loads the YAML configuration shared by the jobpdf
// binaries.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/revuapp/jobpdf"
	"github.com/revuapp/jobpdf/form"
)

// Config is the top-level configuration.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Branding BrandingConfig `yaml:"branding"`
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
}

// RenderConfig selects the page template and the layout policies.
type RenderConfig struct {
	Template        string  `yaml:"template"`
	FooterPolicy    string  `yaml:"footer_policy"`    // "clamp" or "newpage"
	FooterThreshold float64 `yaml:"footer_threshold"` // mm from the top; 0 keeps the template's
	StrictImages    bool    `yaml:"strict_images"`
	Compress        bool    `yaml:"compress"`
}

// BrandingConfig names the business on generated reports.
type BrandingConfig struct {
	Brand string `yaml:"brand"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	AllowOrigins   []string      `yaml:"allow_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// CacheConfig configures the optional redis render cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Template:     jobpdf.TemplateA4,
			FooterPolicy: jobpdf.FooterClamp.String(),
			Compress:     true,
		},
		Branding: BrandingConfig{
			Brand: form.DefaultBranding.Brand,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			AllowOrigins:   []string{"*"},
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty or
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: creating directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvAddr          = "JOBPDF_ADDR"
	EnvTemplate      = "JOBPDF_TEMPLATE"
	EnvBrand         = "JOBPDF_BRAND"
	EnvRedisAddr     = "JOBPDF_REDIS_ADDR"
	EnvRedisPassword = "JOBPDF_REDIS_PASSWORD"
	EnvRedisDB       = "JOBPDF_REDIS_DB"
)

// ApplyEnv overrides settings from the environment. lookup is normally
// os.LookupEnv. Setting JOBPDF_REDIS_ADDR enables the cache.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvTemplate); ok && v != "" {
		c.Render.Template = v
	}
	if v, ok := lookup(EnvBrand); ok && v != "" {
		c.Branding.Brand = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Cache.Addr = v
		c.Cache.Enabled = true
	}
	if v, ok := lookup(EnvRedisPassword); ok {
		c.Cache.Password = v
	}
	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRedisDB, err)
		}
		c.Cache.DB = db
	}
	return nil
}

// RendererOptions converts the render settings to renderer options. A nil
// logger keeps the renderer's default.
func (c *Config) RendererOptions(logger *log.Logger) ([]jobpdf.Option, error) {
	policy, err := jobpdf.ParseFooterPolicy(c.Render.FooterPolicy)
	if err != nil {
		return nil, fmt.Errorf("config: render: %w", err)
	}
	if _, err := jobpdf.LookupTemplate(c.Render.Template); err != nil {
		return nil, fmt.Errorf("config: render: %w", err)
	}
	opts := []jobpdf.Option{
		jobpdf.WithTemplate(c.Render.Template),
		jobpdf.WithFooterPolicy(policy),
		jobpdf.WithStrictImages(c.Render.StrictImages),
		jobpdf.WithCompression(c.Render.Compress),
	}
	if c.Render.FooterThreshold != 0 {
		opts = append(opts, jobpdf.WithFooterThreshold(c.Render.FooterThreshold))
	}
	if logger != nil {
		opts = append(opts, jobpdf.WithLogger(logger))
	}
	return opts, nil
}

// BrandingFor returns the form branding.
func (c *Config) BrandingFor() form.Branding {
	return form.Branding{Brand: c.Branding.Brand}
}

// NewLogger returns a logger writing to w with a "[component] " prefix.
func NewLogger(w io.Writer, component string) *log.Logger {
	return log.New(w, "["+component+"] ", log.LstdFlags)
}
