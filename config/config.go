package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/doitintl/hello/lighthouse/common"
)

const (
	EngineCLI       = "cli"
	EnginePageSpeed = "pagespeed"
)

var (
	ErrConfigRead    = errors.New("could not read lighthouse config")
	ErrConfigInvalid = errors.New("invalid lighthouse config")
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	ProjectID       string          `mapstructure:"projectId"`
	PubsubTopicID   string          `mapstructure:"pubsubTopicId" validate:"required"`
	DatasetID       string          `mapstructure:"datasetId" validate:"required"`
	TableID         string          `mapstructure:"tableId" validate:"required"`
	LocalDir        string          `mapstructure:"localDir" validate:"required"`
	GCS             GCS             `mapstructure:"gcs"`
	LighthouseFlags LighthouseFlags `mapstructure:"lighthouseFlags"`
	Runner          Runner          `mapstructure:"runner"`
	Source          []Source        `mapstructure:"source" validate:"unique=ID,dive"`
}

type GCS struct {
	BucketName string `mapstructure:"bucketName" validate:"required"`
}

type LighthouseFlags struct {
	Output         []string `mapstructure:"output" validate:"len=3,unique,dive,oneof=html csv json"`
	FormFactor     string   `mapstructure:"formFactor" validate:"omitempty,oneof=mobile desktop"`
	OnlyCategories []string `mapstructure:"onlyCategories"`
	ChromeFlags    []string `mapstructure:"chromeFlags"`
}

type Runner struct {
	Engine       string `mapstructure:"engine" validate:"oneof=cli pagespeed"`
	Binary       string `mapstructure:"binary"`
	APIKey       string `mapstructure:"apiKey"`
	APIKeySecret string `mapstructure:"apiKeySecret"`
}

// Source is a target descriptor, looked up by exact ID match.
type Source struct {
	ID         string `mapstructure:"id" validate:"required,ne=all"`
	URL        string `mapstructure:"url" validate:"required,http_url"`
	FormFactor string `mapstructure:"formFactor" validate:"omitempty,oneof=mobile desktop"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("datasetId", "lighthouse")
	v.SetDefault("tableId", "reports")
	v.SetDefault("localDir", "/tmp")
	v.SetDefault("lighthouseFlags.output", []string{"html", "csv", "json"})
	v.SetDefault("lighthouseFlags.chromeFlags", []string{"--headless", "--no-sandbox"})
	v.SetDefault("runner.engine", EngineCLI)
	v.SetDefault("runner.binary", "lighthouse")
}

// Load reads the JSON config file at path. Scalar keys may be overridden with
// LIGHTHOUSE_ prefixed environment variables, e.g. LIGHTHOUSE_PUBSUBTOPICID.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("LIGHTHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigRead, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigRead, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	if c.Runner.Engine == EnginePageSpeed && c.Runner.APIKey == "" && c.Runner.APIKeySecret == "" {
		return fmt.Errorf("%w: pagespeed engine needs runner.apiKey or runner.apiKeySecret", ErrConfigInvalid)
	}

	return nil
}

// ResolveProjectID settles the project id: a configured projectId wins over
// GOOGLE_CLOUD_PROJECT. The result is stored back into common.ProjectID,
// which logging and secret lookups read.
func (c *Config) ResolveProjectID() error {
	if c.ProjectID == "" {
		if err := common.RequireProjectID(); err != nil {
			return err
		}

		c.ProjectID = common.ProjectID
	}

	common.ProjectID = c.ProjectID

	return nil
}

// FormFactor resolves the per-source override against the global flags.
func (c *Config) FormFactor(s Source) string {
	if s.FormFactor != "" {
		return s.FormFactor
	}

	return c.LighthouseFlags.FormFactor
}
