package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/url"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	MinifyConfig struct {
		// base to resolve relative font references against when stylesheet
		// location does not provide better one
		BaseURL            string `yaml:"base_url" validate:"omitempty,url"`
		Media              string `yaml:"media"`
		OutputNameTemplate string `yaml:"output_name_template" validate:"required"`
		Overwrite          bool   `yaml:"overwrite"`
		// all stylesheets of a single run are treated as one document
		SharedScope bool `yaml:"shared_scope"`
	}

	ResourcesConfig struct {
		Fonts    string `yaml:"fonts"`
		Manifest string `yaml:"manifest" sanitize:"assure_file_access"`
		Sniff    bool   `yaml:"sniff"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Minify    MinifyConfig    `yaml:"minify"`
		Resources ResourcesConfig `yaml:"resources"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// Base returns parsed base URL or nil when none is configured.
func (conf *MinifyConfig) Base() (*url.URL, error) {
	if len(conf.BaseURL) == 0 {
		return nil, nil
	}
	u, err := url.Parse(conf.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("bad base url '%s': %w", conf.BaseURL, err)
	}
	return u, nil
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
