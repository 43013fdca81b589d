package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	OptimizeConfig struct {
		Min         bool     `yaml:"min"`
		RemoveColor bool     `yaml:"remove_color"`
		RemoveTitle bool     `yaml:"remove_title"`
		RemoveRoot  bool     `yaml:"remove_root"`
		RemoveAttrs []string `yaml:"remove_attrs" validate:"dive,required"`
		Height      float64  `yaml:"height" validate:"gte=0"`
		MinWidth    float64  `yaml:"min_width" validate:"gte=0"`
		OffsetX     float64  `yaml:"offset_x"`
		OffsetY     float64  `yaml:"offset_y"`
	}

	MarkdownConfig struct {
		AccentColor string `yaml:"accent_color" validate:"required"`
		Height      string `yaml:"height" validate:"required"`
	}

	PreviewConfig struct {
		Destination string `yaml:"destination"`
		Height      int    `yaml:"height" validate:"min=8,max=1024"`
		Background  string `yaml:"background"`
	}

	IconsConfig struct {
		Template  string         `yaml:"template" validate:"required"`
		Postfix   string         `yaml:"postfix"`
		Output    string         `yaml:"output" sanitize:"path_clean" validate:"required,filepath"`
		NameStyle NameStyle      `yaml:"name_style" validate:"gte=0"`
		Header    string         `yaml:"header"`
		Footer    string         `yaml:"footer"`
		Optimize  OptimizeConfig `yaml:"optimize"`
		Markdown  MarkdownConfig `yaml:"markdown"`
		Preview   PreviewConfig  `yaml:"preview"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Icons     IconsConfig    `yaml:"icons"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	IconTemplateFieldName   TemplateFieldName = "template"
	HeaderTemplateFieldName TemplateFieldName = "header"
	FooterTemplateFieldName TemplateFieldName = "footer"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(IconTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(HeaderTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(FooterTemplateFieldName)),
)

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
