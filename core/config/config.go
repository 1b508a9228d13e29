// Package config loads and validates labmigrate settings.
// Values come from, in increasing precedence: defaults, an optional YAML file,
// LABII_* environment variables (a .env file is loaded by main), and command
// flags applied by the cmd package. Each command validates only the sections
// it uses, once, before any remote call.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL        = "https://www.labii.dev"
	defaultLargeTableRows = 500
)

// Config is the full labmigrate configuration.
type Config struct {
	Labii       Labii       `yaml:"labii"`
	Destination Destination `yaml:"destination"`
	Entries     Entries     `yaml:"entries"`
	Files       Files       `yaml:"files"`
	Plasmids    Plasmids    `yaml:"plasmids"`
}

// Labii holds the connection settings (Settings → Organization → SID in Labii).
type Labii struct {
	BaseURL         string `yaml:"base_url" validate:"required,url"`
	OrganizationSID string `yaml:"organization_sid" validate:"required"`
	APIKey          string `yaml:"api_key" validate:"required"`
	APISecret       string `yaml:"api_secret" validate:"required"`
}

// Destination is where new entries are created.
type Destination struct {
	ProjectSID    string `yaml:"project_sid" validate:"required"`
	EntryTableSID string `yaml:"entry_table_sid" validate:"required"`
}

// Entries configures the Benchling entry migration.
type Entries struct {
	Folder         string `yaml:"folder" validate:"required,dir"`
	LargeTableRows int    `yaml:"large_table_rows" validate:"gte=0"`
	KeepGoing      bool   `yaml:"keep_going"`
	PreviewDir     string `yaml:"preview_dir"`
	PreviewFormat  string `yaml:"preview_format" validate:"required,oneof=html markdown json pdf"`
	SkipArchive    bool   `yaml:"skip_archive"`
}

// Files configures the file-as-entry migration.
type Files struct {
	Folder    string `yaml:"folder" validate:"required,dir"`
	KeepGoing bool   `yaml:"keep_going"`
}

// Plasmids configures the GenBank upload onto plasmid records.
type Plasmids struct {
	Folder             string   `yaml:"folder" validate:"required"`
	CollectFrom        string   `yaml:"collect_from" validate:"omitempty,dir"`
	TableSID           string   `yaml:"table_sid" validate:"required"`
	Match              string   `yaml:"match" validate:"required,oneof=name benchling_link"`
	BenchlingColumnSID string   `yaml:"benchling_column_sid" validate:"required_if=Match benchling_link"`
	SectionName        string   `yaml:"section_name" validate:"required"`
	SkipUIDs           []string `yaml:"skip_uids"`
	AllPages           bool     `yaml:"all_pages"`
	KeepGoing          bool     `yaml:"keep_going"`
}

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		Labii:   Labii{BaseURL: defaultBaseURL},
		Entries: Entries{
			LargeTableRows: defaultLargeTableRows,
			PreviewFormat:  "markdown",
		},
		Plasmids: Plasmids{
			Match:       "name",
			SectionName: "Files",
			AllPages:    true,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.Labii.BaseURL = strings.TrimRight(cfg.Labii.BaseURL, "/")
	return cfg, nil
}

// applyEnv overlays LABII_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for name, dst := range map[string]*string{
		"LABII_BASE_URL":          &c.Labii.BaseURL,
		"LABII_ORGANIZATION_SID":  &c.Labii.OrganizationSID,
		"LABII_API_KEY":           &c.Labii.APIKey,
		"LABII_API_SECRET":        &c.Labii.APISecret,
		"LABII_PROJECT_SID":       &c.Destination.ProjectSID,
		"LABII_ENTRY_TABLE_SID":   &c.Destination.EntryTableSID,
		"LABII_PLASMID_TABLE_SID": &c.Plasmids.TableSID,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks one configuration section, e.g. Validate(cfg.Labii).
// The returned error lists every failing field.
func Validate(section any) error {
	err := validate.Struct(section)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Namespace())
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("'%s' is required", field)
	case "dir":
		return fmt.Sprintf("'%s' is not an existing directory: %v", field, fe.Value())
	case "url":
		return fmt.Sprintf("'%s' must be a URL", field)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("'%s' failed '%s' check", field, fe.Tag())
	}
}
