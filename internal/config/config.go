// Package config loads the connection settings for one export run: the
// application URL, the login credentials and a few optional knobs. Settings
// come from a JSON or YAML file, then environment variables (optionally read
// from a .env file) override individual fields.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Resolve.
const (
	DefaultPath       = "settings.json"
	DefaultOutputPath = "output.csv"
	DefaultDotEnv     = ".env"
)

// Environment variables that override file settings.
const (
	EnvURL      = "DOMEXPORT_URL"
	EnvUsername = "DOMEXPORT_USERNAME"
	EnvPassword = "DOMEXPORT_PASSWORD"
	EnvOutput   = "DOMEXPORT_OUTPUT"
)

// Config holds the settings of one run. It is passed by value.
type Config struct {
	URL      string `json:"url" yaml:"url"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`

	Output      string   `json:"output,omitempty" yaml:"output,omitempty"`             // CSV destination
	VerifyLogin bool     `json:"verify_login,omitempty" yaml:"verify_login,omitempty"` // fail on rejected login
	Timeout     Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`           // 0 = no timeout
	LoginPath   string   `json:"login_path,omitempty" yaml:"login_path,omitempty"`
	OutputsPath string   `json:"outputs_path,omitempty" yaml:"outputs_path,omitempty"`
	CSRFCookie  string   `json:"csrf_cookie,omitempty" yaml:"csrf_cookie,omitempty"`
	UserAgent   string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// String hides the password.
func (c Config) String() string {
	return fmt.Sprintf("Config{URL:%s Username:%s Output:%s VerifyLogin:%t}", c.URL, c.Username, c.Output, c.VerifyLogin)
}

// ValidationError lists the required settings that are missing or invalid.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// LoadFromPath reads a settings file (YAML or JSON) and returns the parsed
// Config. Format is detected by extension or by content.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses settings from bytes. ext is the file extension used as a format
// hint (".json", ".yaml", ".yml"); empty means detect from content.
func Load(data []byte, ext string) (Config, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}

	var c Config
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	case ".yaml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	return c, nil
}

// ApplyEnv overrides fields with any DOMEXPORT_* variables found by lookup.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) Config {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.URL, EnvURL)
	set(&c.Username, EnvUsername)
	set(&c.Password, EnvPassword)
	set(&c.Output, EnvOutput)
	return c
}

// WithDefaults fills optional fields left empty.
func (c Config) WithDefaults() Config {
	if c.Output == "" {
		c.Output = DefaultOutputPath
	}
	return c
}

// Validate checks the three required settings.
func (c Config) Validate() error {
	var problems []string
	if c.URL == "" {
		problems = append(problems, "url is required")
	} else if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("url %q is not an http(s) URL", c.URL))
	}
	if c.Username == "" {
		problems = append(problems, "username is required")
	}
	if c.Password == "" {
		problems = append(problems, "password is required")
	}
	if c.Timeout < 0 {
		problems = append(problems, "timeout must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Resolve builds the run configuration: it loads dotEnvPath if present, reads
// the settings file at path, applies environment overrides and defaults, and
// validates the result. A missing settings file is tolerated when the
// environment supplies every required field.
func Resolve(path, dotEnvPath string) (Config, error) {
	if dotEnvPath != "" {
		if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotEnvPath, err)
		}
	}

	c, err := LoadFromPath(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		env := Config{}.ApplyEnv(os.LookupEnv)
		if env.URL == "" || env.Username == "" || env.Password == "" {
			return Config{}, err
		}
		c = Config{}
	}

	c = c.ApplyEnv(os.LookupEnv).WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Duration is a time.Duration that reads from "30s"-style strings or from a
// number of seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch x := v.(type) {
	case nil:
		*d = 0
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", x, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(x * float64(time.Second))
	case int:
		*d = Duration(time.Duration(x) * time.Second)
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}
