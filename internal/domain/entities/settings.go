package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anmitsu/go-shlex"
	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"gitlab.com/esr/fqme"
	"gopkg.in/yaml.v3"
)

// Settings is the configuration handed to the dispatcher and to every provider.
type Settings struct {
	Timeout   time.Duration               `yaml:"timeout"`
	Encoding  string                      `yaml:"encoding"`
	Verbose   bool                        `yaml:"verbose"`
	Author    Author                      `yaml:"author"`
	Providers map[string]ProviderSettings `yaml:"providers"`

	DryRun bool `yaml:"-"`
}

// Author identifies the committer for embedded backends.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// ProviderSettings tunes one backend.
type ProviderSettings struct {
	Executable  string                 `yaml:"executable"`
	Arguments   string                 `yaml:"arguments"` // extra global tool arguments, shell-split
	Environment map[string]string      `yaml:"environment"`
	Options     map[string]interface{} `yaml:"options"`
	Username    string                 `yaml:"username"`
	Password    string                 `yaml:"password"` // inline, ${ENV_VAR}, or file path
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewDefaultSettings returns settings that work without a config file.
func NewDefaultSettings() *Settings {
	settings := &Settings{Providers: make(map[string]ProviderSettings)}
	settings.applyDefaults()
	return settings
}

// NewSettings loads a YAML or HCL config file, chosen by extension. A ".env" file next to
// the config is loaded into the environment first.
func NewSettings(path string) (*Settings, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, statErr := os.Stat(envFile); statErr == nil {
		if loadErr := godotenv.Load(envFile); loadErr != nil {
			logger.Warnf("Failed to load %q: %v", envFile, loadErr)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings *Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		settings, err = parseHCLSettings(data, path)
	default:
		settings, err = parseYAMLSettings(data)
	}
	if err != nil {
		return nil, err
	}

	for name, provider := range settings.Providers {
		provider.Password = resolveSecret(provider.Password)
		settings.Providers[name] = provider
	}
	settings.applyDefaults()

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}
	return settings, nil
}

func parseYAMLSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
func FindConfigFile() (string, error) {
	locations := []string{".", ".config", "configs"}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	for _, loc := range locations {
		for _, name := range []string{".scmforge", "scmforge"} {
			for _, ext := range []string{".yaml", ".yml", ".hcl"} {
				candidate := filepath.Join(loc, name+ext)
				if _, err := os.Stat(candidate); err == nil {
					return candidate, nil
				}
			}
		}
	}
	return "", errors.New("config file not found in default locations")
}

// resolveSecret expands ${VAR} references and, if the result names an existing file,
// reads the secret from it.
func resolveSecret(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Debugf("Read secret from file %q", resolved)
		return strings.TrimSpace(string(data))
	}
	return resolved
}

func (s *Settings) applyDefaults() {
	if s.Providers == nil {
		s.Providers = make(map[string]ProviderSettings)
	}
	if s.Author.Name == "" || s.Author.Email == "" {
		name, email, err := fqme.WhoAmI()
		if err != nil {
			logger.Debugf("Could not determine the author identity: %v", err)
			return
		}
		if s.Author.Name == "" {
			s.Author.Name = name
		}
		if s.Author.Email == "" {
			s.Author.Email = email
		}
	}
}

func (s *Settings) validate() error {
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	for name, provider := range s.Providers {
		if _, err := ParseProviderType(name); err != nil {
			return fmt.Errorf("providers.%s: %w", name, err)
		}
		if _, err := provider.GlobalArguments(); err != nil {
			return fmt.Errorf("providers.%s.arguments: %w", name, err)
		}
	}
	return nil
}

// Provider returns the settings of one backend, or the zero value.
func (s *Settings) Provider(t ProviderType) ProviderSettings {
	if s == nil {
		return ProviderSettings{}
	}
	return s.Providers[string(t)]
}

// ExecutableOr returns the configured executable or the backend default.
func (p ProviderSettings) ExecutableOr(defaultExecutable string) string {
	if p.Executable != "" {
		return p.Executable
	}
	return defaultExecutable
}

// GlobalArguments splits the extra arguments the way a POSIX shell would.
func (p ProviderSettings) GlobalArguments() ([]string, error) {
	if strings.TrimSpace(p.Arguments) == "" {
		return nil, nil
	}
	args, err := shlex.Split(p.Arguments, true)
	if err != nil {
		return nil, fmt.Errorf("failed to split %q: %w", p.Arguments, err)
	}
	return args, nil
}

// Option returns a string option or def.
func (p ProviderSettings) Option(key, def string) string {
	if v, ok := p.Options[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return def
}

func (p ProviderSettings) BoolOption(key string, def bool) bool {
	if b, err := strconv.ParseBool(p.Option(key, strconv.FormatBool(def))); err == nil {
		return b
	}
	return def
}

func (p ProviderSettings) IntOption(key string, def int) int {
	if n, err := strconv.Atoi(p.Option(key, strconv.Itoa(def))); err == nil {
		return n
	}
	return def
}
