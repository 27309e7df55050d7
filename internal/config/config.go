package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the full runtime configuration. All fields can come
// from the YAML config file; string fields support ${VAR} expansion
// from the environment.
type Config struct {
	// Backend selects the model provider: "anthropic", "openai",
	// "ollama" or "disabled"
	Backend string `yaml:"backend"`

	// Model overrides the backend's default model name
	Model string `yaml:"model"`

	// Endpoint overrides the API base URL (OpenAI-compatible backends)
	Endpoint string `yaml:"endpoint"`

	// APIKey is the provider credential; usually left empty so the
	// standard environment variables are used instead
	APIKey string `yaml:"api_key"`

	// MaxConcurrentCalls bounds in-flight model calls
	MaxConcurrentCalls int `yaml:"max_concurrent_calls"`

	// CallsPerMinute paces model calls; 0 disables pacing
	CallsPerMinute int `yaml:"calls_per_minute"`

	// DebugLog and ErrorLog are the log files scanned during audits
	DebugLog string `yaml:"debug_log"`
	ErrorLog string `yaml:"error_log"`

	// Requirements is the dependency manifest maintained by repairs
	Requirements string `yaml:"requirements"`

	// BackupDir receives pre-mutation copies of repaired files
	BackupDir string `yaml:"backup_dir"`

	// KnowledgePath is the learned-pattern store
	KnowledgePath string `yaml:"knowledge_path"`

	// StatusPath receives the last-run status snapshot
	StatusPath string `yaml:"status_path"`

	// HistoryDB is the SQLite run history database
	HistoryDB string `yaml:"history_db"`

	// Root is the source tree to analyze
	Root string `yaml:"root"`

	// TrustThreshold gates learned-fix suggestions; a fix is only
	// suggested once its observed success rate exceeds this
	TrustThreshold float64 `yaml:"trust_threshold"`

	// WindowHours is the log analysis window
	WindowHours int `yaml:"window_hours"`

	// LogRepairCap bounds log-derived repairs per run
	LogRepairCap int `yaml:"log_repair_cap"`

	// LongFunctionLines is the function-length threshold for the code
	// analyzer
	LongFunctionLines int `yaml:"long_function_lines"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Backend:            "anthropic",
		MaxConcurrentCalls: 1,
		CallsPerMinute:     30,
		DebugLog:           "logs/debug.log",
		ErrorLog:           "logs/error.log",
		Requirements:       "requirements.txt",
		BackupDir:          "backups",
		KnowledgePath:      "remedy_knowledge.json",
		StatusPath:         "remedy_status.json",
		HistoryDB:          "remedy_history.db",
		Root:               ".",
		TrustThreshold:     0.70,
		WindowHours:        24,
		LogRepairCap:       5,
		LongFunctionLines:  50,
	}
}

// Load reads the YAML config at path, layered over Default. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandEnv()
	return cfg, nil
}

var envVarRe = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnv substitutes ${VAR} references in string fields. Unset
// variables expand to the empty string.
func (c *Config) expandEnv() {
	fields := []*string{
		&c.Backend, &c.Model, &c.Endpoint, &c.APIKey,
		&c.DebugLog, &c.ErrorLog, &c.Requirements, &c.BackupDir,
		&c.KnowledgePath, &c.StatusPath, &c.HistoryDB, &c.Root,
	}
	for _, f := range fields {
		*f = envVarRe.ReplaceAllStringFunc(*f, func(m string) string {
			return os.Getenv(envVarRe.FindStringSubmatch(m)[1])
		})
	}
}
