// Package supervisor holds the configuration handed to the external process
// manager that keeps the IntelliMind backend running. It describes the
// process; it does not supervise anything itself.
package supervisor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes one supervised backend process
type Config struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Cwd     string            `yaml:"cwd,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`

	Bind          string `yaml:"bind"`
	Workers       int    `yaml:"workers"`
	WorkerTimeout string `yaml:"worker_timeout"`

	Restart RestartPolicy `yaml:"restart"`
	Process ProcessLimits `yaml:"process"`
	Health  HealthCheck   `yaml:"health"`
	Logs    LogFiles      `yaml:"logs"`
}

// RestartPolicy controls when the process is restarted
type RestartPolicy struct {
	Autorestart bool `yaml:"autorestart"`
	// MaxRestarts is the number of unstable restarts tolerated before giving up.
	// A run shorter than MinUptime counts as unstable.
	MaxRestarts  int    `yaml:"max_restarts"`
	MinUptime    string `yaml:"min_uptime"`
	RestartDelay string `yaml:"restart_delay"`
	// MaxMemory restarts the process above this size, e.g. "1G" or "512M"
	MaxMemory string `yaml:"max_memory_restart"`
}

// ProcessLimits bounds startup and shutdown
type ProcessLimits struct {
	KillTimeout   string `yaml:"kill_timeout"`
	ListenTimeout string `yaml:"listen_timeout"`
}

// HealthCheck configures periodic probing of the health endpoint
type HealthCheck struct {
	Path        string `yaml:"path"`
	GracePeriod string `yaml:"grace_period"`
	Interval    string `yaml:"interval"`
}

// LogFiles are the process output destinations
type LogFiles struct {
	Error     string `yaml:"error_file,omitempty"`
	Out       string `yaml:"out_file,omitempty"`
	Combined  string `yaml:"log_file,omitempty"`
	Timestamp bool   `yaml:"time"`
}

// Default returns the production configuration for the backend
func Default() *Config {
	return &Config{
		Name:    "intellimind",
		Command: "intellimind",
		Args:    []string{"serve"},
		Cwd:     "/var/www/intellimind",
		Env: map[string]string{
			"INTELLIMIND_ENV": "production",
		},
		Bind:          "0.0.0.0:5000",
		Workers:       4,
		WorkerTimeout: "120s",
		Restart: RestartPolicy{
			Autorestart:  true,
			MaxRestarts:  10,
			MinUptime:    "10s",
			RestartDelay: "4s",
			MaxMemory:    "1G",
		},
		Process: ProcessLimits{
			KillTimeout:   "5s",
			ListenTimeout: "3s",
		},
		Health: HealthCheck{
			Path:        "/health",
			GracePeriod: "3s",
			Interval:    "30s",
		},
		Logs: LogFiles{
			Error:     "/var/log/intellimind/intellimind-error.log",
			Out:       "/var/log/intellimind/intellimind-out.log",
			Combined:  "/var/log/intellimind/intellimind-combined.log",
			Timestamp: true,
		},
	}
}

// Load reads a YAML configuration over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read supervisor config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse supervisor config: %w", err)
	}

	return cfg, nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal supervisor config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write supervisor config: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(c.Command) == "" {
		errs = append(errs, errors.New("command is required"))
	}
	if _, _, err := net.SplitHostPort(c.Bind); err != nil {
		errs = append(errs, fmt.Errorf("bind %q: %w", c.Bind, err))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Restart.MaxRestarts < 0 {
		errs = append(errs, fmt.Errorf("max_restarts must not be negative, got %d", c.Restart.MaxRestarts))
	}
	if c.Restart.MaxMemory != "" {
		if _, err := ParseSize(c.Restart.MaxMemory); err != nil {
			errs = append(errs, fmt.Errorf("max_memory_restart: %w", err))
		}
	}
	if c.Health.Path != "" && !strings.HasPrefix(c.Health.Path, "/") {
		errs = append(errs, fmt.Errorf("health path must start with /, got %q", c.Health.Path))
	}

	durations := []struct {
		field string
		value string
	}{
		{"worker_timeout", c.WorkerTimeout},
		{"min_uptime", c.Restart.MinUptime},
		{"restart_delay", c.Restart.RestartDelay},
		{"kill_timeout", c.Process.KillTimeout},
		{"listen_timeout", c.Process.ListenTimeout},
		{"health grace_period", c.Health.GracePeriod},
		{"health interval", c.Health.Interval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.field, err))
			continue
		}
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", d.field))
		}
	}

	return errors.Join(errs...)
}

// Argv returns the full command line the supervisor should execute
func (c *Config) Argv() []string {
	argv := append([]string{c.Command}, c.Args...)
	if c.Bind != "" {
		argv = append(argv, "--addr", c.Bind)
	}
	if c.WorkerTimeout != "" {
		argv = append(argv, "--timeout", c.WorkerTimeout)
	}
	return argv
}

// HealthURL returns the URL a probe on the same host should poll.
// Wildcard bind addresses are probed on loopback.
func (c *Config) HealthURL() (string, error) {
	host, port, err := net.SplitHostPort(c.Bind)
	if err != nil {
		return "", fmt.Errorf("invalid bind address %q: %w", c.Bind, err)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	path := c.Health.Path
	if path == "" {
		path = "/health"
	}
	return "http://" + net.JoinHostPort(host, port) + path, nil
}

// GetWorkerTimeout returns the request timeout for each worker
func (c *Config) GetWorkerTimeout() time.Duration {
	return parseDuration(c.WorkerTimeout, 120*time.Second)
}

// GetMinUptime returns the shortest run counted as a stable start
func (c *Config) GetMinUptime() time.Duration {
	return parseDuration(c.Restart.MinUptime, 10*time.Second)
}

// GetRestartDelay returns the pause before a restart
func (c *Config) GetRestartDelay() time.Duration {
	return parseDuration(c.Restart.RestartDelay, 4*time.Second)
}

// GetKillTimeout returns how long a stopping process may take before it is killed
func (c *Config) GetKillTimeout() time.Duration {
	return parseDuration(c.Process.KillTimeout, 5*time.Second)
}

// GetListenTimeout returns how long a starting process may take to listen
func (c *Config) GetListenTimeout() time.Duration {
	return parseDuration(c.Process.ListenTimeout, 3*time.Second)
}

// GetHealthGracePeriod returns the delay before the first health check
func (c *Config) GetHealthGracePeriod() time.Duration {
	return parseDuration(c.Health.GracePeriod, 3*time.Second)
}

// GetHealthInterval returns the time between health checks
func (c *Config) GetHealthInterval() time.Duration {
	return parseDuration(c.Health.Interval, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// ParseSize converts sizes like "1G", "512M", "64K" or "1024" to bytes
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, errors.New("empty size")
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'K':
		mult = 1 << 10
	case 'M':
		mult = 1 << 20
	case 'G':
		mult = 1 << 30
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * mult, nil
}
