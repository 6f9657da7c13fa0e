package vsphere

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/giantswarm/mcp-vsphere/internal/logging"
)

// Environment variable names for vCenter configuration.
const (
	EnvHost       = "VCENTER_HOST"
	EnvUser       = "VCENTER_USER"
	EnvPassword   = "VCENTER_PASSWORD"
	EnvInsecure   = "VCENTER_INSECURE"
	EnvDatacenter = "VCENTER_DATACENTER"
	EnvCluster    = "VCENTER_CLUSTER"
	EnvDatastore  = "VCENTER_DATASTORE"
	EnvNetwork    = "VCENTER_NETWORK"
	EnvTimeout    = "VCENTER_TIMEOUT"
)

// DefaultTimeout bounds the connect/login handshake and individual
// inventory calls when the caller's context carries no deadline.
const DefaultTimeout = 30 * time.Second

// Config holds the vCenter connection parameters and optional placement
// defaults. It is loaded once at startup and treated as immutable; lookups
// receive it by reference and never mutate it.
type Config struct {
	// Host is the vCenter or ESXi endpoint. A bare hostname is accepted;
	// the scheme and /sdk path are filled in when dialing.
	Host     string
	User     string
	Password string

	// Insecure skips TLS certificate verification when true.
	Insecure bool

	// Optional placement defaults used by VM creation and cloning.
	// Empty values mean: first datacenter, first compute resource,
	// datastore with the most free space, and no network.
	Datacenter string
	Cluster    string
	Datastore  string
	Network    string

	// Timeout bounds the connect/login handshake.
	Timeout time.Duration
}

// LoadConfig reads the vCenter configuration from the environment.
// Missing required variables are reported together so operators can fix
// them in one pass.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Host:       os.Getenv(EnvHost),
		User:       os.Getenv(EnvUser),
		Password:   os.Getenv(EnvPassword),
		Insecure:   parseBoolEnv(os.Getenv(EnvInsecure)),
		Datacenter: os.Getenv(EnvDatacenter),
		Cluster:    os.Getenv(EnvCluster),
		Datastore:  os.Getenv(EnvDatastore),
		Network:    os.Getenv(EnvNetwork),
		Timeout:    DefaultTimeout,
	}

	if raw := os.Getenv(EnvTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s=%q: %w", EnvTimeout, raw, err)
		}
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required connection parameters are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, EnvHost)
	}
	if c.User == "" {
		missing = append(missing, EnvUser)
	}
	if c.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// LogValue renders the configuration for structured logging. The password
// is masked and IP-address hosts are redacted; logging a Config directly
// never leaks credentials or topology.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", logging.SanitizeHost(c.Host)),
		slog.String("user", c.User),
		slog.String("password", logging.SanitizeCredential(c.Password)),
		slog.Bool("insecure", c.Insecure),
		slog.String("datacenter", c.Datacenter),
		slog.String("cluster", c.Cluster),
		slog.Duration("timeout", c.Timeout),
	)
}

// parseBoolEnv accepts the common truthy spellings seen in deployments.
func parseBoolEnv(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
