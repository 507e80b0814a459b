// Package config provides configuration loading and management for the
// POS sync server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// VendorFreeway identifies the MJ Freeway POS platform
	VendorFreeway = "mjfreeway"

	// VendorBiotrack identifies the Biotrack POS platform
	VendorBiotrack = "biotrack"
)

const (
	// PageLoopReportedLast stops the page loop once the feed reports the
	// current page has reached the last page. This mirrors the upstream
	// integrations and is the default.
	PageLoopReportedLast = "reported-last"

	// PageLoopUntilEmpty stops the page loop at the first empty page,
	// ignoring the feed's reported last_page.
	PageLoopUntilEmpty = "until-empty"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Organizations lists the POS-backed organizations to synchronize,
	// in the order they are processed.
	Organizations []OrganizationConfig `yaml:"organizations"`

	// Database configures the PostgreSQL connection
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Sync configures orchestration behavior
	Sync SyncConfig `yaml:"sync,omitempty"`

	// Telemetry configures the metrics endpoint
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`
}

// OrganizationConfig defines one organization and its POS credentials
type OrganizationConfig struct {
	// ID is the local identifier for this organization
	ID string `yaml:"id"`

	// Name is a human-readable label used in logs
	Name string `yaml:"name,omitempty"`

	// Vendor selects the POS platform (mjfreeway or biotrack)
	Vendor string `yaml:"vendor"`

	// POS holds the vendor API credentials. Organizations without POS
	// configuration are skipped with a FAILED run (missing configuration).
	POS *POSConfig `yaml:"pos,omitempty"`

	// Locations lists the organization's locations, in processing order
	Locations []LocationConfig `yaml:"locations"`
}

// POSConfig defines vendor API access for one organization
type POSConfig struct {
	// Endpoint is the base API URL (without path)
	Endpoint string `yaml:"endpoint"`

	// APIKey is the vendor API key. APIKeyFile takes precedence when set.
	APIKey string `yaml:"apiKey,omitempty"`

	// APIKeyFile is a path to a file containing the API key
	APIKeyFile string `yaml:"apiKeyFile,omitempty"`

	// PosOrgID is the vendor-side organization identifier sent as a header
	PosOrgID string `yaml:"posOrgId"`

	// UserID is the vendor-side acting-user identifier sent as a header
	UserID string `yaml:"userId,omitempty"`

	// PerPage overrides the consumer feed page size when > 0
	PerPage int `yaml:"perPage,omitempty"`
}

// GetAPIKey returns the API key using file -> env -> config priority.
func (p *POSConfig) GetAPIKey() (string, error) {
	if p.APIKeyFile != "" {
		data, err := os.ReadFile(p.APIKeyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read API key file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if key := os.Getenv("POS_API_KEY"); key != "" {
		return key, nil
	}
	if p.APIKey != "" {
		return p.APIKey, nil
	}
	return "", fmt.Errorf("no API key configured")
}

// LocationConfig defines one location within an organization
type LocationConfig struct {
	// ID is the local identifier for this location
	ID string `yaml:"id"`

	// Name is a human-readable label used in logs
	Name string `yaml:"name,omitempty"`

	// FacilityID is the vendor-side facility identifier sent as a header
	FacilityID string `yaml:"facilityId"`

	// InventoryCSV is the path to a Biotrack inventory export for this
	// location. Only used by the biotrack vendor, whose inventory feed is
	// a flat CSV snapshot rather than paginated HTTP.
	InventoryCSV string `yaml:"inventoryCsv,omitempty"`
}

// SyncConfig configures orchestration behavior
type SyncConfig struct {
	// Locations optionally restricts inventory runs to a comma-separated
	// subset of location IDs. Empty means all locations.
	Locations string `yaml:"locations,omitempty"`

	// PageLoop selects the page-loop stop condition
	// (reported-last or until-empty). Defaults to reported-last.
	PageLoop string `yaml:"pageLoop,omitempty"`

	// ItemConcurrency bounds concurrent item upserts within a page.
	// Defaults to 1, which keeps processing strictly sequential.
	ItemConcurrency int64 `yaml:"itemConcurrency,omitempty"`

	// InventoryInterval enables the background coordinator for inventory
	// syncs when set (e.g. "30m"). Empty disables scheduling.
	InventoryInterval string `yaml:"inventoryInterval,omitempty"`

	// CustomerInterval enables the background coordinator for customer
	// syncs when set. Empty disables scheduling.
	CustomerInterval string `yaml:"customerInterval,omitempty"`
}

// LocationFilter returns the configured location subset as a set,
// or nil when no filter is configured.
func (s *SyncConfig) LocationFilter() map[string]bool {
	if strings.TrimSpace(s.Locations) == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, id := range strings.Split(s.Locations, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			filter[id] = true
		}
	}
	return filter
}

// GetPageLoop returns the configured page-loop mode, defaulting to
// reported-last.
func (s *SyncConfig) GetPageLoop() string {
	if s.PageLoop == "" {
		return PageLoopReportedLast
	}
	return s.PageLoop
}

// GetItemConcurrency returns the item concurrency bound, defaulting to 1.
func (s *SyncConfig) GetItemConcurrency() int64 {
	if s.ItemConcurrency <= 0 {
		return 1
	}
	return s.ItemConcurrency
}

// TelemetryConfig configures the metrics endpoint
type TelemetryConfig struct {
	// Metrics enables the Prometheus /metrics endpoint
	Metrics bool `yaml:"metrics"`
}

// DatabaseConfig defines the PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslMode,omitempty"`

	// Password is the database password. PasswordFile takes precedence.
	Password string `yaml:"password,omitempty"`

	// PasswordFile is a path to a file containing the password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// MaxConns is the pool's maximum connection count
	MaxConns int32 `yaml:"maxConns,omitempty"`

	// ConnMaxLifetime is the maximum connection lifetime (e.g. "5m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the password using file -> env -> config priority.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		data, err := os.ReadFile(d.PasswordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if pw := os.Getenv("POS_SYNC_DB_PASSWORD"); pw != "" {
		return pw, nil
	}
	return d.Password, nil
}

// ConnString builds a pgx connection string.
func (d *DatabaseConfig) ConnString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, password, d.Database, sslMode,
	), nil
}

// URL builds a postgres:// connection URL, used by the migration tooling.
func (d *DatabaseConfig) URL() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Database,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String(), nil
}

// Load reads and validates a configuration using the given options.
func Load(opts ...Option) (*Config, error) {
	loader := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loader); err != nil {
			return nil, err
		}
	}
	if loader.path == "" {
		return nil, fmt.Errorf("no configuration source provided")
	}

	data, err := os.ReadFile(loader.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for structural problems. Missing POS
// credentials are deliberately not an error here: the orchestrator turns
// them into per-scope FAILED runs at sync time.
func (c *Config) Validate() error {
	if len(c.Organizations) == 0 {
		return fmt.Errorf("at least one organization is required")
	}

	seenOrgs := make(map[string]bool)
	seenLocations := make(map[string]bool)
	for i := range c.Organizations {
		org := &c.Organizations[i]
		if org.ID == "" {
			return fmt.Errorf("organization at index %d is missing an id", i)
		}
		if seenOrgs[org.ID] {
			return fmt.Errorf("duplicate organization id: %s", org.ID)
		}
		seenOrgs[org.ID] = true

		switch org.Vendor {
		case VendorFreeway, VendorBiotrack:
		default:
			return fmt.Errorf("organization %s has unsupported vendor: %s", org.ID, org.Vendor)
		}

		if org.POS != nil {
			if org.POS.Endpoint == "" {
				return fmt.Errorf("organization %s: pos endpoint cannot be empty", org.ID)
			}
			if _, err := url.ParseRequestURI(org.POS.Endpoint); err != nil {
				return fmt.Errorf("organization %s: invalid pos endpoint: %w", org.ID, err)
			}
		}

		for j := range org.Locations {
			loc := &org.Locations[j]
			if loc.ID == "" {
				return fmt.Errorf("organization %s: location at index %d is missing an id", org.ID, j)
			}
			if seenLocations[loc.ID] {
				return fmt.Errorf("duplicate location id: %s", loc.ID)
			}
			seenLocations[loc.ID] = true
		}
	}

	switch c.Sync.GetPageLoop() {
	case PageLoopReportedLast, PageLoopUntilEmpty:
	default:
		return fmt.Errorf("unsupported sync.pageLoop: %s", c.Sync.PageLoop)
	}

	for name, interval := range map[string]string{
		"sync.inventoryInterval": c.Sync.InventoryInterval,
		"sync.customerInterval":  c.Sync.CustomerInterval,
	} {
		if interval == "" {
			continue
		}
		if _, err := time.ParseDuration(interval); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}
