// Package config provides configuration loading and management for the pipeline tracker.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/telemetry"
)

const (
	// CatalogTypeFile reads entities from a local YAML file
	CatalogTypeFile = "file"
	// CatalogTypeAPI reads entities from a Backstage catalog REST API
	CatalogTypeAPI = "api"
	// CatalogTypeKubernetes reads entities from labelled ConfigMaps
	CatalogTypeKubernetes = "kubernetes"
	// CatalogTypeGit reads entities from a YAML file in a git repository
	CatalogTypeGit = "git"
)

const (
	// ChangeSourceTypeGerrit lists open changes from a Gerrit server
	ChangeSourceTypeGerrit = "gerrit"
	// ChangeSourceTypeGitLab lists open merge requests from a GitLab server
	ChangeSourceTypeGitLab = "gitlab"
	// ChangeSourceTypeStatic serves a fixed list of changes
	ChangeSourceTypeStatic = "static"
)

const (
	// ResolverTypeHTTP probes the stage host for a status document
	ResolverTypeHTTP = "http"
	// ResolverTypeStatic always reports the configured status
	ResolverTypeStatic = "static"
)

// StorageType is the persistence backend for tracked changes
type StorageType string

const (
	// StorageTypeDatabase persists changes in PostgreSQL
	StorageTypeDatabase StorageType = "database"
	// StorageTypeMemory keeps changes in process memory
	StorageTypeMemory StorageType = "memory"
)

const (
	// DefaultReconcileInterval is the delay between reconciliation passes
	DefaultReconcileInterval = 10 * time.Second
	// DefaultReconcileTimeout bounds a single reconciliation pass
	DefaultReconcileTimeout = 24 * time.Hour
	// DefaultReconcileConcurrency is the number of projects reconciled in parallel
	DefaultReconcileConcurrency = 4
	// DefaultHTTPTimeout is used for upstream HTTP calls when no timeout is configured
	DefaultHTTPTimeout = 10 * time.Second
)

var commitHashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// EnvPrefix is the prefix of environment variables read by the tracker
const EnvPrefix = "PIPELINE_TRACKER"

const (
	// databasePasswordEnv is consulted when no password file is configured
	databasePasswordEnv = "PIPELINE_TRACKER_DATABASE_PASSWORD"
	// gitlabTokenEnv is consulted when no GitLab token file is configured
	gitlabTokenEnv = "PIPELINE_TRACKER_GITLAB_TOKEN"
	// gitPasswordEnv is consulted when no git password file is configured
	gitPasswordEnv = "PIPELINE_TRACKER_GIT_PASSWORD"
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
	Catalog      CatalogConfig      `yaml:"catalog"`
	ChangeSource ChangeSourceConfig `yaml:"changeSource"`

	// Resolvers configures how each stage type is queried.
	// Stage types without an entry resolve every change as un-entered.
	Resolvers ResolversConfig `yaml:"resolvers,omitempty"`

	Reconcile *ReconcileConfig  `yaml:"reconcile,omitempty"`
	Storage   *StorageConfig    `yaml:"storage,omitempty"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// CatalogConfig selects and configures the entity catalog
type CatalogConfig struct {
	// Type is one of file, api, kubernetes or git
	Type string `yaml:"type"`

	File       *FileCatalogConfig       `yaml:"file,omitempty"`
	API        *APICatalogConfig        `yaml:"api,omitempty"`
	Kubernetes *KubernetesCatalogConfig `yaml:"kubernetes,omitempty"`
	Git        *GitCatalogConfig        `yaml:"git,omitempty"`

	// Watch triggers a reconciliation as soon as a file catalog changes on disk
	Watch bool `yaml:"watch,omitempty"`
}

// FileCatalogConfig defines a catalog stored in a local YAML file
type FileCatalogConfig struct {
	// Path is the path to a multi-document YAML file of entities
	Path string `yaml:"path"`
}

// APICatalogConfig defines a Backstage catalog REST endpoint
type APICatalogConfig struct {
	// BaseURL is the catalog API root, e.g. "https://backstage.example.com/api/catalog"
	BaseURL string `yaml:"baseURL"`

	// Timeout for a single catalog request (e.g. "10s")
	Timeout string `yaml:"timeout,omitempty"`
}

// KubernetesCatalogConfig defines a catalog stored in ConfigMaps
type KubernetesCatalogConfig struct {
	// Namespace to search for entity ConfigMaps. Empty means all namespaces.
	Namespace string `yaml:"namespace,omitempty"`

	// LabelSelector overrides the default entity label selector
	LabelSelector string `yaml:"labelSelector,omitempty"`
}

// GitCatalogConfig defines a catalog stored in a git repository
type GitCatalogConfig struct {
	// Repository is the clone URL
	Repository string `yaml:"repository"`

	// Branch to read from. Defaults to the remote HEAD.
	Branch string `yaml:"branch,omitempty"`

	// Tag to read from when no branch is set
	Tag string `yaml:"tag,omitempty"`

	// Commit pins the catalog to a full commit hash
	Commit string `yaml:"commit,omitempty"`

	// Path of the entities file inside the repository
	Path string `yaml:"path"`

	// Username enables HTTP basic authentication
	Username string `yaml:"username,omitempty"`

	// PasswordFile is the path to a file containing the password or access token
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// RefreshInterval is the minimum delay between clones (default "1m")
	RefreshInterval string `yaml:"refreshInterval,omitempty"`
}

// GetPassword returns the git password from PasswordFile or PIPELINE_TRACKER_GIT_PASSWORD
func (g *GitCatalogConfig) GetPassword() (string, error) {
	return readSecret(g.PasswordFile, gitPasswordEnv)
}

// GetRefreshInterval returns the minimum delay between clones, zero for the default
func (g *GitCatalogConfig) GetRefreshInterval() time.Duration {
	return parseDurationOr(g.RefreshInterval, 0)
}

// ChangeSourceConfig selects and configures the upstream change-tracking service
type ChangeSourceConfig struct {
	// Type is one of gerrit, gitlab or static
	Type string `yaml:"type"`

	Gerrit *GerritConfig       `yaml:"gerrit,omitempty"`
	GitLab *GitLabConfig       `yaml:"gitlab,omitempty"`
	Static *StaticChangeConfig `yaml:"static,omitempty"`
}

// GerritConfig defines the Gerrit REST endpoint
type GerritConfig struct {
	// BaseURL is the Gerrit root URL, e.g. "https://review.example.com"
	BaseURL string `yaml:"baseURL"`

	// Timeout for a single Gerrit request (e.g. "10s")
	Timeout string `yaml:"timeout,omitempty"`
}

// GitLabConfig defines the GitLab API endpoint
type GitLabConfig struct {
	// BaseURL is the GitLab root URL, e.g. "https://gitlab.example.com"
	BaseURL string `yaml:"baseURL"`

	// TokenFile is the path to a file containing a GitLab access token
	TokenFile string `yaml:"tokenFile,omitempty"`
}

// StaticChangeConfig defines a fixed change list served for every project
type StaticChangeConfig struct {
	Changes []pipeline.ChangeInfo `yaml:"changes"`
}

// ResolversConfig maps each stage type to its resolver configuration
type ResolversConfig struct {
	Jenkins   *ResolverConfig `yaml:"jenkins,omitempty"`
	Gerrit    *ResolverConfig `yaml:"gerrit,omitempty"`
	Spinnaker *ResolverConfig `yaml:"spinnaker,omitempty"`
}

// For returns the resolver configuration of a stage type, or nil when unset
func (r ResolversConfig) For(t pipeline.StageType) *ResolverConfig {
	switch t {
	case pipeline.StageTypeJenkins:
		return r.Jenkins
	case pipeline.StageTypeGerrit:
		return r.Gerrit
	case pipeline.StageTypeSpinnaker:
		return r.Spinnaker
	}
	return nil
}

// ResolverConfig defines how one stage type is queried
type ResolverConfig struct {
	// Type is http or static
	Type string `yaml:"type"`

	// StatusPath is appended to the stage host. It may reference
	// {project}, {number}, {branch} and {stage}.
	StatusPath string `yaml:"statusPath,omitempty"`

	// StateField is a gjson path locating the state inside the response body
	StateField string `yaml:"stateField,omitempty"`

	// States maps upstream state values to stage statuses, e.g. SUCCESS: passed
	States map[string]pipeline.StatusType `yaml:"states,omitempty"`

	// Status is the status reported by a static resolver
	Status pipeline.StatusType `yaml:"status,omitempty"`

	// Timeout for a single status request (e.g. "10s")
	Timeout string `yaml:"timeout,omitempty"`
}

// ReconcileConfig defines the reconciliation schedule
type ReconcileConfig struct {
	// Interval between reconciliation passes (default "10s")
	Interval string `yaml:"interval,omitempty"`

	// Timeout for a single reconciliation pass (default "24h")
	Timeout string `yaml:"timeout,omitempty"`

	// Concurrency is the number of projects reconciled in parallel
	Concurrency int `yaml:"concurrency,omitempty"`

	// PruneClosedChanges removes rows for changes no longer reported as open
	PruneClosedChanges bool `yaml:"pruneClosedChanges,omitempty"`

	// Projects narrows the catalog projects that are reconciled
	Projects *ProjectFilterConfig `yaml:"projects,omitempty"`
}

// ProjectFilterConfig selects projects by name and by entity tags
type ProjectFilterConfig struct {
	// Names holds glob patterns matched against project names
	Names *PatternFilterConfig `yaml:"names,omitempty"`

	// Tags holds exact values matched against the entity's metadata.tags
	Tags *PatternFilterConfig `yaml:"tags,omitempty"`
}

// PatternFilterConfig is an include/exclude pair. Exclude takes precedence.
type PatternFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Type StorageType `yaml:"type"`

	// StatusDir persists project sync status as files when using memory storage.
	// Empty keeps status in memory only.
	StatusDir string `yaml:"statusDir,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// The file should contain only the password with optional trailing whitespace.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	// ConnectTimeout bounds the retries of the initial connection (e.g. "30s")
	ConnectTimeout string `yaml:"connectTimeout,omitempty"`

	// DynamicAuth replaces the static password with short-lived credentials
	DynamicAuth *DynamicAuthConfig `yaml:"dynamicAuth,omitempty"`
}

// DynamicAuthConfig selects a dynamic database authentication method
type DynamicAuthConfig struct {
	// AWSRDSIAM authenticates with AWS RDS IAM tokens
	AWSRDSIAM *AWSRDSIAMConfig `yaml:"awsRdsIam,omitempty"`
}

// AWSRDSIAMConfig configures AWS RDS IAM authentication
type AWSRDSIAMConfig struct {
	// Region of the RDS instance. "detect" reads it from the instance metadata service.
	Region string `yaml:"region"`
}

// UsesDynamicAuth reports whether passwords are generated per connection
func (d *DatabaseConfig) UsesDynamicAuth() bool {
	return d.DynamicAuth != nil && d.DynamicAuth.AWSRDSIAM != nil
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from PIPELINE_TRACKER_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	password, err := readSecret(d.PasswordFile, databasePasswordEnv)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf(
			"no database password configured: set passwordFile or %s environment variable", databasePasswordEnv,
		)
	}
	return password, nil
}

// GetConnectionString builds a PostgreSQL connection string with the static password
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}
	return d.BuildConnectionString(password), nil
}

// BuildConnectionString builds a PostgreSQL connection string with password.
// The password is URL-escaped to handle special characters safely; an empty
// password is left out.
func (d *DatabaseConfig) BuildConnectionString(password string) string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	userInfo := url.QueryEscape(d.User)
	if password != "" {
		userInfo += ":" + url.QueryEscape(password)
	}

	return fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		userInfo,
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)
}

// GetConnectTimeout returns the initial connection retry budget, 30s by default
func (d *DatabaseConfig) GetConnectTimeout() time.Duration {
	return parseDurationOr(d.ConnectTimeout, 30*time.Second)
}

// GetToken returns the GitLab token from TokenFile or PIPELINE_TRACKER_GITLAB_TOKEN.
// An empty token is allowed for public projects.
func (g *GitLabConfig) GetToken() (string, error) {
	return readSecret(g.TokenFile, gitlabTokenEnv)
}

func readSecret(path, env string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return os.Getenv(env), nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetStorageType returns the configured storage type, database by default
func (c *Config) GetStorageType() StorageType {
	if c.Storage == nil || c.Storage.Type == "" {
		return StorageTypeDatabase
	}
	return c.Storage.Type
}

// GetReconcileInterval returns the delay between reconciliation passes
func (c *Config) GetReconcileInterval() time.Duration {
	if c.Reconcile == nil {
		return DefaultReconcileInterval
	}
	return parseDurationOr(c.Reconcile.Interval, DefaultReconcileInterval)
}

// GetReconcileTimeout returns the time budget of a single reconciliation pass
func (c *Config) GetReconcileTimeout() time.Duration {
	if c.Reconcile == nil {
		return DefaultReconcileTimeout
	}
	return parseDurationOr(c.Reconcile.Timeout, DefaultReconcileTimeout)
}

// GetReconcileConcurrency returns the number of projects reconciled in parallel
func (c *Config) GetReconcileConcurrency() int {
	if c.Reconcile == nil || c.Reconcile.Concurrency <= 0 {
		return DefaultReconcileConcurrency
	}
	return c.Reconcile.Concurrency
}

// GetProjectFilter returns the project filter, nil when every project is tracked
func (c *Config) GetProjectFilter() *ProjectFilterConfig {
	if c.Reconcile == nil {
		return nil
	}
	return c.Reconcile.Projects
}

// PruneEnabled reports whether vanished changes are deleted after each pass
func (c *Config) PruneEnabled() bool {
	return c.Reconcile != nil && c.Reconcile.PruneClosedChanges
}

// ParseTimeout parses an optional duration string, falling back to DefaultHTTPTimeout
func ParseTimeout(value string) time.Duration {
	return parseDurationOr(value, DefaultHTTPTimeout)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	errs = append(errs, validateCatalog(&c.Catalog)...)
	errs = append(errs, validateChangeSource(&c.ChangeSource)...)

	for _, t := range pipeline.StageTypes {
		if err := validateResolver(c.Resolvers.For(t), fmt.Sprintf("resolvers.%s", t)); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Reconcile != nil {
		errs = append(errs, validateDuration(c.Reconcile.Interval, "reconcile.interval"))
		errs = append(errs, validateDuration(c.Reconcile.Timeout, "reconcile.timeout"))
		if c.Reconcile.Concurrency < 0 {
			errs = append(errs, fmt.Errorf("reconcile.concurrency must not be negative"))
		}
		if p := c.Reconcile.Projects; p != nil && p.Names != nil {
			errs = append(errs, validatePatterns(p.Names.Include, "reconcile.projects.names.include")...)
			errs = append(errs, validatePatterns(p.Names.Exclude, "reconcile.projects.names.exclude")...)
		}
	}

	switch c.GetStorageType() {
	case StorageTypeDatabase:
		if c.Database == nil {
			errs = append(errs, fmt.Errorf("database: configuration is required for database storage"))
		} else {
			errs = append(errs, validateDatabase(c.Database)...)
		}
	case StorageTypeMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.type: unknown storage type %q", c.GetStorageType()))
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func validateCatalog(cat *CatalogConfig) []error {
	var errs []error
	switch cat.Type {
	case CatalogTypeFile:
		if cat.File == nil || cat.File.Path == "" {
			errs = append(errs, fmt.Errorf("catalog: file.path is required"))
		}
	case CatalogTypeAPI:
		if cat.API == nil || cat.API.BaseURL == "" {
			errs = append(errs, fmt.Errorf("catalog: api.baseURL is required"))
		} else {
			errs = append(errs, validateURL(cat.API.BaseURL, "catalog: api.baseURL"))
			errs = append(errs, validateDuration(cat.API.Timeout, "catalog: api.timeout"))
		}
	case CatalogTypeKubernetes:
	case CatalogTypeGit:
		switch {
		case cat.Git == nil || cat.Git.Repository == "":
			errs = append(errs, fmt.Errorf("catalog: git.repository is required"))
		case cat.Git.Path == "":
			errs = append(errs, fmt.Errorf("catalog: git.path is required"))
		case cat.Git.Commit != "" && !commitHashPattern.MatchString(cat.Git.Commit):
			errs = append(errs, fmt.Errorf("catalog: git.commit must be a full 40 character hash"))
		default:
			errs = append(errs, validateDuration(cat.Git.RefreshInterval, "catalog: git.refreshInterval"))
		}
	case "":
		errs = append(errs, fmt.Errorf("catalog: type is required"))
	default:
		errs = append(errs, fmt.Errorf("catalog: unknown type %q", cat.Type))
	}
	if cat.Watch && cat.Type != CatalogTypeFile {
		errs = append(errs, fmt.Errorf("catalog: watch is only supported for file catalogs"))
	}
	return errs
}

func validateChangeSource(src *ChangeSourceConfig) []error {
	var errs []error
	switch src.Type {
	case ChangeSourceTypeGerrit:
		if src.Gerrit == nil || src.Gerrit.BaseURL == "" {
			errs = append(errs, fmt.Errorf("changeSource: gerrit.baseURL is required"))
		} else {
			errs = append(errs, validateURL(src.Gerrit.BaseURL, "changeSource: gerrit.baseURL"))
			errs = append(errs, validateDuration(src.Gerrit.Timeout, "changeSource: gerrit.timeout"))
		}
	case ChangeSourceTypeGitLab:
		if src.GitLab == nil || src.GitLab.BaseURL == "" {
			errs = append(errs, fmt.Errorf("changeSource: gitlab.baseURL is required"))
		} else {
			errs = append(errs, validateURL(src.GitLab.BaseURL, "changeSource: gitlab.baseURL"))
		}
	case ChangeSourceTypeStatic:
		if src.Static != nil {
			for i, ch := range src.Static.Changes {
				if !ch.Status.Valid() {
					errs = append(errs, fmt.Errorf("changeSource: static.changes[%d]: unknown status %q", i, ch.Status))
				}
			}
		}
	case "":
		errs = append(errs, fmt.Errorf("changeSource: type is required"))
	default:
		errs = append(errs, fmt.Errorf("changeSource: unknown type %q", src.Type))
	}
	return errs
}

func validateResolver(r *ResolverConfig, prefix string) error {
	if r == nil {
		return nil
	}
	switch r.Type {
	case ResolverTypeHTTP:
		if r.StatusPath == "" {
			return fmt.Errorf("%s: statusPath is required for http resolvers", prefix)
		}
		for state, status := range r.States {
			if !status.Valid() {
				return fmt.Errorf("%s: state %q maps to unknown status %q", prefix, state, status)
			}
		}
		return validateDuration(r.Timeout, prefix+": timeout")
	case ResolverTypeStatic:
		if !r.Status.Valid() {
			return fmt.Errorf("%s: unknown status %q", prefix, r.Status)
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown resolver type %q", prefix, r.Type)
	}
}

func validateDatabase(d *DatabaseConfig) []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("database: host is required"))
	}
	if d.Port <= 0 {
		errs = append(errs, fmt.Errorf("database: port must be positive"))
	}
	if d.Database == "" {
		errs = append(errs, fmt.Errorf("database: database is required"))
	}
	errs = append(errs, validateDuration(d.ConnMaxLifetime, "database: connMaxLifetime"))
	errs = append(errs, validateDuration(d.ConnectTimeout, "database: connectTimeout"))
	if d.DynamicAuth != nil {
		switch {
		case d.DynamicAuth.AWSRDSIAM == nil:
			errs = append(errs, fmt.Errorf("database: dynamicAuth requires an auth method (e.g., awsRdsIam)"))
		case d.DynamicAuth.AWSRDSIAM.Region == "":
			errs = append(errs, fmt.Errorf("database: dynamicAuth.awsRdsIam.region is required"))
		}
	}
	return errs
}

func validatePatterns(patterns []string, field string) []error {
	var errs []error
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid glob pattern %q", field, p))
		}
	}
	return errs
}

func validateDuration(value, field string) error {
	if value == "" {
		return nil
	}
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '30s', '1h'): %w", field, err)
	}
	return nil
}

func validateURL(value, field string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, value)
	}
	return nil
}
