// Package connection provides the engine-facing connection configuration
// schema and the adapter-owned Connection value it produces.
// Implements: spec.md §6 (Connection configuration), §6.1 [EXPANDED]
package connection

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// defaultHost, defaultDatabase and defaultPort are the tuple-form
// defaults specified in spec.md §6.
const (
	defaultHost     = "localhost"
	defaultDatabase = "docbench"
	defaultPort     = 0 // 0 means adapter-chosen
)

// secretShapedKeys are option-map keys whose values Redact/SecretDigest
// treat as sensitive, matching the teacher's connection.Connection.Redact
// concern generalized from password-only to an open option map.
var secretShapedKeys = map[string]bool{
	"password": true,
	"apikey":   true,
	"api_key":  true,
	"token":    true,
	"secret":   true,
}

// Config is the engine-facing connection configuration: either a single
// opaque URI, or the tuple (host, port, database, username, password,
// options). The URI form is pass-through to the adapter; the tuple form
// carries the documented defaults.
type Config struct {
	URI string

	Host     string
	Port     int
	Database string
	Username string
	Password string
	Options  map[string]string
}

// NewTupleConfig returns a Config in tuple form with the documented
// defaults (host=localhost, database=docbench, port=0) applied to zero
// values.
func NewTupleConfig(host string, port int, database, username, password string, options map[string]string) Config {
	if host == "" {
		host = defaultHost
	}
	if database == "" {
		database = defaultDatabase
	}
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[k] = v
	}
	return Config{
		Host:     host,
		Port:     port,
		Database: database,
		Username: username,
		Password: password,
		Options:  opts,
	}
}

// NewURIConfig returns a Config in pass-through URI form.
func NewURIConfig(uri string) Config {
	return Config{URI: uri}
}

// IsURIForm reports whether this Config was constructed as a raw URI
// rather than a tuple.
func (c Config) IsURIForm() bool {
	return c.URI != ""
}

// Redact returns a display-safe rendering of the connection configuration
// that never includes the password or any option-map value whose key
// looks secret-shaped, generalizing the teacher's
// connection.Connection.Redact concern from a single password field to an
// open option map.
func (c Config) Redact() string {
	if c.IsURIForm() {
		return redactURI(c.URI)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s@%s", c.Username, c.Host)
	if c.Port != 0 {
		fmt.Fprintf(&b, ":%d", c.Port)
	}
	fmt.Fprintf(&b, "/%s", c.Database)
	if len(c.Options) > 0 {
		b.WriteString("?")
		first := true
		for k, v := range c.Options {
			if !first {
				b.WriteString("&")
			}
			first = false
			if secretShapedKeys[strings.ToLower(k)] {
				v = "***"
			}
			fmt.Fprintf(&b, "%s=%s", k, v)
		}
	}
	return b.String()
}

// redactURI masks a userinfo password component in an opaque URI string
// without attempting to fully parse driver-specific DSN dialects.
func redactURI(uri string) string {
	at := strings.Index(uri, "@")
	if at < 0 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	userinfoStart := 0
	if scheme >= 0 {
		userinfoStart = scheme + 3
	}
	userinfo := uri[userinfoStart:at]
	colon := strings.Index(userinfo, ":")
	if colon < 0 {
		return uri
	}
	return uri[:userinfoStart] + userinfo[:colon] + ":***" + uri[at:]
}

// SecretDigest returns a bcrypt digest of the password (or, for the tuple
// form, any option value keyed by name). A plaintext candidate can later
// be checked against the digest with bcrypt.CompareHashAndPassword
// without storing or logging the secret. Each call salts afresh, so two
// digests of the same secret are not equal strings.
func (c Config) SecretDigest(optionKey string) (string, error) {
	var secret string
	switch {
	case optionKey == "" || optionKey == "password":
		secret = c.Password
	default:
		secret = c.Options[optionKey]
	}
	if secret == "" {
		return "", fmt.Errorf("connection: no secret value for key %q", optionKey)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("connection: digesting secret: %w", err)
	}
	return string(digest), nil
}

// Validate reports configuration errors as human-readable diagnostics,
// matching the WorkloadConfig.Validate() convention rather than
// returning a single error.
func (c Config) Validate() []string {
	var diags []string
	if c.IsURIForm() {
		return diags
	}
	if c.Host == "" {
		diags = append(diags, "host must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		diags = append(diags, "port must be between 0 and 65535")
	}
	if c.Database == "" {
		diags = append(diags, "database must not be empty")
	}
	return diags
}

// Capability is a tag an adapter advertises; a workload may require one or
// more capabilities and fail with bencherr.CapabilityError before
// measurement begins if the adapter lacks any of them. Tag names match
// spec.md's closed set verbatim; additional tags beyond the two the
// built-in workloads hard-gate on are soft hints, per spec.md ("workloads
// use them as soft hints, not hard gates, unless they are actually
// consumed").
type Capability string

const (
	// CapabilityPartialDocumentRetrieval: adapter supports reading a
	// projected field subset rather than the whole document. Required by
	// the Traverse workload.
	CapabilityPartialDocumentRetrieval Capability = "partial_document_retrieval"
	// CapabilityNestedDocumentAccess: adapter can resolve a dotted path
	// that descends into nested sub-documents, not just top-level fields.
	// Required by the Traverse workload.
	CapabilityNestedDocumentAccess Capability = "nested_document_access"
	// CapabilityBulkInsert: adapter overrides ExecuteBulk with a real
	// batched path rather than sequential fan-out. Soft hint; no built-in
	// workload hard-gates on it.
	CapabilityBulkInsert Capability = "bulk_insert"
	// CapabilityIndexedTraversal: adapter maintains a field-offset index
	// so traversal cost does not scale with field position. Soft hint
	// (server-traversal timing availability); no built-in workload
	// hard-gates on it.
	CapabilityIndexedTraversal Capability = "indexed_traversal"
)

// Connection is the adapter-owned handle returned by Adapter.Connect. The
// engine never inspects its contents; it exists solely to be threaded
// back into Execute/ExecuteBulk/Close calls.
type Connection interface {
	// ID identifies this connection instance, for logging.
	ID() string
	// Close releases the connection's resources. Must be idempotent.
	Close() error
}
