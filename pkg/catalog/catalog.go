package catalog

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrAlreadyRegistered is returned by Register when a type is already present.
type ErrAlreadyRegistered struct {
	Type string
}

func (e *ErrAlreadyRegistered) Error() string {
	return fmt.Sprintf("catalog: node type %q is already registered", e.Type)
}

// Catalog is the process-wide registry of node types. Safe for concurrent
// use; intended to be populated once at startup and read thereafter.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	logger  *slog.Logger
}

// New builds an empty Catalog.
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		entries: make(map[string]*Entry),
		logger:  logger.With("module", "catalog"),
	}
}

// Register adds an entry. Fails if the type is already registered.
func (c *Catalog) Register(entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.Type]; exists {
		return &ErrAlreadyRegistered{Type: entry.Type}
	}
	c.entries[entry.Type] = entry
	c.logger.Debug("registered node type", "type", entry.Type, "category", entry.Category)
	return nil
}

// Lookup returns the entry for a type, or ok=false if unregistered.
func (c *Catalog) Lookup(nodeType string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[nodeType]
	return e, ok
}

// ByCategory returns every entry in a category, in registration order is
// not guaranteed (map iteration).
func (c *Catalog) ByCategory(cat Category) []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*Entry
	for _, e := range c.entries {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// ValidateConfig runs the declarative schema then, if present, the
// custom_validate hook for a node type's config.
func (c *Catalog) ValidateConfig(nodeType string, config map[string]any, ctx ConfigValidationContext) (bool, []ConfigIssue) {
	entry, ok := c.Lookup(nodeType)
	if !ok {
		return false, []ConfigIssue{{Path: "type", Message: fmt.Sprintf("unknown node type %q", nodeType)}}
	}

	var issues []ConfigIssue

	if entry.ConfigSchema != nil {
		schemaLoader := gojsonschema.NewGoLoader(entry.ConfigSchema)
		if config == nil {
			config = map[string]any{}
		}
		docLoader := gojsonschema.NewGoLoader(config)

		result, err := gojsonschema.Validate(schemaLoader, docLoader)
		if err != nil {
			issues = append(issues, ConfigIssue{Path: "", Message: err.Error()})
		} else if !result.Valid() {
			for _, re := range result.Errors() {
				issues = append(issues, ConfigIssue{Path: re.Field(), Message: re.Description()})
			}
		}
	}

	if entry.CustomValidate != nil {
		issues = append(issues, entry.CustomValidate(config, ctx)...)
	}

	return len(issues) == 0, issues
}

// HealthCheck reports whether the catalog has been populated. The Runtime
// aggregates this into /health.
func (c *Catalog) HealthCheck() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return fmt.Errorf("catalog: no node types registered")
	}
	return nil
}
