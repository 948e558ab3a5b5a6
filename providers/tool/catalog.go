package tool

import (
	"strings"
	"sync"

	"github.com/routegate/routegate/providers/ai"
)

// Catalog is a thread-safe, name-keyed registry of tools. Names are
// normalized to lowercase, so lookups are case-insensitive. Tool names must
// be unique within one orchestration run; adding a tool with an existing
// name replaces it.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]GenericTool
}

// NewCatalog creates an empty catalog, optionally pre-populated with tools.
func NewCatalog(tools ...GenericTool) *Catalog {
	catalog := &Catalog{tools: make(map[string]GenericTool)}
	catalog.Add(tools...)
	return catalog
}

// Add registers tools under their ToolInfo().Name, replacing same-named
// entries.
func (c *Catalog) Add(tools ...GenericTool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tools {
		c.tools[strings.ToLower(t.ToolInfo().Name)] = t
	}
}

// Get retrieves a tool by name (case-insensitive).
func (c *Catalog) Get(name string) (GenericTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, exists := c.tools[strings.ToLower(name)]
	return t, exists
}

// Has reports whether a tool with the given name is registered.
func (c *Catalog) Has(name string) bool {
	_, exists := c.Get(name)
	return exists
}

// Remove deletes a tool by name, reporting whether it was present.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	lower := strings.ToLower(name)
	if _, exists := c.tools[lower]; exists {
		delete(c.tools, lower)
		return true
	}
	return false
}

// Size returns the number of registered tools.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Descriptions returns the ToolDescription of every registered tool, in no
// particular order. Used to populate ChatRequest.Tools.
func (c *Catalog) Descriptions() []ai.ToolDescription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	descriptions := make([]ai.ToolDescription, 0, len(c.tools))
	for _, t := range c.tools {
		descriptions = append(descriptions, t.ToolInfo())
	}
	return descriptions
}

// Merge copies all tools from other into c, replacing same-named entries.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	for name, t := range other.tools {
		c.tools[name] = t
	}
}
