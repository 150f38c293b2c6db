package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// Compiler validates persisted blobs against the schema registered for their key
type Compiler struct {
	compiler *js.Compiler
	cache    *expirable.LRU[string, *js.Schema]
	catalog  map[string]string
}

// NewCompilerWithCache creates a compiler over the built-in blob schemas
func NewCompilerWithCache(maxSize int) *Compiler {
	return NewCompilerWithCatalog(maxSize, BlobSchemas)
}

// NewCompilerWithCatalog creates a compiler over a custom name -> schema catalog
func NewCompilerWithCatalog(maxSize int, catalog map[string]string) *Compiler {
	if maxSize <= 0 {
		maxSize = 16
	}
	c := js.NewCompiler()
	c.Draft = js.Draft2020

	return &Compiler{
		compiler: c,
		cache:    expirable.NewLRU[string, *js.Schema](maxSize, nil, time.Hour),
		catalog:  catalog,
	}
}

// Has reports whether a schema is registered under name
func (c *Compiler) Has(name string) bool {
	_, ok := c.catalog[name]
	return ok
}

// Prepare compiles and caches the schema registered under name
func (c *Compiler) Prepare(ctx context.Context, name string) (*js.Schema, error) {
	if compiled, ok := c.cache.Get(name); ok {
		return compiled, nil
	}

	src, ok := c.catalog[name]
	if !ok {
		return nil, fmt.Errorf("no schema registered for %q", name)
	}

	resourceURL := fmt.Sprintf("mem://schema/%s.json", name)
	if err := c.compiler.AddResource(resourceURL, bytes.NewReader([]byte(src))); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := c.compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	c.cache.Add(name, compiled)
	return compiled, nil
}

// Validate checks raw JSON against the schema registered under name
func (c *Compiler) Validate(ctx context.Context, name string, raw []byte) error {
	compiled, err := c.Prepare(ctx, name)
	if err != nil {
		return err
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
