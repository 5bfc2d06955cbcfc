// Package mjml renders MJML sources to HTML so they can be repaired like
// any hand-written template.
//
// Sources may contain Go template actions; they are executed with the
// caller's data before the MJML is compiled.
package mjml

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/preslavrachev/gomjml/mjml"
	"github.com/zeromicro/go-zero/core/logx"
)

// Ext is the file extension of MJML sources.
const Ext = ".mjml"

// Renderer compiles MJML sources, caching output per source and data.
type Renderer struct {
	templates map[string]*template.Template
	cache     map[string]string
	mu        sync.RWMutex
	options   *RenderOptions
}

// RenderOptions configures the renderer.
type RenderOptions struct {
	EnableCache bool // Cache rendered HTML keyed by template and data
	EnableDebug bool // Keep gomjml debug attributes in the output
}

// RendererOption configures the renderer
type RendererOption func(*RenderOptions)

// WithCache enables HTML output caching
func WithCache(enabled bool) RendererOption {
	return func(opts *RenderOptions) {
		opts.EnableCache = enabled
	}
}

// WithDebug adds gomjml debug attributes to generated HTML
func WithDebug(enabled bool) RendererOption {
	return func(opts *RenderOptions) {
		opts.EnableDebug = enabled
	}
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts ...RendererOption) *Renderer {
	options := &RenderOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return &Renderer{
		templates: make(map[string]*template.Template),
		cache:     make(map[string]string),
		options:   options,
	}
}

// IsSource reports whether path names an MJML source, or content is one.
func IsSource(path, content string) bool {
	if strings.EqualFold(filepath.Ext(path), Ext) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(content)), "<mjml")
}

// LoadTemplate parses an MJML source under name, replacing any previous
// source and its cached output.
func (r *Renderer) LoadTemplate(name, content string) error {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = tmpl
	for key := range r.cache {
		if strings.HasPrefix(key, name+"_") {
			delete(r.cache, key)
		}
	}
	return nil
}

// LoadFile loads an MJML file, naming it after its base name, and returns
// that name.
func (r *Renderer) LoadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return name, r.LoadTemplate(name, string(content))
}

// HasTemplate checks if a template is loaded
func (r *Renderer) HasTemplate(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}

// RenderTemplate executes a loaded source with data and compiles the
// result to HTML.
func (r *Renderer) RenderTemplate(name string, data any) (string, error) {
	r.mu.RLock()
	tmpl, exists := r.templates[name]
	r.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	cacheKey, err := r.createCacheKey(name, data)
	if err != nil {
		return "", fmt.Errorf("failed to create cache key for template %s: %w", name, err)
	}
	if r.options.EnableCache {
		r.mu.RLock()
		cached, found := r.cache[cacheKey]
		r.mu.RUnlock()
		if found {
			renderCacheHits.Inc(name)
			return cached, nil
		}
		renderCacheMisses.Inc(name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	start := time.Now()
	html, err := r.renderMJML(buf.String())
	renderDuration.Observe(time.Since(start).Milliseconds(), name)
	if err != nil {
		return "", fmt.Errorf("failed to render MJML for template %s: %w", name, err)
	}

	if r.options.EnableCache {
		r.mu.Lock()
		r.cache[cacheKey] = html
		r.mu.Unlock()
	}
	logx.Debugf("rendered mjml template %s (%d bytes)", name, len(html))
	return html, nil
}

// RenderString compiles MJML content directly, without template actions.
func (r *Renderer) RenderString(content string) (string, error) {
	return r.renderMJML(content)
}

// CacheSize returns the number of cached HTML entries.
func (r *Renderer) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *Renderer) renderMJML(content string) (string, error) {
	var opts []mjml.RenderOption
	if r.options.EnableDebug {
		opts = append(opts, mjml.WithDebugTags(true))
	}
	if r.options.EnableCache {
		opts = append(opts, mjml.WithCache())
	}

	html, err := mjml.Render(content, opts...)
	if err != nil {
		return "", fmt.Errorf("gomjml render failed: %w", err)
	}
	return html, nil
}

// createCacheKey hashes the template name and JSON-encoded data.
func (r *Renderer) createCacheKey(name string, data any) (string, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to serialize data for caching: %w", err)
	}

	hasher := sha256.New()
	hasher.Write([]byte(name))
	hasher.Write(dataBytes)
	hash := fmt.Sprintf("%x", hasher.Sum(nil))
	return fmt.Sprintf("%s_%s", name, hash[:16]), nil
}

// StopCache stops gomjml's background AST cache cleanup.
func StopCache() {
	mjml.StopASTCacheCleanup()
}
