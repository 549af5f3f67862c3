package cubism

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/phanxgames/cubism/gfx"
)

// FileLoader returns replacement shader source for a variant name. A
// loader that has nothing for name returns an error wrapping fs.ErrNotExist;
// the backend's built-in source is used then.
type FileLoader func(name string) ([]byte, error)

// DirLoader loads "<dir>/<name><ext>" files.
func DirLoader(dir, ext string) FileLoader {
	return func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name+ext))
	}
}

type shaderEntry struct {
	pipeline gfx.Pipeline
	failed   bool
}

// ShaderStore compiles pipeline variants on first use and caches them.
// A variant that fails to compile is logged once and reported as nil until
// ReleaseInvalid is called.
type ShaderStore struct {
	dev     gfx.Device
	loader  FileLoader
	entries []shaderEntry
}

// NewShaderStore returns an empty store. loader may be nil.
func NewShaderStore(dev gfx.Device, loader FileLoader) *ShaderStore {
	return &ShaderStore{
		dev:     dev,
		loader:  loader,
		entries: make([]shaderEntry, ShaderNameCount),
	}
}

// PipelineDescFor returns the description of variant n including any
// loaded source override.
func (s *ShaderStore) PipelineDescFor(n ShaderName) (gfx.PipelineDesc, error) {
	desc := n.PipelineDesc()
	if s.loader == nil {
		return desc, nil
	}
	src, err := s.loader(desc.Name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return desc, nil
	case err != nil:
		return desc, fmt.Errorf("cubism: shader %s: %w: %w", desc.Name, ErrShaderSource, err)
	}
	desc.Source = src
	return desc, nil
}

// Pipeline returns the compiled variant n, compiling it if needed. It
// returns nil when n is out of range or failed to compile.
func (s *ShaderStore) Pipeline(n ShaderName) gfx.Pipeline {
	if n < 0 || n >= ShaderNameCount {
		return nil
	}
	e := &s.entries[n]
	if e.pipeline != nil || e.failed {
		return e.pipeline
	}
	desc, err := s.PipelineDescFor(n)
	if err == nil {
		e.pipeline, err = s.dev.CompilePipeline(desc)
	}
	if err != nil {
		e.failed = true
		Logger().Error("cubism: shader compile failed", "shader", n.String(), "error", err)
		return nil
	}
	return e.pipeline
}

// Compiled returns the number of cached pipelines.
func (s *ShaderStore) Compiled() int {
	n := 0
	for _, e := range s.entries {
		if e.pipeline != nil {
			n++
		}
	}
	return n
}

// ReleaseInvalid forgets failed compiles so they are retried.
func (s *ShaderStore) ReleaseInvalid() {
	for i := range s.entries {
		s.entries[i].failed = false
	}
}

// Release drops every cached pipeline.
func (s *ShaderStore) Release() {
	clear(s.entries)
}
