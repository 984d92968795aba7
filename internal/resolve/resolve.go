// Package resolve turns entity references into display names, loading the
// documents of external scenes on demand.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// ErrUnknownScene indicates no document is configured for an external scene.
var ErrUnknownScene = errors.New("unknown external scene")

// Loader fetches the document defining an external scene.
type Loader interface {
	Load(ctx context.Context, scene string) (*entity.Entity, error)
}

// FileLoader loads scenes from the paths given in configuration.
type FileLoader struct {
	paths map[string]string
}

// NewFileLoader returns a loader for scene -> path mappings. Scene names are
// matched after Normalize.
func NewFileLoader(paths map[string]string) *FileLoader {
	norm := make(map[string]string, len(paths))
	for scene, path := range paths {
		norm[Normalize(scene)] = path
	}
	return &FileLoader{paths: norm}
}

// Load reads and decodes the document for scene.
func (l *FileLoader) Load(_ context.Context, scene string) (*entity.Entity, error) {
	path, ok := l.paths[Normalize(scene)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScene, scene)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", scene, err)
	}
	return entity.Decode(data)
}

// Normalize canonicalises a scene name for lookups. Scene paths are
// case-insensitive in the asset system.
func Normalize(scene string) string {
	return cases.Fold().String(strings.TrimSpace(scene))
}

// Resolver memoises scene loads. Concurrent requests for the same scene share
// one load. A Resolver is safe for concurrent use.
type Resolver struct {
	loader  Loader
	logger  *slog.Logger
	workers int

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]*entity.Entity
}

// New returns a Resolver backed by loader. workers bounds concurrent loads
// in Names; values below 1 mean 4.
func New(loader Loader, logger *slog.Logger, workers int) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if workers < 1 {
		workers = 4
	}
	return &Resolver{
		loader:  loader,
		logger:  logger.With("component", "resolve"),
		workers: workers,
		cache:   make(map[string]*entity.Entity),
	}
}

// Scene returns the document for scene, loading it at most once.
func (r *Resolver) Scene(ctx context.Context, scene string) (*entity.Entity, error) {
	key := Normalize(scene)
	r.mu.Lock()
	doc, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return doc, nil
	}

	v, err, shared := r.group.Do(key, func() (any, error) {
		r.mu.Lock()
		doc, ok := r.cache[key]
		r.mu.Unlock()
		if ok {
			return doc, nil
		}
		r.logger.Debug("loading scene", "scene", scene)
		doc, err := r.loader.Load(ctx, scene)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[key] = doc
		r.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("shared scene load", "scene", scene)
	}
	return v.(*entity.Entity), nil
}

// Name returns a display name for ref as seen from doc: the sub-entity's
// name followed by its id. Unresolvable targets are rendered with a marker
// rather than failing, except when loading an external scene errors for a
// reason other than it not being configured.
func (r *Resolver) Name(ctx context.Context, doc *entity.Entity, ref entity.Ref) (string, error) {
	if id, ok := ref.LocalTarget(); ok {
		return Describe(doc, id), nil
	}
	if !ref.IsExternal() {
		return "null", nil
	}
	scene, err := r.Scene(ctx, ref.ExternalScene)
	if errors.Is(err, ErrUnknownScene) {
		return fmt.Sprintf("%s in %s", ref.ID, ref.ExternalScene), nil
	}
	if err != nil {
		return "", err
	}
	return Describe(scene, ref.ID) + " in " + ref.ExternalScene, nil
}

// Names resolves refs concurrently. The result is index-aligned with refs.
func (r *Resolver) Names(ctx context.Context, doc *entity.Entity, refs []entity.Ref) ([]string, error) {
	out := make([]string, len(refs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)
	for i, ref := range refs {
		eg.Go(func() error {
			name, err := r.Name(ctx, doc, ref)
			if err != nil {
				return err
			}
			out[i] = name
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Describe renders id within doc as "name (id)", or "? (id)" when absent.
func Describe(doc *entity.Entity, id string) string {
	s, ok := doc.Entities.Get(id)
	switch {
	case !ok:
		return fmt.Sprintf("? (%s)", id)
	case s.Name == "":
		return id
	}
	return fmt.Sprintf("%s (%s)", s.Name, id)
}
