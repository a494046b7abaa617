// Package yamlcfg is the YAML implementation of the cfgctx.Loader interface.
package yamlcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vk/facetgo/internal/cfgctx"
	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/fsutil"
)

// Loader loads configuration from .yaml and .yml files.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every YAML file reachable from the given paths and deep-merges
// the results, later paths taking precedence. A path may be a single file or
// a directory to walk; paths that do not exist are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (cfgctx.Map, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	var files []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".yaml", ".yml")
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				if _, ok := seen[f]; !ok {
					files = append(files, f)
					seen[f] = struct{}{}
				}
			}
			continue
		}
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
			if _, ok := seen[path]; !ok {
				files = append(files, path)
				seen[path] = struct{}{}
			}
		}
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	merged := cfgctx.Map{}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading YAML file %s: %w", file, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML file %s: %w", file, err)
		}
		merged = cfgctx.Merge(merged, cfgctx.Map(doc))
	}

	logger.Debug("YAML loading complete.", "keys", len(merged))
	return merged, nil
}
