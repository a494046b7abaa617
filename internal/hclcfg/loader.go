// Package hclcfg is the HCL implementation of the cfgctx.Loader interface.
// Each file is a flat set of attributes; expressions are evaluated without a
// context, so values must be literals or constant expressions.
package hclcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/facetgo/internal/cfgctx"
	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/fsutil"
)

// Loader loads configuration from .hcl files.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from the given paths and deep-merges
// the results, later paths taking precedence. A path may be a single file or
// a directory to walk; paths that do not exist are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (cfgctx.Map, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := collectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	merged := cfgctx.Map{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		attrs, diags := hclFile.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		fileMap := cfgctx.Map{}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate attribute %q in %s: %w", name, file, diags)
			}
			goVal, err := ctyValueToInterface(val)
			if err != nil {
				return nil, fmt.Errorf("attribute %q in %s: %w", name, file, err)
			}
			fileMap[name] = goVal
		}
		merged = cfgctx.Merge(merged, fileMap)
	}

	logger.Debug("HCL loading complete.", "keys", len(merged))
	return merged, nil
}

// collectFiles expands the given paths into a flat, deduplicated file list.
// Directories are walked recursively; missing paths are not an error.
func collectFiles(paths []string, ext string) ([]string, error) {
	var all []string
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
			found, err := fsutil.FindFilesByExtension(path, ext)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				if _, ok := seen[f]; !ok {
					all = append(all, f)
					seen[f] = struct{}{}
				}
			}
		} else if filepath.Ext(path) == ext {
			if _, ok := seen[path]; !ok {
				all = append(all, path)
				seen[path] = struct{}{}
			}
		}
	}
	return all, nil
}

// ctyValueToInterface converts a cty.Value to a plain Go value.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsObjectType() || val.Type().IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() || val.Type().IsSetType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", val.Type().FriendlyName())
}
