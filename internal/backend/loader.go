package backend

import (
	"fmt"
	"plugin"

	"github.com/dreamware/julea/internal/handle"
)

// Descriptor is the tagged union a plugin's exported symbol returns:
// exactly one of Object or KV is populated.
type Descriptor struct {
	Type   handle.Kind
	Object Object
	KV     KV
}

// InfoSymbol is the single exported symbol name every backend plugin must
// provide, mirroring the upstream ABI's "backend_info" contract.
const InfoSymbol = "BackendInfo"

// InfoFunc is the signature InfoSymbol must resolve to.
type InfoFunc func(handle.Kind) *Descriptor

// Load tries each path in order, opening it as a Go plugin and resolving
// InfoSymbol: a build-tree path first, then an install path, with the first
// successful symbol resolution winning. The first path that both opens and
// yields a non-nil descriptor for kind wins;
// failures to open or resolve are not fatal until every path is exhausted.
//
// This is the one place this module reaches for the standard library where
// the example corpus offers no alternative: no third-party dynamic-loading
// library in the corpus loads Go shared-object plugins, so the stdlib
// plugin package is the idiomatic mechanism (see DESIGN.md).
func Load(paths []string, kind handle.Kind) (*Descriptor, error) {
	var lastErr error

	for _, path := range paths {
		p, err := plugin.Open(path)
		if err != nil {
			lastErr = err
			continue
		}

		sym, err := p.Lookup(InfoSymbol)
		if err != nil {
			lastErr = err
			continue
		}

		info, ok := sym.(func(handle.Kind) *Descriptor)
		if !ok {
			lastErr = fmt.Errorf("backend: %s: %s has unexpected type %T", path, InfoSymbol, sym)
			continue
		}

		desc := info(kind)
		if desc == nil {
			continue
		}
		if desc.Type != kind {
			lastErr = fmt.Errorf("backend: %s: descriptor kind mismatch (want %v, got %v)", path, kind, desc.Type)
			continue
		}

		return desc, nil
	}

	return nil, fmt.Errorf("backend: no usable plugin found among %v: %w", paths, lastErr)
}

// BuildAndInstallPaths returns the two-element search order: a build-tree
// path first, then an install path.
func BuildAndInstallPaths(buildDir, installDir, component, name string) []string {
	ext := pluginExtension()
	return []string{
		buildDir + "/" + component + "/" + name + ext,
		installDir + "/" + component + "/" + name + ext,
	}
}

func pluginExtension() string {
	return ".so"
}
