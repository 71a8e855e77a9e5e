package archive

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Only the archive package may reach the concrete backends under
// internal/infra/archive; everything else depends on archive.Store.
func TestOnlyArchivePackageImportsInfra(t *testing.T) {
	const (
		infraPrefix   = "ideospace/internal/infra/archive"
		allowedPrefix = "ideospace/internal/archive"
	)
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "ideospace/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if hasPathPrefix(pkg.PkgPath, allowedPrefix) || hasPathPrefix(pkg.PkgPath, infraPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			if hasPathPrefix(importPath, infraPrefix) {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return
	}
	violations := make([]string, 0, len(seen))
	for v := range seen {
		violations = append(violations, v)
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("forbidden import of infra archive package: %s", v)
	}
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
