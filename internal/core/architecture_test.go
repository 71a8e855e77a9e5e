package core

import (
	"go/types"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"

	"ideospace/testutil"
)

// TestGatewayImplementationsStayInPersistence ensures concrete
// domain.Gateway implementations live only under infra/persistence, so a
// new backend cannot appear elsewhere without updating this list.
func TestGatewayImplementationsStayInPersistence(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, "ideospace/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var gateway *types.Interface
	for _, p := range pkgs {
		if p.PkgPath != "ideospace/pkg/domain" || p.Types == nil {
			continue
		}
		obj := p.Types.Scope().Lookup("Gateway")
		if obj == nil {
			t.Fatalf("domain.Gateway not found")
		}
		iface, ok := obj.Type().Underlying().(*types.Interface)
		if !ok {
			t.Fatalf("domain.Gateway is not an interface")
		}
		gateway = iface
	}
	if gateway == nil {
		t.Fatalf("failed to resolve domain.Gateway")
	}

	var found, unexpected []string
	for _, p := range pkgs {
		if p.Types == nil {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			named, ok := scope.Lookup(name).Type().(*types.Named)
			if !ok {
				continue
			}
			if _, isIface := named.Underlying().(*types.Interface); isIface {
				continue
			}
			if !types.Implements(types.NewPointer(named), gateway) {
				continue
			}
			found = append(found, p.PkgPath+"."+name)
			if !strings.HasPrefix(p.PkgPath, "ideospace/internal/infra/persistence/") {
				unexpected = append(unexpected, p.PkgPath+"."+name)
			}
		}
	}
	sort.Strings(found)
	if len(unexpected) > 0 {
		t.Fatalf("domain.Gateway implemented outside infra/persistence: %v", unexpected)
	}
	want := []string{
		"ideospace/internal/infra/persistence/memory.Store",
		"ideospace/internal/infra/persistence/sqlstore.Store",
	}
	if strings.Join(found, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected gateway implementations: got %v want %v", found, want)
	}
}

// TestCoreDoesNotImportArchive keeps the dependency pointing from the
// archive exporter to the core and not the other way round.
func TestCoreDoesNotImportArchive(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, ".", testutil.ArchiveImport, "core must not depend on the snapshot archive")
}
