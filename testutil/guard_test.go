package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"third party", ThirdPartyImport, "github.com/jmoiron/sqlx", true},
		{"third party std", ThirdPartyImport, "net/http", false},
		{"third party module", ThirdPartyImport, "ideospace/pkg/domain", false},
		{"module", ModuleImport, "ideospace/internal/core", true},
		{"module root", ModuleImport, "ideospace", true},
		{"module lookalike", ModuleImport, "ideospacex/core", false},
		{"infra", InfraImport, "ideospace/internal/infra/persistence/memory", true},
		{"infra other", InfraImport, "ideospace/internal/core", false},
		{"archive", ArchiveImport, "ideospace/internal/archive", true},
		{"archive store", ArchiveImport, "ideospace/internal/archive/store", true},
		{"archive infra", ArchiveImport, "ideospace/internal/infra/archive/s3", true},
		{"archive lookalike", ArchiveImport, "ideospace/internal/archiver", false},
	}
	for _, c := range cases {
		if got := c.fn(c.in); got != c.want {
			t.Fatalf("%s: predicate(%q)=%v want %v", c.name, c.in, got, c.want)
		}
	}
}

type captureTB struct {
	testing.TB
	failed string
}

func (c *captureTB) Helper() {}
func (c *captureTB) Fatalf(format string, args ...any) {
	c.failed = format
}

func writePkg(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.go"), []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x_test.go"), []byte("package tmp\nimport _ \"github.com/stretchr/testify\"\n"), 0o600); err != nil {
		t.Fatalf("write test: %v", err)
	}
	return dir
}

func TestAssertNoDirectImports(t *testing.T) {
	dir := writePkg(t, "package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}\n")
	AssertNoDirectImports(t, dir, ThirdPartyImport, "std only")

	bad := writePkg(t, "package tmp\nimport _ \"github.com/jmoiron/sqlx\"\n")
	c := &captureTB{}
	AssertNoDirectImports(c, bad, ThirdPartyImport, "std only")
	if !strings.Contains(c.failed, "forbidden direct imports") {
		t.Fatalf("expected violation, got %q", c.failed)
	}
}

func TestAssertNoTransitiveDependency(t *testing.T) {
	prev := goListDeps
	t.Cleanup(func() { goListDeps = prev })

	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nideospace/pkg/domain\nideospace/internal/core\n"), nil
	}
	AssertNoTransitiveDependency(t, "./...", ArchiveImport, "no archive")

	goListDeps = func(string) ([]byte, error) {
		return []byte("ideospace/internal/archive\n"), nil
	}
	c := &captureTB{}
	AssertNoTransitiveDependency(c, "./...", ArchiveImport, "no archive")
	if !strings.Contains(c.failed, "forbidden transitive dependency") {
		t.Fatalf("expected violation, got %q", c.failed)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	c = &captureTB{}
	AssertNoTransitiveDependency(c, "./...", ArchiveImport, "no archive")
	if !strings.Contains(c.failed, "go list failed") {
		t.Fatalf("expected go list failure, got %q", c.failed)
	}
}
