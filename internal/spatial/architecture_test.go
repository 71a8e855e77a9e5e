package spatial

import (
	"testing"

	"ideospace/testutil"
)

func TestSpatialStaysPure(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(ip string) bool {
		return testutil.ThirdPartyImport(ip) || (testutil.ModuleImport(ip) && ip != "ideospace/pkg/domain")
	}, "spatial may import only the standard library and pkg/domain")
}
