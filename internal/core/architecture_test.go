package core

import (
	"testing"

	"soapcore/testutil"
)

// The client talks to the network only through the Transport interface and
// to the cache only through the memory store.
func TestCoreStaysTransportAgnostic(t *testing.T) {
	forbidden := testutil.AnyOf(
		testutil.Under("net/http"),
		testutil.Under("soapcore/internal/transport"),
		testutil.Under("soapcore/internal/infra/persistence/sqlite"),
		testutil.Under("soapcore/internal/infra/persistence/postgres"),
		testutil.Under("soapcore/internal/blob"),
	)
	testutil.AssertNoDirectImports(t, ".", forbidden, "core depends on interfaces, not drivers")
}
