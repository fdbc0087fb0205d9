package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soapcore/internal/query"
	"soapcore/pkg/domain"
)

const hydrationReply = `{"data":{"userById":{"user":{
  "id":"u1","firstName":"Ada","email":"ada@example.org",
  "properties":[
    {"id":"pA","name":"Property A",
     "hub":{"id":"h1","name":"Central Hub"},
     "pickups":[{"id":"pk1","status":"SUBMITTED",
                 "cartons":[{"id":"c1","product":"SOAP","percentFull":50},
                            {"id":"c2","product":"LINENS","percentFull":100}]}],
     "contract":{"id":"k1","price":12.5,"automatedBilling":true}},
    {"id":"pB","name":"Property B","pickups":{"id":"pk-bad"}}
  ]}}}}`

func TestInitialFetchScenario(t *testing.T) {
	ft := newFakeTransport().reply("userById", hydrationReply)
	logger := &recordingLogger{}
	c, store := newTestClient(t, ft, WithLogger(logger))

	var (
		calls  int
		gotRep Report
		gotErr error
	)
	c.Async(context.Background(), With(c.InitialFetch, "u1"), func(rep Report, err error) {
		calls++
		gotRep, gotErr = rep, err
	})
	c.Wait()

	require.Equal(t, 1, calls)
	require.NoError(t, gotErr)
	assert.Equal(t, query.OpInitialFetch, gotRep.Operation)

	user, ok := store.GetUser("u1")
	require.True(t, ok)
	assert.Equal(t, []string{"pA", "pB"}, user.PropertyIDs)
	session, ok := store.SessionUser()
	require.True(t, ok)
	assert.Equal(t, "u1", session.ID)

	propA, ok := store.GetProperty("pA")
	require.True(t, ok)
	assert.Equal(t, "h1", propA.HubID)
	assert.Equal(t, "k1", propA.ContractID)

	hub, ok := store.PropertyHub("pA")
	require.True(t, ok)
	assert.Equal(t, "Central Hub", hub.Name)
	contract, ok := store.PropertyContract("pA")
	require.True(t, ok)
	assert.True(t, contract.AutomatedBilling)

	pickups := store.PropertyPickups("pA")
	require.Len(t, pickups, 1)
	assert.Equal(t, "pk1", pickups[0].ID)
	assert.Len(t, store.PickupCartons("pk1"), 2)

	_, ok = store.GetProperty("pB")
	require.True(t, ok)
	assert.Empty(t, store.PropertyPickups("pB"))
	_, ok = store.GetPickup("pk-bad")
	assert.False(t, ok)

	require.Len(t, gotRep.Warnings, 1)
	w := gotRep.Warnings[0]
	assert.Equal(t, domain.EntityPickup, w.Entity)
	assert.Equal(t, "pB", w.ID)
	assert.ErrorIs(t, w, ErrShapeMismatch)
	assert.Equal(t, 1, logger.warnCount())

	assert.Equal(t, []string{"userById"}, ft.calls, "no hub on the session user, so no report fetch")
}

func TestInitialFetchSkipsMalformedProperty(t *testing.T) {
	ft := newFakeTransport().reply("userById", `{"data":{"userById":{"user":{"id":"u1","properties":[
		{"name":"no id","hub":{"id":"h9"}},
		{"id":"p2","hub":{"name":"hub without id"},"contract":"oops"}
	]}}}}`)
	c, store := newTestClient(t, ft)

	rep, err := c.InitialFetch(context.Background(), "u1")
	require.NoError(t, err)

	_, ok := store.GetProperty("p2")
	assert.True(t, ok)
	assert.Empty(t, store.ListHubs(), "the hub of a skipped property is not parsed")
	assert.Empty(t, store.ListHospitalityContracts())

	require.Len(t, rep.Warnings, 3)
	assert.Equal(t, domain.EntityProperty, rep.Warnings[0].Entity)
	assert.Equal(t, 0, rep.Warnings[0].Index)
	assert.Equal(t, domain.EntityHub, rep.Warnings[1].Entity)
	assert.ErrorIs(t, rep.Warnings[1], domain.ErrMissingID)
	assert.Equal(t, domain.EntityHospitalityContract, rep.Warnings[2].Entity)
	assert.ErrorIs(t, rep.Warnings[2], ErrShapeMismatch)
}

func TestInitialFetchRequiresUserAndProperties(t *testing.T) {
	t.Run("user without id", func(t *testing.T) {
		ft := newFakeTransport().reply("userById", `{"data":{"userById":{"user":{"firstName":"Ada","properties":[]}}}}`)
		c, store := newTestClient(t, ft)
		_, err := c.InitialFetch(context.Background(), "u1")
		require.ErrorIs(t, err, ErrObjectInit)
		assert.Contains(t, err.Error(), "unwrap")
		requireEmpty(t, store)
	})
	t.Run("user not an object", func(t *testing.T) {
		ft := newFakeTransport().reply("userById", `{"data":{"userById":{"user":["u1"]}}}`)
		c, store := newTestClient(t, ft)
		_, err := c.InitialFetch(context.Background(), "u1")
		require.ErrorIs(t, err, ErrShapeMismatch)
		requireEmpty(t, store)
	})
	t.Run("properties not an array", func(t *testing.T) {
		ft := newFakeTransport().reply("userById", `{"data":{"userById":{"user":{"id":"u1","properties":{"id":"p1"}}}}}`)
		c, store := newTestClient(t, ft)
		_, err := c.InitialFetch(context.Background(), "u1")
		require.ErrorIs(t, err, ErrShapeMismatch)
		_, ok := store.GetUser("u1")
		assert.True(t, ok, "the user is kept; there is no rollback")
		assert.Empty(t, store.ListProperties())
	})
	t.Run("empty id", func(t *testing.T) {
		ft := newFakeTransport()
		c, _ := newTestClient(t, ft)
		_, err := c.InitialFetch(context.Background(), "")
		require.ErrorIs(t, err, ErrRequestInit)
		assert.Zero(t, ft.callCount())
	})
}

func TestInitialFetchJoinsHubReports(t *testing.T) {
	ft := newFakeTransport().
		reply("userById", `{"data":{"userById":{"user":{"id":"u1","hub":{"id":"h1"},"properties":[]}}}}`).
		reply("productionReportsByHubId", `{"data":{"productionReportsByHubId":{"productionReports":[
			{"id":"r1","hub":{"id":"h1"},"barsProduced":100},
			{"id":"r2","hub":{"id":"h1"},"barsProduced":80}]}}}`)
	c, store := newTestClient(t, ft)
	store.SetSessionUser(domain.User{ID: "u1", HubID: "h1"})

	completions := 0
	c.Async(context.Background(), With(c.InitialFetch, "u1"), func(rep Report, err error) {
		completions++
		assert.NoError(t, err)
		assert.Len(t, rep.Upserted, 3)
	})
	c.Wait()

	assert.Equal(t, 1, completions)
	assert.ElementsMatch(t, []string{"userById", "productionReportsByHubId"}, ft.calls)
	assert.Len(t, store.HubProductionReports("h1"), 2)
}

func TestInitialFetchReportsFailureCompletesOnce(t *testing.T) {
	reportsErr := errors.New("reports unavailable")
	ft := newFakeTransport().
		reply("userById", `{"data":{"userById":{"user":{"id":"u1","properties":[{"id":"p1"}]}}}}`).
		fail("productionReportsByHubId", reportsErr)
	c, store := newTestClient(t, ft)
	store.SetSessionUser(domain.User{ID: "u0", HubID: "h1"})

	completions := 0
	var gotErr error
	c.Async(context.Background(), With(c.InitialFetch, "u1"), func(_ Report, err error) {
		completions++
		gotErr = err
	})
	c.Wait()

	assert.Equal(t, 1, completions)
	assert.Same(t, reportsErr, gotErr)
	_, ok := store.GetProperty("p1")
	assert.True(t, ok, "the main fetch still hydrates the store")
	session, _ := store.SessionUser()
	assert.Equal(t, "u1", session.ID)
}

func TestInitialFetchPersistsPartialWritesOnFailure(t *testing.T) {
	ft := newFakeTransport().
		reply("userById", `{"data":{"userById":{"user":{"id":"u1","properties":[{"id":"p1"}]}}}}`).
		fail("productionReportsByHubId", errors.New("reports down"))
	snap := &countingSnapshotter{}
	c, store := newTestClient(t, ft, WithSnapshotter(snap))
	store.SetSessionUser(domain.User{ID: "u0", HubID: "h1"})

	rep, err := c.InitialFetch(context.Background(), "u1")
	require.Error(t, err)
	assert.NotEmpty(t, rep.Upserted)
	_, ok := store.GetProperty("p1")
	require.True(t, ok)
	assert.EqualValues(t, 1, snap.calls.Load(), "hydrated entities reach the snapshot")
}
