package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soapcore/internal/infra/persistence/memory"
	"soapcore/internal/query"
	"soapcore/pkg/domain"
)

func newTestRegistry() (registry, *memory.Store, *recordingLogger) {
	store := memory.NewStore()
	logger := &recordingLogger{}
	return registry{store: store, logger: logger}, store, logger
}

func TestSingleObjectKindsUpsertOneEntity(t *testing.T) {
	cases := []struct {
		kind   query.PayloadKind
		entity domain.EntityType
		raw    map[string]any
	}{
		{query.PayloadProperty, domain.EntityProperty, map[string]any{"id": "p1", "name": "Seaside Inn", "rooms": int64(40)}},
		{query.PayloadUser, domain.EntityUser, map[string]any{"id": "u1", "firstName": "Ada", "hub": map[string]any{"id": "h1"}}},
		{query.PayloadHub, domain.EntityHub, map[string]any{"id": "h1", "name": "Central"}},
		{query.PayloadPickup, domain.EntityPickup, map[string]any{"id": "pk1", "status": "SUBMITTED"}},
		{query.PayloadProductionReport, domain.EntityProductionReport, map[string]any{"id": "r1", "barsProduced": int64(120)}},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			r, store, _ := newTestRegistry()
			var rep Report
			out, err := r.apply(tc.kind, tc.raw, &rep)
			require.NoError(t, err)
			assert.Nil(t, out)
			assert.Equal(t, []EntityRef{{Type: tc.entity, ID: tc.raw["id"].(string)}}, rep.Upserted)
			assert.Empty(t, rep.Warnings)

			v, ok := store.Lookup(tc.entity, tc.raw["id"].(string))
			require.True(t, ok)
			assert.NotNil(t, v)
			assert.Equal(t, 1, store.Counts()[tc.entity])
		})
	}
}

func TestDecodedFieldValues(t *testing.T) {
	r, store, _ := newTestRegistry()
	var rep Report
	_, err := r.apply(query.PayloadProperty, map[string]any{
		"id":             "p1",
		"name":           "Seaside Inn",
		"rooms":          int64(40),
		"billingAddress": map[string]any{"city": "Lisbon", "country": "PT"},
		"coordinates":    map[string]any{"latitude": 38.7, "longitude": -9.1},
		"hub":            map[string]any{"id": "h1", "name": "ignored here"},
		"users":          []any{map[string]any{"id": "u1"}, map[string]any{"id": "u2"}},
	}, &rep)
	require.NoError(t, err)

	p, ok := store.GetProperty("p1")
	require.True(t, ok)
	assert.Equal(t, "Seaside Inn", p.Name)
	assert.Equal(t, 40, p.Rooms)
	require.NotNil(t, p.BillingAddress)
	assert.Equal(t, "Lisbon", p.BillingAddress.City)
	require.NotNil(t, p.Coordinates)
	assert.InDelta(t, -9.1, p.Coordinates.Longitude, 1e-9)
	assert.Equal(t, "h1", p.HubID)
	assert.Equal(t, []string{"u1", "u2"}, p.UserIDs)
	_, cached := store.GetHub("h1")
	assert.False(t, cached, "a plain property parse does not cascade into the hub")
}

func TestRepeatedParseReplacesAllFields(t *testing.T) {
	r, store, _ := newTestRegistry()
	var rep Report
	_, err := r.apply(query.PayloadHub, map[string]any{"id": "h1", "name": "Central", "email": "hub@example.org"}, &rep)
	require.NoError(t, err)
	_, err = r.apply(query.PayloadHub, map[string]any{"id": "h1", "phone": "555"}, &rep)
	require.NoError(t, err)

	h, _ := store.GetHub("h1")
	assert.Equal(t, domain.Hub{ID: "h1", Phone: "555"}, h)
}

func TestListKindsSkipMalformedItems(t *testing.T) {
	cases := []struct {
		kind   query.PayloadKind
		entity domain.EntityType
	}{
		{query.PayloadProperties, domain.EntityProperty},
		{query.PayloadPickups, domain.EntityPickup},
		{query.PayloadProductionReports, domain.EntityProductionReport},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			r, store, logger := newTestRegistry()
			var rep Report
			items := []any{
				map[string]any{"id": "a"},
				map[string]any{"name": "no id"},
				"not an object",
				map[string]any{"id": "b"},
			}
			_, err := r.apply(tc.kind, items, &rep)
			require.NoError(t, err)
			assert.Equal(t, 2, store.Counts()[tc.entity])

			require.Len(t, rep.Warnings, 2)
			assert.Equal(t, 1, rep.Warnings[0].Index)
			assert.ErrorIs(t, rep.Warnings[0], ErrObjectInit)
			assert.ErrorIs(t, rep.Warnings[0], domain.ErrMissingID)
			assert.Equal(t, 2, rep.Warnings[1].Index)
			assert.ErrorIs(t, rep.Warnings[1], ErrShapeMismatch)
			assert.Equal(t, tc.entity, rep.Warnings[1].Entity)
			assert.Equal(t, 2, logger.warnCount())
		})
	}
}

func TestShapeMismatchIsFatal(t *testing.T) {
	r, store, _ := newTestRegistry()
	var rep Report

	_, err := r.apply(query.PayloadProperties, map[string]any{"id": "p1"}, &rep)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = r.apply(query.PayloadProperty, []any{map[string]any{"id": "p1"}}, &rep)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = r.apply(query.PayloadHub, "h1", &rep)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	for _, n := range store.Counts() {
		assert.Zero(t, n)
	}
}

func TestObjectInitFailureStoresNothing(t *testing.T) {
	r, store, _ := newTestRegistry()
	var rep Report

	_, err := r.apply(query.PayloadUser, map[string]any{"firstName": "Ada"}, &rep)
	require.ErrorIs(t, err, ErrObjectInit)
	_, err = r.apply(query.PayloadProperty, map[string]any{"id": "p1", "rooms": "many"}, &rep)
	require.ErrorIs(t, err, ErrObjectInit)

	assert.Empty(t, rep.Upserted)
	assert.Zero(t, store.Counts()[domain.EntityUser])
	assert.Zero(t, store.Counts()[domain.EntityProperty])
}

func TestSuccessSentinel(t *testing.T) {
	r, _, _ := newTestRegistry()
	cases := []struct {
		raw  any
		want error
	}{
		{int64(1), nil},
		{1, nil},
		{int64(0), ErrNotAcknowledged},
		{int64(2), ErrNotAcknowledged},
		{1.0, ErrShapeMismatch},
		{"1", ErrShapeMismatch},
		{true, ErrShapeMismatch},
		{map[string]any{}, ErrShapeMismatch},
	}
	for _, tc := range cases {
		var rep Report
		_, err := r.apply(query.PayloadSuccess, tc.raw, &rep)
		if tc.want == nil {
			assert.NoError(t, err, "%#v", tc.raw)
		} else {
			assert.ErrorIs(t, err, tc.want, "%#v", tc.raw)
		}
		assert.Empty(t, rep.Upserted)
	}
}

func TestPickupCascadesCartonsFirst(t *testing.T) {
	r, store, _ := newTestRegistry()
	var rep Report

	// The pickup itself has no id; its cartons still land in the store.
	_, err := r.apply(query.PayloadPickup, map[string]any{
		"status": "SUBMITTED",
		"cartons": []any{
			map[string]any{"id": "c1", "product": "SOAP", "percentFull": int64(80)},
			map[string]any{"product": "LINENS"},
			map[string]any{"id": "c2", "product": "PAPER"},
		},
	}, &rep)
	require.ErrorIs(t, err, ErrObjectInit)
	assert.Len(t, store.ListPickupCartons(), 2)
	assert.Empty(t, store.ListPickups())
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, domain.EntityPickupCarton, rep.Warnings[0].Entity)
	assert.Equal(t, []EntityRef{{Type: domain.EntityPickupCarton, ID: "c1"}, {Type: domain.EntityPickupCarton, ID: "c2"}}, rep.Upserted)

	c, _ := store.GetPickupCarton("c1")
	assert.Equal(t, 80, c.PercentFull)
}

func TestPickupWithMalformedCartonsStillStored(t *testing.T) {
	r, store, _ := newTestRegistry()
	var rep Report

	_, err := r.apply(query.PayloadPickup, map[string]any{
		"id":       "pk1",
		"cartons":  map[string]any{"id": "c1"},
		"property": map[string]any{"id": "p1"},
	}, &rep)
	require.NoError(t, err)
	p, ok := store.GetPickup("pk1")
	require.True(t, ok)
	assert.Equal(t, "p1", p.PropertyID)
	assert.Empty(t, p.CartonIDs)
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, "pk1", rep.Warnings[0].ID)
	assert.ErrorIs(t, rep.Warnings[0], ErrShapeMismatch)
}

func TestLogInWritesSessionOnly(t *testing.T) {
	r, store, _ := newTestRegistry()
	var rep Report
	_, err := r.apply(query.PayloadLogIn, map[string]any{"id": "u1", "email": "ada@example.org", "hub": map[string]any{"id": "h1"}}, &rep)
	require.NoError(t, err)

	session, ok := store.SessionUser()
	require.True(t, ok)
	assert.Equal(t, "h1", session.HubID)
	_, ok = store.GetUser("u1")
	assert.False(t, ok)
}

func TestPassThroughKinds(t *testing.T) {
	r, store, logger := newTestRegistry()
	raw := map[string]any{"soapRecycled": int64(3)}
	for _, kind := range []query.PayloadKind{query.PayloadImpactStats, query.PayloadHydration, query.PayloadKind(99)} {
		var rep Report
		out, err := r.apply(kind, raw, &rep)
		require.NoError(t, err)
		assert.Equal(t, raw, out)
		assert.Empty(t, rep.Upserted)
	}
	assert.Equal(t, 1, logger.warnCount(), "only the unknown kind is logged")
	for _, n := range store.Counts() {
		assert.Zero(t, n)
	}
}

func TestSchedulePickupNonSuccessIntegerFails(t *testing.T) {
	ft := newFakeTransport().reply("schedulePickup", `{"data":{"schedulePickup":{"pickup":0}}}`)
	c, store := newTestClient(t, ft)

	var (
		calls  int
		gotErr error
	)
	c.Async(context.Background(), With(c.SchedulePickup, domain.SchedulePickupInput{PropertyID: "p1", ReadyDate: "2026-10-20"}),
		func(_ Report, err error) {
			calls++
			gotErr = err
		})
	c.Wait()

	assert.Equal(t, 1, calls)
	require.Error(t, gotErr)
	assert.ErrorIs(t, gotErr, ErrShapeMismatch)
	assert.Empty(t, store.ListPickups())
}
