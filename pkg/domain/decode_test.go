package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePropertyCollectsReferences(t *testing.T) {
	obj := map[string]any{
		"id":    "p1",
		"name":  "Harbor Inn",
		"rooms": int64(42),
		"billingAddress": map[string]any{
			"address1": "1 Pier St",
			"city":     "Lisbon",
		},
		"coordinates": map[string]any{"latitude": 38.7, "longitude": int64(-9)},
		"hub":         map[string]any{"id": "h1", "name": "Central"},
		"pickups": []any{
			map[string]any{"id": "pk1"},
			"garbage",
			map[string]any{"id": ""},
			map[string]any{"id": "pk2"},
		},
		"contract": map[string]any{"id": "c1"},
		"users":    []any{map[string]any{"id": "u1", "firstName": "Ana"}},
	}

	p, err := DecodeProperty(obj)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Harbor Inn", p.Name)
	assert.Equal(t, 42, p.Rooms)
	require.NotNil(t, p.BillingAddress)
	assert.Equal(t, "Lisbon", p.BillingAddress.City)
	require.NotNil(t, p.Coordinates)
	assert.InDelta(t, -9.0, p.Coordinates.Longitude, 0.0001)
	assert.Equal(t, "h1", p.HubID)
	assert.Equal(t, "c1", p.ContractID)
	assert.Equal(t, []string{"pk1", "pk2"}, p.PickupIDs)
	assert.Equal(t, []string{"u1"}, p.UserIDs)
	assert.Nil(t, p.Impact)
}

func TestDecodePropertyIgnoresMalformedNestedShapes(t *testing.T) {
	p, err := DecodeProperty(map[string]any{
		"id":       "p2",
		"pickups":  map[string]any{"id": "pk1"},
		"contract": "c1",
		"hub":      nil,
	})
	require.NoError(t, err)
	assert.Empty(t, p.PickupIDs)
	assert.Empty(t, p.ContractID)
	assert.Empty(t, p.HubID)
}

func TestDecodeRequiresID(t *testing.T) {
	cases := map[string]func() error{
		"user":     func() error { _, err := DecodeUser(map[string]any{"firstName": "x"}); return err },
		"property": func() error { _, err := DecodeProperty(map[string]any{"id": ""}); return err },
		"hub":      func() error { _, err := DecodeHub(map[string]any{"id": nil}); return err },
		"pickup":   func() error { _, err := DecodePickup(map[string]any{}); return err },
		"carton":   func() error { _, err := DecodePickupCarton(map[string]any{"product": "soap"}); return err },
		"contract": func() error { _, err := DecodeHospitalityContract(map[string]any{}); return err },
		"report":   func() error { _, err := DecodeProductionReport(map[string]any{}); return err },
	}
	for name, decode := range cases {
		t.Run(name, func(t *testing.T) {
			err := decode()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingID), "got %v", err)
			var decErr *DecodeError
			assert.True(t, errors.As(err, &decErr))
		})
	}
}

func TestDecodeRejectsWrongFieldTypes(t *testing.T) {
	_, err := DecodeProperty(map[string]any{"id": "p1", "rooms": "lots"})
	require.Error(t, err)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, EntityProperty, decErr.Entity)

	_, err = DecodeUser(map[string]any{"id": int64(7)})
	require.Error(t, err)

	_, err = DecodeUser(nil)
	require.Error(t, err)
}

func TestDecodeUserAndPickup(t *testing.T) {
	u, err := DecodeUser(map[string]any{
		"id":         "u1",
		"firstName":  "Ana",
		"email":      "ana@example.com",
		"signupTime": "2019-08-01",
		"hub":        map[string]any{"id": "h9"},
		"properties": []any{map[string]any{"id": "p1"}, map[string]any{"id": "p2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "h9", u.HubID)
	assert.Equal(t, []string{"p1", "p2"}, u.PropertyIDs)

	pk, err := DecodePickup(map[string]any{
		"id":               "pk1",
		"confirmationCode": "ABC",
		"property":         map[string]any{"id": "p1"},
		"cartons":          []any{map[string]any{"id": "c1"}, map[string]any{"id": "c2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", pk.PropertyID)
	assert.Equal(t, []string{"c1", "c2"}, pk.CartonIDs)
}

func TestDecodeProductionReportAndImpact(t *testing.T) {
	r, err := DecodeProductionReport(map[string]any{
		"id":           "r1",
		"barsProduced": int64(300),
		"soapPhotos":   []any{"a.jpg", "b.jpg"},
		"hub":          map[string]any{"id": "h1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 300, r.BarsProduced)
	assert.Equal(t, "h1", r.HubID)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, r.SoapPhotos)

	stats, err := DecodeImpactStats(map[string]any{"soapRecycled": int64(10), "peopleServed": int64(4)})
	require.NoError(t, err)
	assert.Equal(t, ImpactStats{SoapRecycled: 10, PeopleServed: 4}, stats)
}

func TestDecodeImpactStatsErrorNamesImpactStats(t *testing.T) {
	_, err := DecodeImpactStats(map[string]any{"soapRecycled": "lots"})
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, EntityImpactStats, de.Entity)
	assert.Contains(t, err.Error(), "decode impact_stats:")
}
