package domain

import (
	"errors"

	"github.com/go-viper/mapstructure/v2"
	"github.com/ohler55/ojg/jp"
)

var (
	hubIDPath      = jp.C("hub").C("id")
	propertyIDPath = jp.C("property").C("id")
	contractIDPath = jp.C("contract").C("id")
)

// DecodeUser builds a User from a payload object.
func DecodeUser(obj map[string]any) (User, error) {
	var u User
	if err := decodeObject(EntityUser, obj, &u); err != nil {
		return User{}, err
	}
	u.HubID = refID(obj, hubIDPath)
	u.PropertyIDs = refIDs(obj, "properties")
	return u, requireID(EntityUser, u.ID)
}

// DecodeProperty builds a Property from a payload object. Nested pickups and
// contract objects are reduced to their IDs; parsing them is left to the caller.
func DecodeProperty(obj map[string]any) (Property, error) {
	var p Property
	if err := decodeObject(EntityProperty, obj, &p); err != nil {
		return Property{}, err
	}
	p.HubID = refID(obj, hubIDPath)
	p.ContractID = refID(obj, contractIDPath)
	p.PickupIDs = refIDs(obj, "pickups")
	p.UserIDs = refIDs(obj, "users")
	return p, requireID(EntityProperty, p.ID)
}

// DecodeHub builds a Hub from a payload object.
func DecodeHub(obj map[string]any) (Hub, error) {
	var h Hub
	if err := decodeObject(EntityHub, obj, &h); err != nil {
		return Hub{}, err
	}
	return h, requireID(EntityHub, h.ID)
}

// DecodePickup builds a Pickup from a payload object.
func DecodePickup(obj map[string]any) (Pickup, error) {
	var p Pickup
	if err := decodeObject(EntityPickup, obj, &p); err != nil {
		return Pickup{}, err
	}
	p.PropertyID = refID(obj, propertyIDPath)
	p.CartonIDs = refIDs(obj, "cartons")
	return p, requireID(EntityPickup, p.ID)
}

// DecodePickupCarton builds a PickupCarton from a payload object.
func DecodePickupCarton(obj map[string]any) (PickupCarton, error) {
	var c PickupCarton
	if err := decodeObject(EntityPickupCarton, obj, &c); err != nil {
		return PickupCarton{}, err
	}
	return c, requireID(EntityPickupCarton, c.ID)
}

// DecodeHospitalityContract builds a HospitalityContract from a payload object.
func DecodeHospitalityContract(obj map[string]any) (HospitalityContract, error) {
	var c HospitalityContract
	if err := decodeObject(EntityHospitalityContract, obj, &c); err != nil {
		return HospitalityContract{}, err
	}
	return c, requireID(EntityHospitalityContract, c.ID)
}

// DecodeProductionReport builds a ProductionReport from a payload object.
func DecodeProductionReport(obj map[string]any) (ProductionReport, error) {
	var r ProductionReport
	if err := decodeObject(EntityProductionReport, obj, &r); err != nil {
		return ProductionReport{}, err
	}
	r.HubID = refID(obj, hubIDPath)
	return r, requireID(EntityProductionReport, r.ID)
}

// DecodeImpactStats builds ImpactStats from a payload object.
func DecodeImpactStats(obj map[string]any) (ImpactStats, error) {
	var s ImpactStats
	if err := decodeObject(EntityImpactStats, obj, &s); err != nil {
		return ImpactStats{}, err
	}
	return s, nil
}

func decodeObject(entity EntityType, obj map[string]any, out any) error {
	if obj == nil {
		return &DecodeError{Entity: entity, Err: errors.New("nil object")}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return &DecodeError{Entity: entity, Err: err}
	}
	if err := dec.Decode(obj); err != nil {
		return &DecodeError{Entity: entity, Err: err}
	}
	return nil
}

func requireID(entity EntityType, id string) error {
	if id == "" {
		return &DecodeError{Entity: entity, Err: ErrMissingID}
	}
	return nil
}

// refID reads a nested reference id such as hub.id.
func refID(obj map[string]any, path jp.Expr) string {
	if id, ok := path.First(obj).(string); ok {
		return id
	}
	return ""
}

// refIDs collects the ids of an array of nested objects. Anything that is not
// an array of objects with string ids yields nothing.
func refIDs(obj map[string]any, key string) []string {
	items, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	var ids []string
	for _, item := range items {
		child, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := child["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

