package core

import (
	"fmt"

	"soapcore/internal/infra/persistence/memory"
	"soapcore/internal/query"
	"soapcore/pkg/domain"
)

// registry turns payloads into cached entities. Single-item parsers fail
// hard; list items and nested entities that fail become warnings.
type registry struct {
	store  *memory.Store
	logger Logger
}

// apply dispatches a payload by kind. Pass-through kinds return raw.
func (r registry) apply(kind query.PayloadKind, raw any, rep *Report) (any, error) {
	switch kind {
	case query.PayloadProperty:
		return nil, r.property(raw, rep)
	case query.PayloadProperties:
		return nil, r.list(domain.EntityProperty, raw, rep, r.property)
	case query.PayloadUser:
		return nil, r.user(raw, rep)
	case query.PayloadLogIn:
		return nil, r.logIn(raw, rep)
	case query.PayloadPickup:
		return nil, r.pickup(raw, rep)
	case query.PayloadPickups:
		return nil, r.list(domain.EntityPickup, raw, rep, r.pickup)
	case query.PayloadHub:
		return nil, r.hub(raw, rep)
	case query.PayloadProductionReports:
		return nil, r.list(domain.EntityProductionReport, raw, rep, r.productionReport)
	case query.PayloadProductionReport:
		return nil, r.productionReport(raw, rep)
	case query.PayloadSuccess:
		return nil, parseSuccess(raw)
	case query.PayloadImpactStats, query.PayloadHydration:
		return raw, nil
	default:
		r.logger.Warn("no parser for payload kind", "kind", kind)
		return raw, nil
	}
}

func (r registry) warn(rep *Report, w Warning) {
	r.logger.Warn("skipped entity",
		"entity", w.Entity,
		"index", w.Index,
		"id", w.ID,
		"error", w.Err,
	)
	rep.Warnings = append(rep.Warnings, w)
}

// list runs item over every element of an array payload. The array itself
// is required; failing elements are skipped with a warning.
func (r registry) list(entity EntityType, raw any, rep *Report, item func(any, *Report) error) error {
	items, ok := raw.([]any)
	if !ok {
		return shapeError(entity, "array", raw)
	}
	for i, v := range items {
		if err := item(v, rep); err != nil {
			r.warn(rep, Warning{Entity: entity, Index: i, ID: payloadID(v), Err: err})
		}
	}
	return nil
}

func asObject(entity EntityType, raw any) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, shapeError(entity, "object", raw)
	}
	return obj, nil
}

func (r registry) user(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityUser, raw)
	if err != nil {
		return err
	}
	u, err := domain.DecodeUser(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.UpsertUser(u)
	rep.upserted(domain.EntityUser, u.ID)
	return nil
}

// logIn fills the session slot only.
func (r registry) logIn(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityUser, raw)
	if err != nil {
		return err
	}
	u, err := domain.DecodeUser(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.SetSessionUser(u)
	rep.upserted(domain.EntityUser, u.ID)
	return nil
}

func (r registry) property(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityProperty, raw)
	if err != nil {
		return err
	}
	p, err := domain.DecodeProperty(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.UpsertProperty(p)
	rep.upserted(domain.EntityProperty, p.ID)
	return nil
}

func (r registry) hub(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityHub, raw)
	if err != nil {
		return err
	}
	h, err := domain.DecodeHub(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.UpsertHub(h)
	rep.upserted(domain.EntityHub, h.ID)
	return nil
}

// pickup stores the cartons of a pickup before the pickup itself. Cartons
// are kept even when the pickup fails to decode.
func (r registry) pickup(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityPickup, raw)
	if err != nil {
		return err
	}
	if cartons, ok := obj["cartons"]; ok && cartons != nil {
		if err := r.list(domain.EntityPickupCarton, cartons, rep, r.carton); err != nil {
			r.warn(rep, Warning{Entity: domain.EntityPickupCarton, Index: -1, ID: payloadID(obj), Err: err})
		}
	}
	p, err := domain.DecodePickup(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.UpsertPickup(p)
	rep.upserted(domain.EntityPickup, p.ID)
	return nil
}

func (r registry) carton(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityPickupCarton, raw)
	if err != nil {
		return err
	}
	c, err := domain.DecodePickupCarton(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.UpsertPickupCarton(c)
	rep.upserted(domain.EntityPickupCarton, c.ID)
	return nil
}

func (r registry) contract(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityHospitalityContract, raw)
	if err != nil {
		return err
	}
	c, err := domain.DecodeHospitalityContract(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.UpsertHospitalityContract(c)
	rep.upserted(domain.EntityHospitalityContract, c.ID)
	return nil
}

func (r registry) productionReport(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityProductionReport, raw)
	if err != nil {
		return err
	}
	pr, err := domain.DecodeProductionReport(obj)
	if err != nil {
		return objectInit(err)
	}
	r.store.UpsertProductionReport(pr)
	rep.upserted(domain.EntityProductionReport, pr.ID)
	return nil
}

// parseSuccess accepts only the integer 1.
func parseSuccess(raw any) error {
	var n int64
	switch v := raw.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	default:
		return shapeError(query.PayloadSuccess, "integer", raw)
	}
	if n != 1 {
		return fmt.Errorf("%w: success = %d", ErrNotAcknowledged, n)
	}
	return nil
}
