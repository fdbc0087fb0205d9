package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"soapcore/internal/query"
	"soapcore/pkg/domain"
)

// InitialFetch loads a user with its properties and everything attached to
// them in one request. When the session user belongs to a hub, the hub's
// production reports are fetched alongside. The operation completes once,
// after both requests, with the first fatal error of either.
func (c *Client) InitialFetch(ctx context.Context, userID string) (Report, error) {
	req, buildErr := query.InitialFetch(userID)
	return c.run(ctx, query.OpInitialFetch, func(ctx context.Context, rep *Report) error {
		if buildErr != nil {
			return requestInit(buildErr)
		}

		var (
			g       errgroup.Group
			reports = Report{Operation: query.OpProductionReportsByHubID}
		)
		if session, ok := c.store.SessionUser(); ok && session.HubID != "" {
			g.Go(func() error {
				hubReq, err := query.ProductionReportsByHubID(session.HubID)
				if err != nil {
					return requestInit(err)
				}
				_, err = c.execute(ctx, hubReq, &reports)
				return err
			})
		}
		g.Go(func() error {
			raw, err := c.execute(ctx, req, rep)
			if err != nil {
				return err
			}
			return c.registry.hydrate(raw, rep)
		})

		err := g.Wait()
		rep.merge(reports)
		return err
	})
}

// hydrate walks an initial fetch payload. The user and the properties array
// are required; anything below a property is best effort.
func (r registry) hydrate(raw any, rep *Report) error {
	obj, err := asObject(domain.EntityUser, raw)
	if err != nil {
		return err
	}
	u, err := domain.DecodeUser(obj)
	if err != nil {
		return objectInit(fmt.Errorf("unwrap: %w", err))
	}
	r.store.UpsertUser(u)
	r.store.SetSessionUser(u)
	rep.upserted(domain.EntityUser, u.ID)

	properties, ok := obj["properties"].([]any)
	if !ok {
		return shapeError(domain.EntityProperty, "array", obj["properties"])
	}
	for i, item := range properties {
		r.hydrateProperty(i, item, rep)
	}
	return nil
}

func (r registry) hydrateProperty(index int, raw any, rep *Report) {
	if err := r.property(raw, rep); err != nil {
		r.warn(rep, Warning{Entity: domain.EntityProperty, Index: index, ID: payloadID(raw), Err: err})
		return
	}
	obj := raw.(map[string]any)

	if hub, ok := obj["hub"]; ok && hub != nil {
		if err := r.hub(hub, rep); err != nil {
			r.warn(rep, Warning{Entity: domain.EntityHub, Index: -1, ID: payloadID(hub), Err: err})
		}
	}
	if pickups, ok := obj["pickups"]; ok && pickups != nil {
		if err := r.list(domain.EntityPickup, pickups, rep, r.pickup); err != nil {
			r.warn(rep, Warning{Entity: domain.EntityPickup, Index: -1, ID: payloadID(obj), Err: err})
		}
	}
	if contract, ok := obj["contract"]; ok && contract != nil {
		if err := r.contract(contract, rep); err != nil {
			r.warn(rep, Warning{Entity: domain.EntityHospitalityContract, Index: -1, ID: payloadID(contract), Err: err})
		}
	}
}
