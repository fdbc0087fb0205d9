package core

import (
	"context"

	"soapcore/internal/query"
	"soapcore/pkg/domain"
)

// UserByID fetches and caches a user.
func (c *Client) UserByID(ctx context.Context, id string) (Report, error) {
	req, err := query.UserByID(id)
	return c.do(ctx, query.OpUserByID, req, err)
}

// PropertiesByUserID fetches and caches the properties of a user.
func (c *Client) PropertiesByUserID(ctx context.Context, userID string) (Report, error) {
	req, err := query.PropertiesByUserID(userID)
	return c.do(ctx, query.OpPropertiesByUserID, req, err)
}

// PropertyByID fetches and caches a property.
func (c *Client) PropertyByID(ctx context.Context, id string) (Report, error) {
	req, err := query.PropertyByID(id)
	return c.do(ctx, query.OpPropertyByID, req, err)
}

// HubByPropertyID fetches and caches the hub serving a property.
func (c *Client) HubByPropertyID(ctx context.Context, propertyID string) (Report, error) {
	req, err := query.HubByPropertyID(propertyID)
	return c.do(ctx, query.OpHubByPropertyID, req, err)
}

// PickupsByPropertyID fetches and caches the pickups of a property and their cartons.
func (c *Client) PickupsByPropertyID(ctx context.Context, propertyID string) (Report, error) {
	req, err := query.PickupsByPropertyID(propertyID)
	return c.do(ctx, query.OpPickupsByPropertyID, req, err)
}

// ProductionReportsByHubID fetches and caches the production reports of a hub.
func (c *Client) ProductionReportsByHubID(ctx context.Context, hubID string) (Report, error) {
	req, err := query.ProductionReportsByHubID(hubID)
	return c.do(ctx, query.OpProductionReportsByHubID, req, err)
}

// ImpactStatsByPropertyID fetches the impact statistics of a property and
// attaches them to the cached property. The property must already be cached;
// otherwise the call fails with ErrNotFound whatever the server replied.
func (c *Client) ImpactStatsByPropertyID(ctx context.Context, propertyID string) (Report, error) {
	req, buildErr := query.ImpactStatsByPropertyID(propertyID)
	return c.run(ctx, query.OpImpactStatsByPropertyID, func(ctx context.Context, rep *Report) error {
		if buildErr != nil {
			return requestInit(buildErr)
		}
		reply, err := c.send(ctx, req)
		if err != nil {
			return err
		}
		if _, ok := c.store.GetProperty(propertyID); !ok {
			return ErrNotFound{Entity: domain.EntityProperty, ID: propertyID}
		}
		raw, err := c.receive(reply, req, rep)
		if err != nil {
			return err
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return shapeError(query.PayloadImpactStats, "object", raw)
		}
		stats, err := domain.DecodeImpactStats(obj)
		if err != nil {
			return objectInit(err)
		}
		if err := c.store.SetPropertyImpact(propertyID, stats); err != nil {
			return err
		}
		rep.upserted(domain.EntityProperty, propertyID)
		return nil
	})
}

// LogIn authenticates and stores the returned user as the session user.
func (c *Client) LogIn(ctx context.Context, in domain.LogInInput) (Report, error) {
	req, err := query.LogIn(in)
	return c.do(ctx, query.OpLogIn, req, err)
}

// SchedulePickup requests a pickup and caches the created pickup.
func (c *Client) SchedulePickup(ctx context.Context, in domain.SchedulePickupInput) (Report, error) {
	req, err := query.SchedulePickup(in)
	return c.do(ctx, query.OpSchedulePickup, req, err)
}

// CancelPickup cancels a pickup and caches its new state.
func (c *Client) CancelPickup(ctx context.Context, in domain.CancelPickupInput) (Report, error) {
	req, err := query.CancelPickup(in)
	return c.do(ctx, query.OpCancelPickup, req, err)
}

// UpdateUserProfile edits a user and caches the result.
func (c *Client) UpdateUserProfile(ctx context.Context, in domain.UpdateUserProfileInput) (Report, error) {
	req, err := query.UpdateUserProfile(in)
	return c.do(ctx, query.OpUpdateUserProfile, req, err)
}

// UpdateProperty edits a property and caches the result.
func (c *Client) UpdateProperty(ctx context.Context, in domain.UpdatePropertyInput) (Report, error) {
	req, err := query.UpdateProperty(in)
	return c.do(ctx, query.OpUpdateProperty, req, err)
}

// CreateProductionReport files a production report and caches it.
func (c *Client) CreateProductionReport(ctx context.Context, in domain.CreateProductionReportInput) (Report, error) {
	req, err := query.CreateProductionReport(in)
	return c.do(ctx, query.OpCreateProductionReport, req, err)
}

// UpdateProductionReport edits a production report and caches the result.
func (c *Client) UpdateProductionReport(ctx context.Context, in domain.UpdateProductionReportInput) (Report, error) {
	req, err := query.UpdateProductionReport(in)
	return c.do(ctx, query.OpUpdateProductionReport, req, err)
}

// DeleteProductionReport deletes a production report. The cached copy, if
// any, is left in place.
func (c *Client) DeleteProductionReport(ctx context.Context, in domain.DeleteProductionReportInput) (Report, error) {
	req, err := query.DeleteProductionReport(in)
	return c.do(ctx, query.OpDeleteProductionReport, req, err)
}
