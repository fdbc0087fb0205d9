package domain

// LogInInput carries credentials for the log-in mutation.
type LogInInput struct {
	Email    string
	Password string
}

// PickupCartonInput describes one carton of a pickup being scheduled.
type PickupCartonInput struct {
	Product     string
	PercentFull int
}

// SchedulePickupInput describes a pickup request for a property.
type SchedulePickupInput struct {
	PropertyID     string
	ReadyDate      string
	CollectionType string
	Notes          string
	Cartons        []PickupCartonInput
}

// CancelPickupInput identifies a pickup to cancel.
type CancelPickupInput struct {
	PickupID         string
	ConfirmationCode string
}

// UpdateUserProfileInput changes profile fields of a user. Nil fields are left untouched.
type UpdateUserProfileInput struct {
	ID         string
	FirstName  *string
	MiddleName *string
	LastName   *string
	Title      *string
	Company    *string
	Phone      *string
	Skype      *string
	Address    *Address
}

// UpdatePropertyInput changes property fields. Nil fields are left untouched.
type UpdatePropertyInput struct {
	ID              string
	Name            *string
	Rooms           *int
	Phone           *string
	BillingAddress  *Address
	ShippingAddress *Address
	ShippingNote    *string
	Notes           *string
}

// CreateProductionReportInput files a new production report for a hub.
type CreateProductionReportInput struct {
	HubID            string
	Date             string
	BarsProduced     int
	SoapmakersWorked int
	SoapmakerHours   int
	SoapPhotos       []string
}

// UpdateProductionReportInput changes an existing production report.
type UpdateProductionReportInput struct {
	ID               string
	Date             *string
	BarsProduced     *int
	SoapmakersWorked *int
	SoapmakerHours   *int
	SoapPhotos       []string
}

// DeleteProductionReportInput identifies a production report to delete.
type DeleteProductionReportInput struct {
	ID string
}
