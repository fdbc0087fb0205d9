// Package domain defines the cached entities, value types and mutation inputs
// exchanged with the soap recycling backend.
package domain

// EntityType identifies the type of record held by the entity store.
type EntityType string

// Supported entity type identifiers used by the store, warnings and persistence buckets.
const (
	// EntityUser identifies a user profile record.
	EntityUser EntityType = "user"
	// EntityProperty identifies a hospitality property record.
	EntityProperty EntityType = "property"
	// EntityHub identifies a recycling hub record.
	EntityHub EntityType = "hub"
	// EntityPickup identifies a scheduled pickup record.
	EntityPickup EntityType = "pickup"
	// EntityPickupCarton identifies a carton line item of a pickup.
	EntityPickupCarton EntityType = "pickup_carton"
	// EntityHospitalityContract identifies a property contract record.
	EntityHospitalityContract EntityType = "hospitality_contract"
	// EntityProductionReport identifies a hub production report record.
	EntityProductionReport EntityType = "production_report"
	// EntityImpactStats labels impact statistics. They are attached to a
	// property and never cached on their own.
	EntityImpactStats EntityType = "impact_stats"
)

// Address is a postal address embedded in users, properties and hubs.
type Address struct {
	Address1   string `json:"address1,omitempty"`
	Address2   string `json:"address2,omitempty"`
	Address3   string `json:"address3,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Coordinates locates a property or hub.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// User is a profile as returned by the backend. HubID is only populated for
// the session user.
type User struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"firstName,omitempty"`
	MiddleName  string   `json:"middleName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Title       string   `json:"title,omitempty"`
	Company     string   `json:"company,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Skype       string   `json:"skype,omitempty"`
	Address     *Address `json:"address,omitempty"`
	SignupTime  string   `json:"signupTime,omitempty"`
	HubID       string   `json:"hubId,omitempty"`
	PropertyIDs []string `json:"propertyIds,omitempty"`
}

// Property is a hospitality property enrolled in the program. Related
// records are referenced by ID and resolved through the store.
type Property struct {
	ID              string       `json:"id"`
	Name            string       `json:"name,omitempty"`
	PropertyType    string       `json:"propertyType,omitempty"`
	Rooms           int          `json:"rooms,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	BillingAddress  *Address     `json:"billingAddress,omitempty"`
	ShippingAddress *Address     `json:"shippingAddress,omitempty"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	ShippingNote    string       `json:"shippingNote,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	HubID           string       `json:"hubId,omitempty"`
	PickupIDs       []string     `json:"pickupIds,omitempty"`
	ContractID      string       `json:"contractId,omitempty"`
	UserIDs         []string     `json:"userIds,omitempty"`
	Impact          *ImpactStats `json:"impact,omitempty"`
}

// Hub is a soap production facility serving a group of properties.
type Hub struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Address     *Address     `json:"address,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Pickup is a scheduled collection from a property.
type Pickup struct {
	ID               string   `json:"id"`
	ConfirmationCode string   `json:"confirmationCode,omitempty"`
	CollectionType   string   `json:"collectionType,omitempty"`
	Status           string   `json:"status,omitempty"`
	ReadyDate        string   `json:"readyDate,omitempty"`
	PickupDate       string   `json:"pickupDate,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	PropertyID       string   `json:"propertyId,omitempty"`
	CartonIDs        []string `json:"cartonIds,omitempty"`
}

// PickupCarton is a single carton collected as part of a pickup.
type PickupCarton struct {
	ID          string `json:"id"`
	Product     string `json:"product,omitempty"`
	PercentFull int    `json:"percentFull,omitempty"`
}

// HospitalityContract captures the billing agreement of a property.
type HospitalityContract struct {
	ID               string  `json:"id"`
	StartDate        string  `json:"startDate,omitempty"`
	EndDate          string  `json:"endDate,omitempty"`
	PaymentStartDate string  `json:"paymentStartDate,omitempty"`
	PaymentEndDate   string  `json:"paymentEndDate,omitempty"`
	Price            float64 `json:"price,omitempty"`
	Discount         float64 `json:"discount,omitempty"`
	BillingMethod    string  `json:"billingMethod,omitempty"`
	AutomatedBilling bool    `json:"automatedBilling,omitempty"`
	AmountPaid       float64 `json:"amountPaid,omitempty"`
	DateLastPaid     string  `json:"dateLastPaid,omitempty"`
}

// ProductionReport is a daily soap production summary filed by a hub.
type ProductionReport struct {
	ID               string   `json:"id"`
	HubID            string   `json:"hubId,omitempty"`
	Date             string   `json:"date,omitempty"`
	BarsProduced     int      `json:"barsProduced,omitempty"`
	SoapmakersWorked int      `json:"soapmakersWorked,omitempty"`
	SoapmakerHours   int      `json:"soapmakerHours,omitempty"`
	SoapPhotos       []string `json:"soapPhotos,omitempty"`
}

// ImpactStats summarises the recycling impact of a property. It is attached
// to the cached Property rather than stored on its own.
type ImpactStats struct {
	SoapRecycled    int `json:"soapRecycled"`
	LinensRecycled  int `json:"linensRecycled"`
	BottlesRecycled int `json:"bottlesRecycled"`
	PaperRecycled   int `json:"paperRecycled"`
	PeopleServed    int `json:"peopleServed"`
	WomenEmployed   int `json:"womenEmployed"`
}
