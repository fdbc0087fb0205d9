package query

import "fmt"

const (
	addressFields    = "address1 address2 address3 city state postalCode country"
	coordinateFields = "latitude longitude"

	userFields = "id firstName middleName lastName title company email phone skype " +
		"address { " + addressFields + " } signupTime hub { id }"

	propertyCoreFields = "id name propertyType rooms phone " +
		"billingAddress { " + addressFields + " } " +
		"shippingAddress { " + addressFields + " } " +
		"coordinates { " + coordinateFields + " } " +
		"shippingNote notes users { id firstName lastName }"

	propertyFields = propertyCoreFields + " hub { id }"

	hubFields = "id name address { " + addressFields + " } email phone coordinates { " + coordinateFields + " }"

	cartonFields = "id product percentFull"

	pickupFields = "id confirmationCode collectionType status readyDate pickupDate notes " +
		"property { id } cartons { " + cartonFields + " }"

	contractFields = "id startDate endDate paymentStartDate paymentEndDate price discount " +
		"billingMethod automatedBilling amountPaid dateLastPaid"

	reportFields = "id hub { id } date barsProduced soapmakersWorked soapmakerHours soapPhotos"

	impactFields = "soapRecycled linensRecycled bottlesRecycled paperRecycled peopleServed womenEmployed"

	hydrationFields = userFields + " properties { " + propertyCoreFields +
		" hub { " + hubFields + " }" +
		" pickups { " + pickupFields + " }" +
		" contract { " + contractFields + " } }"
)

// document renders a single-root-field operation. An empty selection means
// the payload field is a scalar.
func document(kind string, root Operation, input *object, payload, selection string) string {
	if selection != "" {
		payload += " { " + selection + " }"
	}
	return fmt.Sprintf("%s {\n  %s(input: %s) {\n    %s\n  }\n}", kind, root, input.String(), payload)
}

func byID(name Operation, param, id string, kind PayloadKind, selection string) (Request, error) {
	if err := requireID(name, param, id); err != nil {
		return Request{}, err
	}
	var in object
	in.str(param, id)
	root := name
	if name == OpInitialFetch {
		root = OpUserByID
	}
	return newRequest(name, kind, document("query", root, &in, kind.Field(), selection))
}

// UserByID fetches a single user profile.
func UserByID(id string) (Request, error) {
	return byID(OpUserByID, "userId", id, PayloadUser, userFields)
}

// PropertiesByUserID fetches every property a user belongs to.
func PropertiesByUserID(userID string) (Request, error) {
	return byID(OpPropertiesByUserID, "userId", userID, PayloadProperties, propertyFields)
}

// PropertyByID fetches a single property.
func PropertyByID(id string) (Request, error) {
	return byID(OpPropertyByID, "propertyId", id, PayloadProperty, propertyFields)
}

// HubByPropertyID fetches the hub serving a property.
func HubByPropertyID(propertyID string) (Request, error) {
	return byID(OpHubByPropertyID, "propertyId", propertyID, PayloadHub, hubFields)
}

// PickupsByPropertyID fetches the pickups of a property with their cartons.
func PickupsByPropertyID(propertyID string) (Request, error) {
	return byID(OpPickupsByPropertyID, "propertyId", propertyID, PayloadPickups, pickupFields)
}

// ImpactStatsByPropertyID fetches the impact statistics of a property.
func ImpactStatsByPropertyID(propertyID string) (Request, error) {
	return byID(OpImpactStatsByPropertyID, "propertyId", propertyID, PayloadImpactStats, impactFields)
}

// ProductionReportsByHubID fetches the production reports filed by a hub.
func ProductionReportsByHubID(hubID string) (Request, error) {
	return byID(OpProductionReportsByHubID, "hubId", hubID, PayloadProductionReports, reportFields)
}

// InitialFetch fetches a user together with its properties and their hubs,
// pickups, cartons and contracts.
func InitialFetch(userID string) (Request, error) {
	return byID(OpInitialFetch, "userId", userID, PayloadHydration, hydrationFields)
}
