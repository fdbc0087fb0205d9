package query

import (
	"fmt"

	"soapcore/pkg/domain"
)

func mutation(name Operation, kind PayloadKind, in *object, selection string) (Request, error) {
	return newRequest(name, kind, document("mutation", name, in, kind.Field(), selection))
}

// LogIn authenticates a user and returns its profile as the session user.
func LogIn(in domain.LogInInput) (Request, error) {
	if in.Email == "" || in.Password == "" {
		return Request{}, fmt.Errorf("%s: %w: email and password are required", OpLogIn, ErrInvalid)
	}
	var obj object
	obj.str("email", in.Email).str("password", in.Password)
	return mutation(OpLogIn, PayloadLogIn, &obj, userFields)
}

// SchedulePickup requests a pickup for a property.
func SchedulePickup(in domain.SchedulePickupInput) (Request, error) {
	if err := requireID(OpSchedulePickup, "propertyId", in.PropertyID); err != nil {
		return Request{}, err
	}
	if in.ReadyDate == "" {
		return Request{}, fmt.Errorf("%s: %w: readyDate is required", OpSchedulePickup, ErrInvalid)
	}
	var obj object
	obj.str("propertyId", in.PropertyID).
		str("readyDate", in.ReadyDate).
		strIf("type", in.CollectionType).
		strIf("notes", in.Notes)
	if len(in.Cartons) > 0 {
		cartons := "["
		for i, c := range in.Cartons {
			if c.Product == "" {
				return Request{}, fmt.Errorf("%s: %w: carton %d has no product", OpSchedulePickup, ErrInvalid, i)
			}
			var carton object
			carton.str("product", c.Product).num("percentFull", c.PercentFull)
			if i > 0 {
				cartons += ", "
			}
			cartons += carton.String()
		}
		obj.raw("cartons", cartons+"]")
	}
	return mutation(OpSchedulePickup, PayloadPickup, &obj, pickupFields)
}

// CancelPickup cancels a scheduled pickup.
func CancelPickup(in domain.CancelPickupInput) (Request, error) {
	if err := requireID(OpCancelPickup, "pickupId", in.PickupID); err != nil {
		return Request{}, err
	}
	var obj object
	obj.str("pickupId", in.PickupID).strIf("confirmationCode", in.ConfirmationCode)
	return mutation(OpCancelPickup, PayloadPickup, &obj, pickupFields)
}

// UpdateUserProfile edits a user profile.
func UpdateUserProfile(in domain.UpdateUserProfileInput) (Request, error) {
	if err := requireID(OpUpdateUserProfile, "id", in.ID); err != nil {
		return Request{}, err
	}
	var obj object
	obj.str("id", in.ID).
		optStr("firstName", in.FirstName).
		optStr("middleName", in.MiddleName).
		optStr("lastName", in.LastName).
		optStr("title", in.Title).
		optStr("company", in.Company).
		optStr("phone", in.Phone).
		optStr("skype", in.Skype).
		address("address", in.Address)
	return mutation(OpUpdateUserProfile, PayloadUser, &obj, userFields)
}

// UpdateProperty edits a property.
func UpdateProperty(in domain.UpdatePropertyInput) (Request, error) {
	if err := requireID(OpUpdateProperty, "id", in.ID); err != nil {
		return Request{}, err
	}
	var obj object
	obj.str("id", in.ID).
		optStr("name", in.Name).
		optNum("rooms", in.Rooms).
		optStr("phone", in.Phone).
		address("billingAddress", in.BillingAddress).
		address("shippingAddress", in.ShippingAddress).
		optStr("shippingNote", in.ShippingNote).
		optStr("notes", in.Notes)
	return mutation(OpUpdateProperty, PayloadProperty, &obj, propertyFields)
}

// CreateProductionReport files a production report for a hub.
func CreateProductionReport(in domain.CreateProductionReportInput) (Request, error) {
	if err := requireID(OpCreateProductionReport, "hubId", in.HubID); err != nil {
		return Request{}, err
	}
	if in.Date == "" {
		return Request{}, fmt.Errorf("%s: %w: date is required", OpCreateProductionReport, ErrInvalid)
	}
	var obj object
	obj.str("hubId", in.HubID).
		str("date", in.Date).
		num("barsProduced", in.BarsProduced).
		num("soapmakersWorked", in.SoapmakersWorked).
		num("soapmakerHours", in.SoapmakerHours).
		strList("soapPhotos", in.SoapPhotos)
	return mutation(OpCreateProductionReport, PayloadProductionReport, &obj, reportFields)
}

// UpdateProductionReport edits a production report.
func UpdateProductionReport(in domain.UpdateProductionReportInput) (Request, error) {
	if err := requireID(OpUpdateProductionReport, "id", in.ID); err != nil {
		return Request{}, err
	}
	var obj object
	obj.str("id", in.ID).
		optStr("date", in.Date).
		optNum("barsProduced", in.BarsProduced).
		optNum("soapmakersWorked", in.SoapmakersWorked).
		optNum("soapmakerHours", in.SoapmakerHours).
		strList("soapPhotos", in.SoapPhotos)
	return mutation(OpUpdateProductionReport, PayloadProductionReport, &obj, reportFields)
}

// DeleteProductionReport deletes a production report. The server answers
// with the success sentinel.
func DeleteProductionReport(in domain.DeleteProductionReportInput) (Request, error) {
	if err := requireID(OpDeleteProductionReport, "id", in.ID); err != nil {
		return Request{}, err
	}
	var obj object
	obj.str("id", in.ID)
	return mutation(OpDeleteProductionReport, PayloadSuccess, &obj, "")
}
