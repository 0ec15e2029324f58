package paddle

import (
	"vorve-checkout-api/models"
)

// OverlaySettings are the fixed parts of the checkout overlay.
type OverlaySettings struct {
	PriceID      string
	Environment  string
	ClientToken  string
	PublicDomain string
}

// BuildSession assembles the options the browser passes to Checkout.open.
// No provider call is made: the overlay creates the transaction, and the
// webhook is the only proof of payment.
func BuildSession(req models.CheckoutRequest, s OverlaySettings, checkoutID string) models.CheckoutSession {
	customData := map[string]string{"checkoutId": checkoutID}
	if req.Company != "" {
		customData["company"] = req.Company
	}
	if req.Phone != "" {
		customData["phone"] = req.Phone
	}
	if req.Requests != "" {
		customData["projectDetails"] = req.Requests
	}

	return models.CheckoutSession{
		PriceID:     s.PriceID,
		CheckoutID:  checkoutID,
		Environment: s.Environment,
		ClientToken: s.ClientToken,
		Overlay: models.OverlayOptions{
			Items: []models.OverlayItem{{PriceID: s.PriceID, Quantity: 1}},
			Customer: models.OverlayCustomer{
				Email: req.Email,
				Name:  req.FullName,
			},
			CustomData: customData,
			Settings: models.OverlaySettings{
				DisplayMode: "overlay",
				Theme:       "dark",
				Locale:      "en",
				AllowLogout: false,
				SuccessURL:  s.PublicDomain + "/thank-you?success=true",
				FrameTarget: "self",
				FrameStyle:  "width: 100%; background-color: transparent; border: none;",
			},
		},
	}
}

// CustomDataString reads a string value from a transaction's custom data.
func CustomDataString(txn *models.Transaction, key string) string {
	if txn == nil || txn.CustomData == nil {
		return ""
	}
	if v, ok := txn.CustomData[key].(string); ok {
		return v
	}
	return ""
}
