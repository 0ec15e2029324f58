package models

// CheckoutRequest is the pricing-page form. It is validated and forwarded to
// the payment provider as customer and custom data; nothing is persisted.
type CheckoutRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Requests string `json:"requests,omitempty" validate:"max=5000"`
	Company  string `json:"company,omitempty" validate:"max=100"`
	Phone    string `json:"phone,omitempty" validate:"max=20"`
}

// CheckoutSession is what the browser needs to open the payment overlay.
// TransactionID stays empty: the overlay creates the transaction itself.
type CheckoutSession struct {
	PriceID       string         `json:"priceId"`
	TransactionID string         `json:"transactionId"`
	CheckoutID    string         `json:"checkoutId"`
	Environment   string         `json:"environment"`
	ClientToken   string         `json:"clientToken"`
	Overlay       OverlayOptions `json:"checkout"`
}

// OverlayOptions mirrors the argument of the provider's Checkout.open call.
type OverlayOptions struct {
	Items      []OverlayItem     `json:"items"`
	Customer   OverlayCustomer   `json:"customer"`
	CustomData map[string]string `json:"customData,omitempty"`
	Settings   OverlaySettings   `json:"settings"`
}

type OverlayItem struct {
	PriceID  string `json:"priceId"`
	Quantity int    `json:"quantity"`
}

type OverlayCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type OverlaySettings struct {
	DisplayMode string `json:"displayMode"`
	Theme       string `json:"theme"`
	Locale      string `json:"locale"`
	AllowLogout bool   `json:"allowLogout"`
	SuccessURL  string `json:"successUrl"`
	FrameTarget string `json:"frameTarget,omitempty"`
	FrameStyle  string `json:"frameStyle,omitempty"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}

type ConfirmationRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Name          string `json:"name" validate:"required,max=100"`
	TransactionID string `json:"transactionId,omitempty" validate:"max=100"`
}
