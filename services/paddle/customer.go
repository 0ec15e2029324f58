package paddle

import (
	"vorve-checkout-api/models"
)

// DefaultCustomerName is the greeting used when no name can be resolved.
const DefaultCustomerName = "Valued Customer"

type customerExtractor func(*models.Transaction) (models.ResolvedCustomer, bool)

// customerExtractors are tried in order; the first one that yields an email wins.
var customerExtractors = []customerExtractor{
	fromEmbeddedCustomer,
	fromIncludedCustomer,
	fromDetailsCustomer,
	fromBillingDetails,
}

// ResolveCustomer normalizes the contact of a transaction across the payload
// shapes the provider emits. Name falls back to DefaultCustomerName.
func ResolveCustomer(txn *models.Transaction) models.ResolvedCustomer {
	if txn == nil {
		return models.ResolvedCustomer{Name: DefaultCustomerName}
	}
	for _, extract := range customerExtractors {
		if c, ok := extract(txn); ok {
			if c.Name == "" {
				c.Name = DefaultCustomerName
			}
			return c
		}
	}
	return models.ResolvedCustomer{Name: DefaultCustomerName}
}

func fromCustomer(c *models.Customer) (models.ResolvedCustomer, bool) {
	if c == nil || c.Email == "" {
		return models.ResolvedCustomer{}, false
	}
	return models.ResolvedCustomer{Email: c.Email, Name: c.Name}, true
}

func fromEmbeddedCustomer(txn *models.Transaction) (models.ResolvedCustomer, bool) {
	return fromCustomer(txn.Customer)
}

// The include block is only trusted when it belongs to the transaction's customer id.
func fromIncludedCustomer(txn *models.Transaction) (models.ResolvedCustomer, bool) {
	if txn.CustomerID == "" || txn.Include == nil || txn.Include.Customer == nil {
		return models.ResolvedCustomer{}, false
	}
	if txn.Include.Customer.ID != txn.CustomerID {
		return models.ResolvedCustomer{}, false
	}
	return fromCustomer(txn.Include.Customer)
}

func fromDetailsCustomer(txn *models.Transaction) (models.ResolvedCustomer, bool) {
	if txn.Details == nil {
		return models.ResolvedCustomer{}, false
	}
	return fromCustomer(txn.Details.Customer)
}

func fromBillingDetails(txn *models.Transaction) (models.ResolvedCustomer, bool) {
	if txn.BillingDetails == nil || txn.BillingDetails.Email == "" {
		return models.ResolvedCustomer{}, false
	}
	return models.ResolvedCustomer{Email: txn.BillingDetails.Email, Name: txn.BillingDetails.Name}, true
}
