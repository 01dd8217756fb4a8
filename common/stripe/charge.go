package stripe

// BillingDetails holds whom the charge was billed to.
type BillingDetails struct {
	Email string `json:"email"`
}

// PaymentMethodDetails describes the instrument used for the charge.
type PaymentMethodDetails struct {
	Type string `json:"type"`
}

// Outcome is Stripe's assessment of why a charge ended up the way it did.
type Outcome struct {
	SellerMessage string `json:"seller_message"`
}

// Charge is Stripe's record of a single payment attempt. The same shape
// arrives embedded in webhook payloads and from the charge retrieval API.
type Charge struct {
	ID                   string                `json:"id"`
	Amount               int64                 `json:"amount"`
	Currency             string                `json:"currency"`
	Customer             string                `json:"customer"`
	Created              int64                 `json:"created"`
	FailureMessage       string                `json:"failure_message"`
	BillingDetails       *BillingDetails       `json:"billing_details"`
	PaymentMethodDetails *PaymentMethodDetails `json:"payment_method_details"`
	Outcome              *Outcome              `json:"outcome"`
}
