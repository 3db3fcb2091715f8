package models

// PaymentIntentRequest is the body of POST /create-payment-intent.
type PaymentIntentRequest struct {
	Price float64 `json:"price"`
}

// PaymentIntentResponse carries the processor's client-side secret.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// MarkPaidRequest is the body of PATCH /booking/{id}.
type MarkPaidRequest struct {
	TransactionID string  `json:"transactionId"`
	Price         float64 `json:"price,omitempty"`
}
