package domain

// PaymentMethod represents how the customer intends to pay.
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "Card"
	PaymentMethodMobile         PaymentMethod = "Mobile Payment"
	PaymentMethodCashOnDelivery PaymentMethod = "Cash on Delivery"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodMobile,
	PaymentMethodCashOnDelivery,
}

// PaymentStatus represents the outcome of the simulated payment step.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// ParsePaymentMethod maps a raw label onto a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}
