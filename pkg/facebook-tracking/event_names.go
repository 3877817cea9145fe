package facebook_tracking

const (
	EventAddToCart            = "add_to_cart"
	EventViewContent          = "view_content"
	EventPurchase             = "purchase"
	EventAddPaymentInfo       = "add_payment_info"
	EventCompleteRegistration = "complete_registration"
	EventLead                 = "lead"
	EventSearch               = "search"
	EventInitiateCheckout     = "initiate_checkout"

	FbEventAddToCart            = "AddToCart"
	FbEventViewContent          = "ViewContent"
	FbEventPurchase             = "Purchase"
	FbEventAddPaymentInfo       = "AddPaymentInfo"
	FbEventCompleteRegistration = "CompleteRegistration"
	FbEventLead                 = "Lead"
	FbEventSearch               = "Search"
	FbEventInitiateCheckout     = "InitiateCheckout"
)

var (
	// StandardEvents are the event names offered as choices by the form.
	StandardEvents = []string{
		FbEventPurchase,
		FbEventAddToCart,
		FbEventAddPaymentInfo,
		FbEventCompleteRegistration,
		FbEventLead,
		FbEventViewContent,
	}

	EventToFacebookEvent = map[string]string{
		EventAddToCart:            FbEventAddToCart,
		EventViewContent:          FbEventViewContent,
		EventPurchase:             FbEventPurchase,
		EventAddPaymentInfo:       FbEventAddPaymentInfo,
		EventCompleteRegistration: FbEventCompleteRegistration,
		EventLead:                 FbEventLead,
		EventSearch:               FbEventSearch,
		EventInitiateCheckout:     FbEventInitiateCheckout,
	}
)

// NormalizeEventName maps a snake_case alias to its standard name; anything else is returned unchanged.
func NormalizeEventName(name string) string {
	if fb, ok := EventToFacebookEvent[name]; ok {
		return fb
	}
	return name
}

func IsStandardEvent(name string) bool {
	for _, e := range StandardEvents {
		if e == name {
			return true
		}
	}
	return false
}
