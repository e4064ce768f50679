package domain

// Intent is the single classification assigned to a message. Exactly
// one intent is produced per message; rule order decides ties.
type Intent string

const (
	IntentDefault        Intent = "default"
	IntentGreeting       Intent = "greeting"
	IntentIdentity       Intent = "identity"
	IntentLocation       Intent = "location"
	IntentDirections     Intent = "directions"
	IntentContactInfo    Intent = "contact_info"
	IntentAppointment    Intent = "appointment"
	IntentPropertySearch Intent = "property_search"
	IntentCatalog        Intent = "catalog"
	IntentPrivacy        Intent = "privacy"
	IntentPersonal       Intent = "personal"
	IntentSmalltalk      Intent = "smalltalk"
)
