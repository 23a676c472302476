package patient

import "time"

// Profile captures the subset of patient data exposed to the admin views.
type Profile struct {
	ID         string
	GivenName  string
	FamilyName string
	Email      string
	Phone      string
	CreatedAt  time.Time
}
