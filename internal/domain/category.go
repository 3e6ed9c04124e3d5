package domain

import "time"

// Category classifies tickets. Low-churn reference data, cached per
// session.
type Category struct {
	ID          string
	Name        string
	Description *string
	Active      bool
	CreatedAt   time.Time
}
