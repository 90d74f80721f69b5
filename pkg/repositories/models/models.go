package models

// User is the authenticated caller of the report service.
type User struct {
	ID string `json:"id"`
}
