package model

// Provider is a doctor who can be scheduled for appointments across
// departments.
type Provider struct {
	Base
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

type CreateProviderRequest struct {
	FirstName string `json:"first_name" binding:"required,notblank,max=50"`
	LastName  string `json:"last_name" binding:"required,notblank,max=50"`
}
