package model

type Patient struct {
	Base
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

type CreatePatientRequest struct {
	FirstName string `json:"first_name" binding:"required,notblank,max=50"`
	LastName  string `json:"last_name" binding:"required,notblank,max=50"`
}
