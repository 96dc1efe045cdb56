package model

import (
	"time"

	"github.com/google/uuid"
)

// Base holds the identity and audit fields shared by all persisted entities.
// Created and Updated are storage-managed.
type Base struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Created time.Time `db:"created" json:"created"`
	Updated time.Time `db:"updated" json:"updated"`
}
