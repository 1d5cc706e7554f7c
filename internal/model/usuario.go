package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles accepted in Usuario.Rol.
const (
	RolAdmin = "admin"
	RolPeao  = "peao"
)

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(10);not null"`
	// ResetToken holds the sha256 of the token mailed to the user, never the token itself.
	ResetToken    *string `gorm:"index"`
	ResetExpiraEm *time.Time
	Ativo         bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
