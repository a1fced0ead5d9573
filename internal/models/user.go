package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(33);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(33);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	CreatedAt    time.Time `json:"created_at"`

	Products []Product `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
