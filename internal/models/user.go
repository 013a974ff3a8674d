package models

import "time"

type User struct {
	ID         string     `json:"id" db:"user_id"`
	Email      string     `json:"email" db:"email"`
	Password   string     `json:"-" db:"password"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Provider   string     `json:"provider" db:"provider"`
	ProviderID string     `json:"provider_id,omitempty" db:"provider_id"`
	CreatedAt  *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Profile : coordonnées de livraison par défaut de l'utilisateur
type Profile struct {
	UserID string `json:"user_id" db:"user_id"`
	Phone  string `json:"phone" db:"phone"`
	City   string `json:"city" db:"city"`
	Street string `json:"street" db:"street"`
	Home   string `json:"home" db:"home"`
	Flat   string `json:"flat" db:"flat"`
}
