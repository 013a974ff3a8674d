package models

import "github.com/gocql/gocql"

type Category struct {
	ID       gocql.UUID  `json:"id" db:"category_id"`
	Title    string      `json:"title" db:"title"`
	IconURL  string      `json:"icon_url" db:"icon_url"`
	Slug     string      `json:"slug" db:"slug"`
	ParentID *gocql.UUID `json:"parent_id,omitempty" db:"parent_id"`
}

// Icon retourne l'URL de l'icône ou un fallback
func (c Category) Icon() string {
	if c.IconURL != "" {
		return c.IconURL
	}
	return "💀"
}
