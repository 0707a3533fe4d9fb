package models

import "gorm.io/datatypes"

// Association represents a club or society with its own member roster.
type Association struct {
	BaseModel

	Name           string            `gorm:"not null" json:"name"`
	Slug           string            `gorm:"uniqueIndex;not null" json:"slug"`
	Description    string            `json:"description,omitempty"`
	LogoURL        string            `json:"logo_url,omitempty"`
	PrimaryColor   string            `json:"primary_color,omitempty"`
	SecondaryColor string            `json:"secondary_color,omitempty"`
	Settings       datatypes.JSONMap `json:"settings,omitempty"`
	CreatedBy      string            `gorm:"type:uuid;index" json:"created_by"`

	Members     []Member            `gorm:"foreignKey:AssociationID" json:"members,omitempty"`
	Memberships []AssociationMember `gorm:"foreignKey:AssociationID" json:"memberships,omitempty"`
}
