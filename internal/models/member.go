package models

import (
	"time"

	"gorm.io/datatypes"
)

// Member is a roster entry owned by an association. A member may exist
// without an account; UserID is set once the person accepts an
// invitation and InvitationID records which invitation produced the row.
type Member struct {
	BaseModel

	AssociationID string            `gorm:"type:uuid;not null;index" json:"association_id"`
	FullName      string            `gorm:"not null" json:"full_name"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	BirthDate     string            `json:"birth_date,omitempty"`
	MemberNumber  string            `json:"member_number,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Status        MembershipStatus  `gorm:"not null;default:active;index" json:"status"`
	CustomFields  datatypes.JSONMap `json:"custom_fields,omitempty"`
	InvitationID  *string           `gorm:"type:uuid;index" json:"invitation_id,omitempty"`
	UserID        *string           `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CreatedBy     string            `gorm:"type:uuid" json:"created_by,omitempty"`
	JoinedDate    time.Time         `json:"joined_date"`

	Association *Association `gorm:"constraint:OnDelete:CASCADE" json:"association,omitempty"`
}
