package models

import (
	"time"

	"gorm.io/datatypes"
)

// InvitationStatus enumerates the invitation lifecycle. Valid
// transitions are pending→accepted and pending→expired; invitations are
// never deleted by the workflow.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is a pending offer for a person to join an association,
// addressed by a single-use token. MemberData keeps the raw import row
// so the acceptance form can fall back to columns the direct fields do
// not carry.
type Invitation struct {
	BaseModel

	AssociationID string            `gorm:"type:uuid;not null;index" json:"association_id"`
	Email         string            `gorm:"not null;index" json:"email"`
	FullName      string            `json:"full_name,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	BirthDate     string            `json:"birth_date,omitempty"`
	MemberData    datatypes.JSONMap `json:"member_data,omitempty"`
	Status        InvitationStatus  `gorm:"not null;default:pending;index" json:"status"`
	Token         string            `gorm:"uniqueIndex;not null" json:"token"`
	CreatedBy     string            `gorm:"type:uuid" json:"created_by"`
	ExpiresAt     time.Time         `gorm:"index" json:"expires_at"`
	AcceptedAt    *time.Time        `json:"accepted_at,omitempty"`

	Association *Association `gorm:"constraint:OnDelete:CASCADE" json:"association,omitempty"`
}

// MemberDataString returns the member_data value for key when it is a
// non-empty string.
func (i *Invitation) MemberDataString(key string) string {
	if i == nil || i.MemberData == nil {
		return ""
	}
	if v, ok := i.MemberData[key].(string); ok {
		return v
	}
	return ""
}
