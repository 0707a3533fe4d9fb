package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role enumerates membership roles within an association.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLeader   Role = "leader"
	RoleMember   Role = "member"
	RoleGuardian Role = "guardian"
)

// CanManageMembers reports whether the role may create members and invitations.
func (r Role) CanManageMembers() bool {
	return r == RoleAdmin || r == RoleLeader
}

// MembershipStatus enumerates lifecycle states shared by memberships and members.
type MembershipStatus string

const (
	StatusActive   MembershipStatus = "active"
	StatusInactive MembershipStatus = "inactive"
	StatusPending  MembershipStatus = "pending"
)

// AssociationMember links an authenticated account to an association
// with a role. Created when an association is founded (admin) or when
// an invitation is accepted (member).
type AssociationMember struct {
	BaseModel

	AssociationID string            `gorm:"type:uuid;not null;uniqueIndex:idx_association_user" json:"association_id"`
	UserID        string            `gorm:"type:uuid;not null;uniqueIndex:idx_association_user" json:"user_id"`
	Role          Role              `gorm:"not null;default:member" json:"role"`
	Status        MembershipStatus  `gorm:"not null;default:active" json:"status"`
	Permissions   datatypes.JSONMap `json:"permissions,omitempty"`
	JoinedAt      time.Time         `json:"joined_at"`

	Association *Association `gorm:"constraint:OnDelete:CASCADE" json:"association,omitempty"`
	User        *User        `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
