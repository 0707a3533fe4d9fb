package models

// User is an authenticated account. Accounts are created either by
// self-registration or as a side effect of accepting an invitation.
type User struct {
	BaseModel

	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	Memberships []AssociationMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
