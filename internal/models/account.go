package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Account represents a registered user together with its embedded follow lists
type Account struct {
	ID           int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string         `gorm:"type:varchar(250);not null;index:accounts_username_ix;column:username"`
	RealName     string         `gorm:"type:varchar(250);not null;index:accounts_real_name_ix;column:real_name"`
	Email        string         `gorm:"type:varchar(250);not null;uniqueIndex:accounts_email_ux;column:email"`
	PasswordHash string         `gorm:"type:varchar(250);not null;column:password_hash"`
	IsAdmin      bool           `gorm:"not null;default:false;column:is_admin"`
	CreatedAt    time.Time      `gorm:"not null;column:created_at"`
	UpdatedAt    time.Time      `gorm:"not null;column:updated_at"`

	// Ordered, duplicates allowed
	Folios pq.StringArray `gorm:"type:text[];not null;column:folios"`

	SocialLinks []SocialLink `gorm:"type:jsonb;not null;serializer:json;column:social_links"`

	// Follow graph; ids are weak references into this table
	Following  pq.Int64Array `gorm:"type:bigint[];not null;column:following"`
	FollowedBy pq.Int64Array `gorm:"type:bigint[];not null;column:followed_by"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// SocialLink is one platform handle attached at registration
type SocialLink struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// BeforeSave replaces nil collections so array and jsonb columns never receive NULL
func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.Normalize()
	return nil
}

// Normalize replaces nil collections with empty ones
func (a *Account) Normalize() {
	if a.Folios == nil {
		a.Folios = pq.StringArray{}
	}
	if a.SocialLinks == nil {
		a.SocialLinks = []SocialLink{}
	}
	if a.Following == nil {
		a.Following = pq.Int64Array{}
	}
	if a.FollowedBy == nil {
		a.FollowedBy = pq.Int64Array{}
	}
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Folios = append(pq.StringArray{}, a.Folios...)
	c.SocialLinks = append([]SocialLink{}, a.SocialLinks...)
	c.Following = append(pq.Int64Array{}, a.Following...)
	c.FollowedBy = append(pq.Int64Array{}, a.FollowedBy...)
	return &c
}

// AccountView is the public projection of an account; it never carries the password hash
type AccountView struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	RealName    string       `json:"real_name"`
	Folios      []string     `json:"folios"`
	SocialLinks []SocialLink `json:"social_links"`
	FollowState FollowState  `json:"follow_state"`
	IsAdmin     bool         `json:"is_admin"`
}

// AccountDetails is the supplementary part of an account: social links and follow state
type AccountDetails struct {
	SocialLinks []SocialLink `json:"social_links"`
	FollowState FollowState  `json:"follow_state"`
}

// View builds the detail view
func (a *Account) View() *AccountView {
	c := a.Clone()
	c.Normalize()
	return &AccountView{
		ID:          c.ID,
		Username:    c.Username,
		Email:       c.Email,
		RealName:    c.RealName,
		Folios:      []string(c.Folios),
		SocialLinks: c.SocialLinks,
		FollowState: c.FollowState(),
		IsAdmin:     c.IsAdmin,
	}
}

// Details builds the social links and follow state projection
func (a *Account) Details() *AccountDetails {
	v := a.View()
	return &AccountDetails{
		SocialLinks: v.SocialLinks,
		FollowState: v.FollowState,
	}
}
