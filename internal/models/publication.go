package models

import (
	"strings"
	"time"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
)

// Publication is a multi-author channel.
type Publication struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	Name        string              `json:"name" gorm:"size:100;uniqueIndex"`
	Description string              `json:"description" gorm:"size:500"`
	LogoURL     *string             `json:"logoUrl"`
	Members     []PublicationMember `json:"members,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// PublicationMember joins users to publications; the creator row has IsOwner set.
type PublicationMember struct {
	PublicationID uint         `json:"publicationId" gorm:"primaryKey"`
	Publication   *Publication `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID        uint         `json:"userId" gorm:"primaryKey;index"`
	User          *User        `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	IsOwner       bool         `json:"isOwner"`
	JoinedAt      time.Time    `json:"joinedAt" gorm:"autoCreateTime"`
}

type PublicationInvitation struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	PublicationID uint             `json:"publicationId" gorm:"index"`
	Publication   *Publication     `json:"publication,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	InviterID     uint             `json:"inviterId" gorm:"index"`
	Inviter       *User            `json:"inviter,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	InviteeID     uint             `json:"inviteeId" gorm:"index"`
	Invitee       *User            `json:"invitee,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Status        InvitationStatus `json:"status" gorm:"size:10;index"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type PublicationRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"max=500"`
	LogoURL     *string `json:"logoUrl" validate:"omitempty,url"`
}

func (r *PublicationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	trimPtr(r.LogoURL)
}

type InvitationRequest struct {
	PublicationID uint `json:"publicationId" validate:"required"`
	InviteeID     uint `json:"inviteeId" validate:"required,user_exists"`
}
