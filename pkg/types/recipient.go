package types

import "time"

const AnonymousDonor = "Anonymous Donor"

// Recipient is an open, unmatched donation request. It is deleted when matched.
type Recipient struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Location     string    `db:"location" json:"location"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	DonationType string    `db:"donation_type" json:"donation_type"`
	Urgency      float64   `db:"urgency" json:"urgency"`
	Contact      string    `db:"contact" json:"contact"`
	Phone        string    `db:"phone" json:"phone"`
	Message      *string   `db:"message" json:"message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type CreateRecipientRequest struct {
	Name         string `json:"name" validate:"required"`
	Location     string `json:"location" validate:"required"`
	DonationType string `json:"donation_type" validate:"required"`
	Contact      string `json:"contact" validate:"required,email"`
	Phone        string `json:"phone"`
	Message      string `json:"message"`
}

type RecipientSearch struct {
	Type     string `form:"type" validate:"required"`
	Location string `form:"location" validate:"required"`
}

// RankedRecipient is a candidate recipient with the values the ranking was computed from.
type RankedRecipient struct {
	*Recipient
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentNeed is the public projection of an open recipient.
type CurrentNeed struct {
	DonationType string  `db:"donation_type" json:"donation_type"`
	Urgency      float64 `db:"urgency" json:"urgency"`
	Location     string  `db:"location" json:"location"`
}
