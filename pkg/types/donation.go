package types

import "time"

// Donation records items pledged by a donor toward a specific, now consumed, recipient.
type Donation struct {
	ID             string    `db:"id" json:"id"`
	DonorName      string    `db:"donor_name" json:"donor_name"`
	DonorContact   string    `db:"donor_contact" json:"donor_contact"`
	DonorPhone     string    `db:"donor_phone" json:"donor_phone"`
	DonationType   string    `db:"donation_type" json:"donation_type"`
	PickupLocation string    `db:"pickup_location" json:"pickup_location"`
	RecipientID    string    `db:"recipient_id" json:"recipient_id"`
	RecipientName  string    `db:"recipient_name" json:"recipient_name"`
	ImageKey       *string   `db:"image_key" json:"image_key,omitempty"`
	ClassifiedType *string   `db:"classified_type" json:"classified_type,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// DonatedRecipient is the append-only snapshot of a completed match. It feeds
// the historical urgency statistics.
type DonatedRecipient struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"recipient_name"`
	Location         string    `db:"location" json:"location"`
	Latitude         float64   `db:"latitude" json:"latitude"`
	Longitude        float64   `db:"longitude" json:"longitude"`
	DonationType     string    `db:"donation_type" json:"donation_type"`
	Urgency          float64   `db:"urgency" json:"urgency"`
	DonorName        string    `db:"donor_name" json:"donor_name"`
	RecipientContact string    `db:"recipient_contact" json:"recipient_contact"`
	RecipientPhone   string    `db:"recipient_phone" json:"recipient_phone"`
	DonorContact     string    `db:"donor_contact" json:"donor_contact"`
	DonorPhone       string    `db:"donor_phone" json:"donor_phone"`
	PickupLocation   string    `db:"pickup_location" json:"pickup_location"`
	TransactionDate  time.Time `db:"transaction_date" json:"date"`
}

type DonateRequest struct {
	DonorName      string `json:"donor_name"`
	DonorContact   string `json:"donor_contact" validate:"required,email"`
	DonorPhone     string `json:"donor_phone" validate:"required"`
	DonationType   string `json:"donation_type" validate:"required"`
	DonorLocation  string `json:"donor_location" validate:"required"`
	PickupLocation string `json:"pickup_location" validate:"required"`
	RecipientID    string `json:"recipient_id" validate:"required"`
	Message        string `json:"message"`
}

// Match is the outcome of a committed donation.
type Match struct {
	Donation  *Donation
	Donated   *DonatedRecipient
	Recipient *Recipient
}
