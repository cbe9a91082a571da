package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

// MatchNotice carries what both parties need to arrange the hand-over.
type MatchNotice struct {
	DonorName        string
	DonorEmail       string
	DonorPhone       string
	RecipientName    string
	RecipientEmail   string
	RecipientPhone   string
	DonationType     string
	PickupLocation   string
	DeliveryLocation string
	Message          string
}

const (
	donorSubject     = "Thank you for your donation!"
	recipientSubject = "Good news! Your donation request has been matched"
)

var donorTemplate = template.Must(template.New("donor").Funcs(funcs).Parse(`Thank you for your donation!

Dear {{ .DonorName }},

Thank you for your generous donation of {{ .DonationType }}.
Your contribution will make a real difference in someone's life.

Your Message:
{{ or .Message "No message provided" }}

Pickup Details
- Location: {{ .PickupLocation }}

Recipient Information
- Name: {{ .RecipientName }}
- Email: {{ .RecipientEmail }}
- Phone: {{ orNotProvided .RecipientPhone }}
- Delivery Location: {{ .DeliveryLocation }}

Please coordinate with the recipient to arrange the transfer of your donation.

Thank you for making a difference in your community!

Best regards,
AidHub Team
`))

var recipientTemplate = template.Must(template.New("recipient").Funcs(funcs).Parse(`Donation Match Notification

Dear {{ .RecipientName }},

Great news! Your request for {{ .DonationType }} has been matched with a donor.

Donor Information
- Name: {{ .DonorName }}
- Email: {{ .DonorEmail }}
- Phone: {{ orNotProvided .DonorPhone }}
- Pickup Location: {{ .PickupLocation }}

Donor's Message:
{{ or .Message "No message provided" }}

Please coordinate with the donor to arrange the pickup/delivery of your donation.

Best regards,
AidHub Team
`))

var funcs = template.FuncMap{
	"orNotProvided": func(s string) string {
		if s == "" {
			return "Not provided"
		}
		return s
	},
}

// Email is a rendered plaintext message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// MatchEmails renders the donor thank-you and the recipient notification.
func MatchEmails(notice MatchNotice) ([]Email, error) {
	donorBody, err := render(donorTemplate, notice)
	if err != nil {
		return nil, err
	}

	recipientBody, err := render(recipientTemplate, notice)
	if err != nil {
		return nil, err
	}

	return []Email{
		{To: notice.DonorEmail, Subject: donorSubject, Body: donorBody},
		{To: notice.RecipientEmail, Subject: recipientSubject, Body: recipientBody},
	}, nil
}

func render(t *template.Template, notice MatchNotice) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, notice); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
