package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Geocoding
	GeocoderProvider  string `envconfig:"GEOCODER_PROVIDER" default:"nominatim"`
	GeocoderUserAgent string `envconfig:"GEOCODER_USER_AGENT" default:"donation_ai"`
	GoogleMapsAPIKey  string `envconfig:"GOOGLE_MAPS_API_KEY"`
	GeocoderTimeout   uint   `envconfig:"GEOCODER_TIMEOUT_SEC" default:"10"`

	// Image classification
	ClassifierURL        string `envconfig:"CLASSIFIER_URL"`
	ClassifierTimeoutSec uint   `envconfig:"CLASSIFIER_TIMEOUT_SEC" default:"20"`
	CategoryTablePath    string `envconfig:"CATEGORY_TABLE_PATH"`

	// Donation photos, disabled when empty
	ImageBucket string `envconfig:"IMAGE_BUCKET"`

	// Outbound mail
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"AidHub <noreply@aidhub.local>"`

	// Lookback for historical urgency statistics
	HistoryWindowDays uint `envconfig:"HISTORY_WINDOW_DAYS" default:"30"`
}
