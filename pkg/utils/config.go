package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Email    EmailConfig
	Payment  PaymentConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	BaseURL string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours      int
	ResetTokenExpiry time.Duration
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// PaymentConfig holds the destination bank account rendered into the
// VietQR transfer image.
type PaymentConfig struct {
	BankID      string
	AccountNo   string
	AccountName string
	Template    string
}

type BookingConfig struct {
	MaxSeats      int
	CancelBuffer  time.Duration
	HoldTTL       time.Duration
	CleanupBuffer time.Duration
	SweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("RESET_TOKEN_EXPIRY_MINUTES", 60)
	viper.SetDefault("QR_TEMPLATE", "compact2")
	viper.SetDefault("BOOKING_MAX_SEATS", 5)
	viper.SetDefault("BOOKING_CANCEL_BUFFER_MINUTES", 30)
	viper.SetDefault("BOOKING_HOLD_TTL_MINUTES", 15)
	viper.SetDefault("SHOWTIME_CLEANUP_BUFFER_MINUTES", 30)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			BaseURL: viper.GetString("BASE_URL"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours:      viper.GetInt("SESSION_EXPIRY_HOURS"),
			ResetTokenExpiry: time.Duration(viper.GetInt("RESET_TOKEN_EXPIRY_MINUTES")) * time.Minute,
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		Payment: PaymentConfig{
			BankID:      viper.GetString("QR_BANK_ID"),
			AccountNo:   viper.GetString("QR_ACCOUNT_NO"),
			AccountName: viper.GetString("QR_ACCOUNT_NAME"),
			Template:    viper.GetString("QR_TEMPLATE"),
		},
		Booking: BookingConfig{
			MaxSeats:      viper.GetInt("BOOKING_MAX_SEATS"),
			CancelBuffer:  time.Duration(viper.GetInt("BOOKING_CANCEL_BUFFER_MINUTES")) * time.Minute,
			HoldTTL:       time.Duration(viper.GetInt("BOOKING_HOLD_TTL_MINUTES")) * time.Minute,
			CleanupBuffer: time.Duration(viper.GetInt("SHOWTIME_CLEANUP_BUFFER_MINUTES")) * time.Minute,
			SweepInterval: time.Duration(viper.GetInt("SWEEP_INTERVAL_SECONDS")) * time.Second,
		},
	}

	return config, nil
}
