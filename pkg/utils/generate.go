package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"strconv"
	"time"
)

// GenerateOrderID creates a human-readable order reference.
// Format: TICKET-YYYYMMDD-HHMMSS-RANDOM
func GenerateOrderID() string {
	now := time.Now()
	return fmt.Sprintf("TICKET-%s-%s-%04d",
		now.Format("20060102"), now.Format("150405"), mrand.Intn(10000))
}

// GenerateResetToken returns a cryptographically random hex token.
func GenerateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ParseInt converts a string to int, falling back to defaultValue for
// empty, invalid or non-positive input.
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}
