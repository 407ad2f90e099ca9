// Safe logging: masks personal and financial data in production logs.
// In release mode emails, money amounts, and entity identifiers are
// replaced or shortened before a line hits the log.
package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
)

// IsProduction controls masking. Matches the gin release convention so
// one env var flips both.
var IsProduction = os.Getenv("GIN_MODE") == "release" ||
	os.Getenv("ENVIRONMENT") == "production"

var (
	emailRegex  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	amountRegex = regexp.MustCompile(`\b\d+\.\d{2}\b`)
	idRegex     = regexp.MustCompile(`\b(?:user|bank|account|transfer|transaction|session)-[0-9a-zA-Z-]{8,}\b`)
)

// MaskString masks sensitive data in a string when in production.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}
	result := emailRegex.ReplaceAllString(input, "***@***.***")
	result = amountRegex.ReplaceAllString(result, "***.**")
	result = idRegex.ReplaceAllStringFunc(result, MaskID)
	return result
}

// MaskID shortens an entity id to its first twelve characters.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 12 {
		return "***"
	}
	return id[:12] + "..."
}

// MaskEmail masks an email address.
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// SafeLog logs a formatted message with sensitive data masked.
func SafeLog(format string, args ...any) {
	log.Print(MaskString(fmt.Sprintf(format, args...)))
}

// LogAuthAction logs an authentication event without leaking the email
// in production.
func LogAuthAction(action, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	log.Printf("[Auth] %s - Email: %s Status: %s", action, MaskEmail(email), status)
}

// LogTransfer logs a committed transfer without leaking ids or amounts
// in production.
func LogTransfer(transferID, senderBankID, receiverBankID, amount string) {
	if IsProduction {
		log.Printf("[Transfer] %s - %s -> %s Amount: ***",
			MaskID(transferID), MaskID(senderBankID), MaskID(receiverBankID))
		return
	}
	log.Printf("[Transfer] %s - %s -> %s Amount: %s",
		transferID, senderBankID, receiverBankID, amount)
}
