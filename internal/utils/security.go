package utils

import "strings"

// MaskPhoneNumber masks a phone number for logs and status lines.
// Keeps the first 3 and last 2 characters.
//
// Examples:
//   - "+15551234567" -> "+15*******67"
//   - "+123" -> "****"
func MaskPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 5 {
		return "****"
	}
	return phone[:3] + strings.Repeat("*", len(phone)-5) + phone[len(phone)-2:]
}

// MaskSecret keeps only the first 4 characters of an api_hash or similar value
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
