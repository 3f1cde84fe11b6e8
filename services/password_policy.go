package services

import (
	"unicode"
	"unicode/utf8"
)

// Password requirements
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything beyond 72 bytes
)

// ValidatePassword checks the password has a usable length and mixes letters and digits
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", "must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return invalid("password", "must be at most %d bytes long", MaxPasswordLength)
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasLetter {
		return invalid("password", "must contain at least one letter")
	}
	if !hasNumber {
		return invalid("password", "must contain at least one number")
	}
	return nil
}
