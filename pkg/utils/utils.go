package utils

import (
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain password using bcrypt with cost 14.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsEmail returns true if the string is a valid email address.
func IsEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

var kenyanMsisdn = regexp.MustCompile(`^254[17]\d{8}$`)

// NormalizePhoneNumber converts a Kenyan phone number to the canonical
// 2547XXXXXXXX / 2541XXXXXXXX form Daraja expects. Returns the normalized
// number and whether the input was a recognizable Kenyan mobile number.
func NormalizePhoneNumber(phone string) (string, bool) {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+")
	p = strings.ReplaceAll(p, " ", "")
	p = strings.ReplaceAll(p, "-", "")
	if strings.HasPrefix(p, "0") && len(p) == 10 {
		p = "254" + p[1:]
	}
	if kenyanMsisdn.MatchString(p) {
		return p, true
	}
	return "", false
}
