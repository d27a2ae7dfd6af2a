package auth

import (
	"sync"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes
const BcryptCost = 12

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// PasswordPolicyMessage describes PasswordMeetsPolicy to users
const PasswordPolicyMessage = "password must be at least 8 characters and contain a letter and a digit"

// HashPassword hashes a plain-text password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hash with a plain-text password
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// PlaceholderHash is a hash at BcryptCost that matches no real password.
// Login compares against it when no account matches, so unknown and known logins cost the same.
var PlaceholderHash = sync.OnceValue(func() string {
	hash, err := HashPassword("npresec:no-such-account")
	if err != nil {
		panic(err)
	}
	return hash
})

// PasswordMeetsPolicy requires at least MinPasswordLength characters with one letter and one digit
func PasswordMeetsPolicy(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
