package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/bpc-market/storefront-service/internal/delivery"
	"github.com/bpc-market/storefront-service/internal/errors"
	"github.com/bpc-market/storefront-service/internal/models"
)

const (
	maxNotesLength = 1000
	maxFieldLength = 200
)

var (
	validate    = validator.New()
	notesPolicy = bluemonday.StrictPolicy()
)

// ValidateCreateQuoteRequest checks the contact block and district of a
// quotation request.
func ValidateCreateQuoteRequest(req *models.CreateQuoteRequest) error {
	if req == nil {
		return errors.NewValidationError("contact", "request body is required")
	}

	c := &req.Contact
	if strings.TrimSpace(c.Name) == "" {
		return errors.NewValidationError("contact.name", "name is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return errors.NewValidationError("contact.phone", "phone is required")
	}
	if !validPhone(c.Phone) {
		return errors.NewValidationError("contact.phone", "phone must contain 6 to 15 digits")
	}
	if c.Email != "" {
		if err := validate.Var(c.Email, "email"); err != nil {
			return errors.NewValidationError("contact.email", "email is not valid")
		}
	}

	for _, f := range []struct{ field, value string }{
		{"contact.name", c.Name},
		{"contact.company", c.Company},
		{"contact.address", c.Address},
	} {
		if utf8.RuneCountInString(f.value) > maxFieldLength {
			return errors.NewValidationError(f.field, "too long (max 200 characters)")
		}
	}

	if req.District != "" && !delivery.IsKnownDistrict(req.District) {
		return errors.NewValidationError("district", "unknown district")
	}

	return nil
}

// validPhone accepts digits with the usual separators and an optional
// leading +.
func validPhone(phone string) bool {
	digits := 0
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 6 && digits <= 15
}

// NormalizeContact trims every contact field.
func NormalizeContact(c models.Contact) models.Contact {
	return models.Contact{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Company: strings.TrimSpace(c.Company),
		Address: strings.TrimSpace(c.Address),
	}
}

// SanitizeQuoteNotes strips all markup from free-text notes and caps their
// length. The result is plain text; escaping is left to whoever renders it.
func SanitizeQuoteNotes(notes string) string {
	notes = strings.TrimSpace(html.UnescapeString(notesPolicy.Sanitize(notes)))

	if utf8.RuneCountInString(notes) > maxNotesLength {
		notes = string([]rune(notes)[:maxNotesLength])
	}
	return notes
}
