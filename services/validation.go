package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/veloxpay/velox/models"
)

// ValidatePaymentMethod checks card fields against format rules before any
// processor call. An empty slice means valid. Luhn checking is left to the
// sanitation layer; this is format validation only.
func ValidatePaymentMethod(pm models.PaymentMethod) []string {
	var errs []string

	number := strings.ReplaceAll(pm.CardNumber, " ", "")
	if !isDigits(number) || len(number) < 13 || len(number) > 19 {
		errs = append(errs, "Card number must be 13 to 19 digits")
	}

	if !isDigits(pm.ExpirationDate) || len(pm.ExpirationDate) != 4 {
		errs = append(errs, "Expiration date must be 4 digits in MMYY format")
	} else if expired(pm.ExpirationDate) {
		errs = append(errs, "Card expiration date is in the past")
	}

	if !isDigits(pm.CVV) || len(pm.CVV) < 3 || len(pm.CVV) > 4 {
		errs = append(errs, "CVV must be 3 or 4 digits")
	}

	return errs
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// expired interprets MMYY with the year offset from 2000. A card is valid
// through the last moment of its expiration month.
func expired(mmyy string) bool {
	month, _ := strconv.Atoi(mmyy[:2])
	year, _ := strconv.Atoi(mmyy[2:])

	if month < 1 || month > 12 {
		return true
	}

	// First instant of the month after expiry.
	boundary := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !time.Now().UTC().Before(boundary)
}

func maskedCard(number string) (lastFour, cardType string) {
	number = strings.ReplaceAll(number, " ", "")
	if len(number) >= 4 {
		lastFour = number[len(number)-4:]
	}
	cardType = detectCardType(number)
	return lastFour, cardType
}

func detectCardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return "mastercard"
	case strings.HasPrefix(number, "6"):
		return "discover"
	default:
		return "unknown"
	}
}
