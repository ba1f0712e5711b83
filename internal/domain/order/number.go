package order

import (
	"fmt"
	"regexp"
	"time"
)

// Order number format: VKR + 2-digit year + 2-digit month + 2-digit
// day + 4-digit zero-padded daily sequence, e.g. VKR2501170007.
// Numbers are unique across the whole dataset and monotonically
// increasing within a calendar day.
const OrderNumberPrefix = "VKR"

var orderNumberPattern = regexp.MustCompile(`^VKR\d{6}\d{4}$`)

// FormatOrderNumber renders the order number for a day and sequence
func FormatOrderNumber(day time.Time, sequence int) string {
	return fmt.Sprintf("%s%s%04d", OrderNumberPrefix, day.Format("060102"), sequence)
}

// IsValidOrderNumber reports whether s matches the order number format
func IsValidOrderNumber(s string) bool {
	return orderNumberPattern.MatchString(s)
}
