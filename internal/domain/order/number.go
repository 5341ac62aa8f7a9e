package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber generates a human-readable unique order number in the form
// ORD-YYYYMMDD-XXXXXXXX, where the date is UTC and the suffix is the first
// eight hex characters of a random UUID, uppercased. The suffix carries 32
// bits of entropy, so collisions are negligible and no coordination across
// concurrent requests is needed; the database uniqueness constraint is the
// final backstop.
func NewOrderNumber(now time.Time) string {
	date := now.UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}
