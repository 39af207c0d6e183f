package service

import (
	"strconv"
	"strings"

	"github.com/99minutos/ledger-system/internal/core/domain"
)

// ParseAmount accepts a base-10 integer greater than zero. Surrounding
// whitespace is ignored; anything else (fractions, trailing garbage, signs
// that make the value non-positive) is rejected.
func ParseAmount(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return n, nil
}
