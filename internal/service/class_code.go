package service

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	classCodePrefix   = "CLS"
	classCodeAttempts = 3
)

// NextClassCode returns the code following the numeric maximum of existing CLS codes.
// Codes without a numeric suffix are ignored; CLS01 seeds an empty set.
func NextClassCode(existing []string) string {
	max := 0
	for _, code := range existing {
		suffix, ok := strings.CutPrefix(code, classCodePrefix)
		if !ok || suffix == "" {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%02d", classCodePrefix, max+1)
}
