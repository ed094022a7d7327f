package client

import (
	"strconv"
	"strings"
)

// IsValidDottedIPv4 reports whether s is four dot-separated integers in [0, 255].
// Leading zeros and surrounding spaces in a part are tolerated.
func IsValidDottedIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}

	return true
}
