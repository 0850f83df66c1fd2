package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reProductID = regexp.MustCompile(`^[0-9]{1,18}$`)
	reName      = regexp.MustCompile(`^[\pL\pN _'.,&()\-/]{1,128}$`)
	reCond      = regexp.MustCompile(`^(NEW|OPEN_BOX|USED|UNKNOWN)$`)
)

// ProductID validates a numeric product identifier.
func ProductID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !reProductID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// Condition validates allowed condition enums.
func Condition(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reCond.MatchString(s)
}

// ProductName validates a displayable product name.
func ProductName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reName.MatchString(s)
}

// Count parses a non-negative integer such as a quantity adjustment.
func Count(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Present reports whether every value is non-blank.
func Present(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
