package membership

import (
	"fmt"
	"strconv"
	"strings"
)

// firstHumanCode is assigned to the first registered client.
const firstHumanCode = "1001a"

// NextHumanCode returns the code following last. Codes are a monotonic
// numeric part plus a fixed letter suffix ("1001a", "1002a", ...); the
// suffix keeps hand-typed codes from colliding with bare row numbers on
// printed credentials.
func NextHumanCode(last string) string {
	if last == "" {
		return firstHumanCode
	}
	numPart := strings.TrimRightFunc(last, func(r rune) bool {
		return r < '0' || r > '9'
	})
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return firstHumanCode
	}
	return fmt.Sprintf("%da", n+1)
}
