package assets

import (
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// QRCodePattern matches every code produced by NewQRCode.
var QRCodePattern = regexp.MustCompile(`^AST-[0-9a-z]+-[0-9a-f]{8}$`)

// qrAttempts bounds the collision retry loop in Create.
const qrAttempts = 5

// NewQRCode combines the creation time in nanoseconds with a random suffix.
func NewQRCode() string {
	ts := strconv.FormatInt(time.Now().UnixNano(), 36)
	return "AST-" + ts + "-" + uuid.NewString()[:8]
}
