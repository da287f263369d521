package recruitment

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ApplicationNumberPattern matches generated application numbers
var ApplicationNumberPattern = regexp.MustCompile(`^APP-\d{4}-[0-9A-F]{8}$`)

// maxNumberAttempts bounds retries after an application number collision
const maxNumberAttempts = 5

// NewApplicationNumber returns APP-<year>-<8 uppercase hex chars>. The hex
// part comes from a random (version 4) UUID, so numbers are not sequential.
func NewApplicationNumber(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("APP-%04d-%08X", now.Year(), binary.BigEndian.Uint32(id[:4]))
}
