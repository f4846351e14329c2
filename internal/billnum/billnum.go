package billnum

import (
	"fmt"
	"time"
)

// New returns a client-generated bill number. It is a millisecond timestamp
// token, unique enough in practice for a single composing screen but not
// guaranteed globally unique under concurrent composers.
func New() string {
	return fmt.Sprintf("BILL-%d", time.Now().UnixMilli())
}
