package ledger

import (
	"strconv"
	"sync/atomic"
	"time"
)

var idCounter atomic.Uint64

// NextID returns a unique entity id: the millisecond timestamp plus a
// process-wide counter suffix, so rapid successive calls inside the
// same millisecond never collide.
func NextID() string {
	n := idCounter.Add(1)
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.FormatUint(n%10000, 10)
}
