package correlation

import (
	"sync"
	"time"

	"github.com/snarg/mqtt-inspect/internal/idgen"
)

// entry is the mutable state backing a single correlation-data key. All
// mutation is guarded by mu; the tracker's maps only ever hold a pointer to
// one of these, looked up and modified without a store-wide lock.
type entry struct {
	mu sync.Mutex

	correlationData []byte
	requestID       idgen.ID
	responseTopic   string
	createdAt       time.Time
	ttl             time.Duration
	expiresAt       time.Time
	responses       []idgen.ID
	status          Status
}

func (e *entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}
