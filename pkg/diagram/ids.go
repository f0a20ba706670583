package diagram

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ID schemes accepted by NewIDGenerator.
const (
	IDSchemeClock = "clock" // millisecond timestamps, as the browser editor generates them
	IDSchemeUUID  = "uuid"  // time-ordered UUIDv7
)

// edgeIDPrefix distinguishes edge ids from node ids.
const edgeIDPrefix = "e_"

// IDGenerator hands out identifiers for new nodes and edges.
type IDGenerator interface {
	NodeID() string
	EdgeID() string
}

// NewIDGenerator returns the generator for scheme. An empty scheme selects
// IDSchemeClock.
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case "", IDSchemeClock:
		return NewClockIDs(nil), nil
	case IDSchemeUUID:
		return UUIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}

// ClockIDs derives identifiers from a millisecond clock. Values are strictly
// increasing: when the clock has not advanced since the last call, the
// previous value plus one is used. It is safe for concurrent use.
type ClockIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClockIDs creates a clock-based generator. A nil now uses time.Now.
func NewClockIDs(now func() time.Time) *ClockIDs {
	if now == nil {
		now = time.Now
	}
	return &ClockIDs{now: now}
}

// NodeID returns the next identifier, e.g. "1734692400123".
func (g *ClockIDs) NodeID() string {
	return strconv.FormatInt(g.next(), 10)
}

// EdgeID returns the next identifier with the edge prefix, e.g. "e_1734692400124".
func (g *ClockIDs) EdgeID() string {
	return edgeIDPrefix + strconv.FormatInt(g.next(), 10)
}

func (g *ClockIDs) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// UUIDs generates UUIDv7 identifiers.
type UUIDs struct{}

// NodeID returns a new UUIDv7 string.
func (UUIDs) NodeID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// EdgeID returns a new UUIDv7 string with the edge prefix.
func (UUIDs) EdgeID() string {
	return edgeIDPrefix + uuid.Must(uuid.NewV7()).String()
}
