package domain

// Lifecycle status of a route.
type RouteStatus string

const (
	RouteStatusPlanning   RouteStatus = "planning"
	RouteStatusAssigned   RouteStatus = "assigned"
	RouteStatusInProgress RouteStatus = "in_progress"
	RouteStatusCompleted  RouteStatus = "completed"
)

// Kind of a stop. Only pickup stops are generated today; the dropoff leg
// would be a separate planning pass.
type StopType string

const (
	StopTypePickup  StopType = "pickup"
	StopTypeDropoff StopType = "dropoff"
)

// Completion status of a stop, advanced by the driver during the run.
type StopStatus string

const (
	StopStatusPending   StopStatus = "pending"
	StopStatusCompleted StopStatus = "completed"
)

// Represents a planned transport route for one calendar date.
// A Route exclusively owns its Stops; deleting the route deletes them.
// DriverID and VehicleID are nil until the route is assigned.
type Route struct {
	ID        string
	Name      string
	Date      string // ISO calendar date YYYY-MM-DD, treated as an opaque key
	Status    RouteStatus
	DriverID  *string
	VehicleID *string
	Stops     []*Stop
}

// Represents a single stop on a route.
// Within a route, sequences are a contiguous 1..N enumeration.
type Stop struct {
	ID       string
	Sequence int
	Type     StopType
	Status   StopStatus
	ChildID  string
	RouteID  string
}

// StopForChild returns the route's stop referencing the given child, or nil.
func (r *Route) StopForChild(childID string) *Stop {
	for _, s := range r.Stops {
		if s.ChildID == childID {
			return s
		}
	}
	return nil
}
