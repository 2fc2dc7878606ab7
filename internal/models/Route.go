package models

import (
	"time"
)

// Route connects a start and a destination and is serviced by a set of buses.
// A bus may serve many routes and a route may have many buses, linked through
// the route_buses join table.
type Route struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Start       string    `gorm:"not null;index" json:"start"`
	Destination string    `gorm:"not null;index" json:"destination"`

	// Optional path as WKB; the API exchanges it as GeoJSON.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	Buses []Bus `gorm:"many2many:route_buses;" json:"buses"`
}

// Clone returns a copy of the route that does not share its bus slice.
func (r Route) Clone() Route {
	out := r
	out.Buses = make([]Bus, len(r.Buses))
	copy(out.Buses, r.Buses)
	if r.Geometry != nil {
		out.Geometry = append([]byte(nil), r.Geometry...)
	}
	return out
}
