package api

import (
	"childcare-route-service/internal/domain"
	"childcare-route-service/internal/services"
)

// Wire representations of domain records. The GraphQL default resolver reads
// these through their json tags, so tag names are the field contract.

type childDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Street   string   `json:"street"`
	City     string   `json:"city"`
	State    *string  `json:"state"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Category string   `json:"category"`
}

type driverDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

type vehicleDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
}

type stopDTO struct {
	ID       string `json:"id"`
	Sequence int    `json:"sequence"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	ChildID  string `json:"childId"`
	RouteID  string `json:"routeId"`
}

type routeDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	DriverID  *string   `json:"driverId"`
	VehicleID *string   `json:"vehicleId"`
	Stops     []stopDTO `json:"stops"`
}

type coordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type unroutableChildDTO struct {
	Child  childDTO `json:"child"`
	Reason string   `json:"reason"`
}

type planningResultDTO struct {
	GeneratedRoutes    []routeDTO           `json:"generatedRoutes"`
	UnroutableChildren []unroutableChildDTO `json:"unroutableChildren"`
}

func toChildDTO(c *domain.Child) childDTO {
	dto := childDTO{
		ID:       c.ID,
		Name:     c.Name,
		Street:   c.Street,
		City:     c.City,
		Category: string(c.Category),
	}
	if c.State != "" {
		state := c.State
		dto.State = &state
	}
	if c.Coords != nil {
		lat, lon := c.Coords.Lat, c.Coords.Lon
		dto.Lat, dto.Lon = &lat, &lon
	}
	return dto
}

func toChildDTOs(children []*domain.Child) []childDTO {
	out := make([]childDTO, 0, len(children))
	for _, c := range children {
		out = append(out, toChildDTO(c))
	}
	return out
}

func toDriverDTO(d *domain.Driver) driverDTO {
	caps := make([]string, 0, len(d.Capabilities))
	for _, c := range d.Capabilities {
		caps = append(caps, string(c))
	}
	return driverDTO{ID: d.ID, Name: d.Name, Capabilities: caps}
}

func toVehicleDTO(v *domain.Vehicle) vehicleDTO {
	equip := make([]string, 0, len(v.Equipment))
	for _, e := range v.Equipment {
		equip = append(equip, string(e))
	}
	return vehicleDTO{ID: v.ID, Name: v.Name, Capacity: v.Capacity, Equipment: equip}
}

func toRouteDTO(r *domain.Route) routeDTO {
	stops := make([]stopDTO, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, stopDTO{
			ID:       s.ID,
			Sequence: s.Sequence,
			Type:     string(s.Type),
			Status:   string(s.Status),
			ChildID:  s.ChildID,
			RouteID:  s.RouteID,
		})
	}
	return routeDTO{
		ID:        r.ID,
		Name:      r.Name,
		Date:      r.Date,
		Status:    string(r.Status),
		DriverID:  r.DriverID,
		VehicleID: r.VehicleID,
		Stops:     stops,
	}
}

func toRouteDTOs(routes []*domain.Route) []routeDTO {
	out := make([]routeDTO, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteDTO(r))
	}
	return out
}

func toPlanningResultDTO(res *services.PlanningResult) planningResultDTO {
	unroutable := make([]unroutableChildDTO, 0, len(res.Unroutable))
	for _, u := range res.Unroutable {
		unroutable = append(unroutable, unroutableChildDTO{
			Child:  toChildDTO(u.Child),
			Reason: u.Reason,
		})
	}
	return planningResultDTO{
		GeneratedRoutes:    toRouteDTOs(res.Routes),
		UnroutableChildren: unroutable,
	}
}
