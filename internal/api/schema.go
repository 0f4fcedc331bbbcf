package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"childcare-route-service/internal/ports"
	"childcare-route-service/internal/services"
)

// Resolver holds the dependencies GraphQL fields resolve against.
type Resolver struct {
	Store       ports.Store
	Planner     *services.Planner
	Editor      *services.Editor
	Geocoder    ports.Geocoder
	Clock       ports.Clock
	PlanTimeout time.Duration
}

// NewSchema builds the GraphQL schema. Field and enum names are the external
// contract; clients depend on them verbatim.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	categoryEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "Category",
		Values: graphql.EnumValueConfigMap{
			"infant":             {Value: "infant"},
			"toddler":            {Value: "toddler"},
			"preschool":          {Value: "preschool"},
			"out_of_school_care": {Value: "out_of_school_care"},
		},
	})

	capabilityEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "Capability",
		Values: graphql.EnumValueConfigMap{
			"infant_certified": {Value: "infant_certified"},
			"toddler_trained":  {Value: "toddler_trained"},
			"special_needs":    {Value: "special_needs"},
		},
	})

	equipmentEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "Equipment",
		Values: graphql.EnumValueConfigMap{
			"infant_seat":     {Value: "infant_seat"},
			"toddler_seat":    {Value: "toddler_seat"},
			"booster_seat":    {Value: "booster_seat"},
			"wheelchair_lift": {Value: "wheelchair_lift"},
		},
	})

	routeStatusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "RouteStatus",
		Values: graphql.EnumValueConfigMap{
			"planning":    {Value: "planning"},
			"assigned":    {Value: "assigned"},
			"in_progress": {Value: "in_progress"},
			"completed":   {Value: "completed"},
		},
	})

	stopTypeEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "StopType",
		Values: graphql.EnumValueConfigMap{
			"pickup":  {Value: "pickup"},
			"dropoff": {Value: "dropoff"},
		},
	})

	stopStatusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "StopStatus",
		Values: graphql.EnumValueConfigMap{
			"pending":   {Value: "pending"},
			"completed": {Value: "completed"},
		},
	})

	childType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Child",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"street":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"city":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"state":    &graphql.Field{Type: graphql.String},
			"lat":      &graphql.Field{Type: graphql.Float},
			"lon":      &graphql.Field{Type: graphql.Float},
			"category": &graphql.Field{Type: graphql.NewNonNull(categoryEnum)},
		},
	})

	driverType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Driver",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"capabilities": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(capabilityEnum)))},
		},
	})

	vehicleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Vehicle",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"capacity":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"equipment": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(equipmentEnum)))},
		},
	})

	stopType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stop",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"sequence": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"type":     &graphql.Field{Type: graphql.NewNonNull(stopTypeEnum)},
			"status":   &graphql.Field{Type: graphql.NewNonNull(stopStatusEnum)},
			"childId":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"routeId":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"date":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"status":    &graphql.Field{Type: graphql.NewNonNull(routeStatusEnum)},
			"driverId":  &graphql.Field{Type: graphql.String},
			"vehicleId": &graphql.Field{Type: graphql.String},
			"stops":     &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(stopType)))},
		},
	})

	coordinatesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinates",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	unroutableChildType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UnroutableChild",
		Fields: graphql.Fields{
			"child":  &graphql.Field{Type: graphql.NewNonNull(childType)},
			"reason": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	planningResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanningResult",
		Fields: graphql.Fields{
			"generatedRoutes":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(routeType)))},
			"unroutableChildren": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(unroutableChildType)))},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"children": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(childType))),
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					children, err := r.Store.ListChildren(ctx)
					if err != nil {
						return nil, err
					}
					return toChildDTOs(children), nil
				}),
			},
			"child": &graphql.Field{
				Type: childType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					child, err := r.Store.GetChild(ctx, stringArg(p, "id"))
					if err != nil {
						return nil, err
					}
					return toChildDTO(child), nil
				}),
			},
			"drivers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(driverType))),
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					drivers, err := r.Store.ListDrivers(ctx)
					if err != nil {
						return nil, err
					}
					out := make([]driverDTO, 0, len(drivers))
					for _, d := range drivers {
						out = append(out, toDriverDTO(d))
					}
					return out, nil
				}),
			},
			"driver": &graphql.Field{
				Type: driverType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					driver, err := r.Store.GetDriver(ctx, stringArg(p, "id"))
					if err != nil {
						return nil, err
					}
					return toDriverDTO(driver), nil
				}),
			},
			"vehicles": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(vehicleType))),
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					vehicles, err := r.Store.ListVehicles(ctx)
					if err != nil {
						return nil, err
					}
					out := make([]vehicleDTO, 0, len(vehicles))
					for _, v := range vehicles {
						out = append(out, toVehicleDTO(v))
					}
					return out, nil
				}),
			},
			"vehicle": &graphql.Field{
				Type: vehicleType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					vehicle, err := r.Store.GetVehicle(ctx, stringArg(p, "id"))
					if err != nil {
						return nil, err
					}
					return toVehicleDTO(vehicle), nil
				}),
			},
			"routes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(routeType))),
				Args: graphql.FieldConfigArgument{
					"date": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					routes, err := r.Store.ListRoutesByDate(ctx, stringArg(p, "date"))
					if err != nil {
						return nil, err
					}
					return toRouteDTOs(routes), nil
				}),
			},
			"route": &graphql.Field{
				Type: routeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					route, err := r.Store.GetRoute(ctx, stringArg(p, "id"))
					if err != nil {
						return nil, err
					}
					return toRouteDTO(route), nil
				}),
			},
			"geocodeAddress": &graphql.Field{
				Type: coordinatesType,
				Args: graphql.FieldConfigArgument{
					"address": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					if r.Geocoder == nil {
						return nil, fmt.Errorf("no geocoder configured: %w", services.ErrPortFailure)
					}
					coords, err := r.Geocoder.Lookup(ctx, stringArg(p, "address"))
					if err != nil {
						return nil, fmt.Errorf("geocode address: %v: %w", err, services.ErrPortFailure)
					}
					if coords == nil {
						return nil, nil
					}
					return coordinatesDTO{Lat: coords.Lat, Lon: coords.Lon}, nil
				}),
			},
			"getMyAssignedRoute": &graphql.Field{
				Type: routeType,
				Args: graphql.FieldConfigArgument{
					"date": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					principal, err := requireDriver(p.Context)
					if err != nil {
						return nil, asAPIError(err)
					}

					date := stringArg(p, "date")
					if date == "" {
						date = r.Clock.Today()
					}

					route, err := r.Store.FindAssignedRoute(p.Context, principal.ID, date)
					if errors.Is(err, ports.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, asAPIError(err)
					}
					return toRouteDTO(route), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"planAllDailyRoutes": &graphql.Field{
				Type: graphql.NewNonNull(planningResultType),
				Args: graphql.FieldConfigArgument{
					"date": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					if r.PlanTimeout > 0 {
						var cancel context.CancelFunc
						ctx, cancel = context.WithTimeout(ctx, r.PlanTimeout)
						defer cancel()
					}

					result, err := r.Planner.PlanDay(ctx, stringArg(p, "date"))
					if err != nil {
						return nil, err
					}
					return toPlanningResultDTO(result), nil
				}),
			},
			"createManualRoute": &graphql.Field{
				Type: graphql.NewNonNull(routeType),
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					route, err := r.Editor.CreateManualRoute(ctx, stringArg(p, "name"), stringArg(p, "date"))
					if err != nil {
						return nil, err
					}
					return toRouteDTO(route), nil
				}),
			},
			"addStopToRoute": &graphql.Field{
				Type: graphql.NewNonNull(routeType),
				Args: graphql.FieldConfigArgument{
					"routeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"childId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					route, err := r.Editor.AddStopToRoute(ctx, stringArg(p, "routeId"), stringArg(p, "childId"))
					if err != nil {
						return nil, err
					}
					return toRouteDTO(route), nil
				}),
			},
			"removeStopFromRoute": &graphql.Field{
				Type: graphql.NewNonNull(routeType),
				Args: graphql.FieldConfigArgument{
					"stopId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					route, err := r.Editor.RemoveStopFromRoute(ctx, stringArg(p, "stopId"))
					if err != nil {
						return nil, err
					}
					return toRouteDTO(route), nil
				}),
			},
			"reorderStops": &graphql.Field{
				Type: graphql.NewNonNull(routeType),
				Args: graphql.FieldConfigArgument{
					"routeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"stopIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					route, err := r.Editor.ReorderStops(ctx, stringArg(p, "routeId"), stringListArg(p, "stopIds"))
					if err != nil {
						return nil, err
					}
					return toRouteDTO(route), nil
				}),
			},
			"assignDriverAndVehicleToRoute": &graphql.Field{
				Type: graphql.NewNonNull(routeType),
				Args: graphql.FieldConfigArgument{
					"routeId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"driverId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"vehicleId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					route, err := r.Editor.AssignDriverAndVehicle(
						ctx, stringArg(p, "routeId"), stringArg(p, "driverId"), stringArg(p, "vehicleId"))
					if err != nil {
						return nil, err
					}
					return toRouteDTO(route), nil
				}),
			},
			"deleteRoute": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"routeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.admin(func(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
					if err := r.Editor.DeleteRoute(ctx, stringArg(p, "routeId")); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// admin wraps a resolver with the admin-principal requirement and the error
// taxonomy mapping.
func (r *Resolver) admin(
	fn func(ctx context.Context, p graphql.ResolveParams) (interface{}, error),
) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if _, err := requireAdmin(p.Context); err != nil {
			return nil, asAPIError(err)
		}
		out, err := fn(p.Context, p)
		if err != nil {
			return nil, asAPIError(err)
		}
		return out, nil
	}
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func stringListArg(p graphql.ResolveParams, name string) []string {
	raw, _ := p.Args[name].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
