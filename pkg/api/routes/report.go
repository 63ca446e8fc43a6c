package routes

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jpuchoc/st-report/pkg/report"
	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/liip/sheriff"
)

// RunStatusLocal is the request local holding the status of the pipeline run
// that served the request.
const RunStatusLocal = "runStatus"

type reportRouter struct {
	service *report.Service
}

func ReportRouter(router fiber.Router, service *report.Service) {
	r := &reportRouter{service: service}

	router.Get("/trips", r.listTrips)
	router.Get("/trips/:identifier", r.getTrip)
	router.Get("/zones/averages", r.zoneAverages)
	router.Get("/zones/:zone", r.zoneDetail)
	router.Get("/overview", r.overview)
}

// run executes the pipeline and restricts the table to the window query
// parameter. It writes the error response itself and returns false when the
// handler should stop.
func (r *reportRouter) run(c *fiber.Ctx) (trips.Result, bool) {
	result := r.service.Run(c.UserContext())
	c.Locals(RunStatusLocal, result.Status.String())

	if result.Status == trips.StatusDataUnavailable {
		c.Status(fiber.StatusServiceUnavailable)
		c.JSON(fiber.Map{
			"status": result.Status,
			"error":  result.Err.Error(),
		})
		return result, false
	}

	table, err := r.service.Window(result.Table, c.Query("window"))
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		c.JSON(fiber.Map{
			"error": err.Error(),
		})
		return result, false
	}
	result.Table = table

	return result, true
}

func (r *reportRouter) listTrips(c *fiber.Ctx) error {
	result, ok := r.run(c)
	if !ok {
		return nil
	}

	groups := []string{"basic"}
	if c.QueryBool("detail") {
		groups = append(groups, "detailed")
	}

	rows := result.Table.SortedByExit().Rows
	tripsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, rows)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce trips",
		})
	}

	return c.JSON(fiber.Map{
		"status":       result.Status,
		"generated_at": result.GeneratedAt,
		"columns":      result.Table.Columns,
		"trips":        tripsReduced,
	})
}

func (r *reportRouter) getTrip(c *fiber.Ctx) error {
	tripID, err := strconv.ParseInt(c.Params("identifier"), 10, 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Trip identifier must be numeric",
		})
	}

	result, ok := r.run(c)
	if !ok {
		return nil
	}

	trip, found := result.Table.Find(tripID)
	if !found {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Trip matching Trip Identifier",
		})
	}

	tripReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, trip)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce trip",
		})
	}

	return c.JSON(tripReduced)
}

func (r *reportRouter) zoneAverages(c *fiber.Ctx) error {
	result, ok := r.run(c)
	if !ok {
		return nil
	}

	zones := r.service.Display.ZoneColumns(result.Table)
	averages := trips.AverageByType(result.Table, zones)

	return c.JSON(fiber.Map{
		"status":      result.Status,
		"zones":       zones,
		"averages":    averages,
		"highlighted": trips.HighlightedMinutes(averages, r.service.HighlightedZones),
	})
}

func (r *reportRouter) zoneDetail(c *fiber.Ctx) error {
	zone, err := url.PathUnescape(c.Params("zone"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Zone is not a valid path segment",
		})
	}

	vehicleType := c.Query("type")
	if vehicleType == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A vehicle type must be given",
		})
	}

	result, ok := r.run(c)
	if !ok {
		return nil
	}

	return c.JSON(trips.ZoneDetail(result.Table, vehicleType, zone, r.service.Display))
}

func (r *reportRouter) overview(c *fiber.Ctx) error {
	result, ok := r.run(c)
	if !ok {
		return nil
	}

	overview := trips.Overview(result.Table)

	return c.JSON(fiber.Map{
		"status":        result.Status,
		"generated_at":  result.GeneratedAt,
		"trips":         overview.Trips,
		"vehicle_types": trips.VehicleTypes(result.Table),
		"diagnostics":   result.Diagnostics,
	})
}
