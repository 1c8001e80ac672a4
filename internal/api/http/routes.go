package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lakeboard/lakeboard/internal/buoy"
	"github.com/lakeboard/lakeboard/internal/common"
	"github.com/lakeboard/lakeboard/internal/forecast"
	"github.com/lakeboard/lakeboard/internal/glofs"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *forecast.Service, buoys *buoy.Store) {
	v1 := app.Group("/api/v1")

	v1.Get("/runs", func(c *fiber.Ctx) error {
		scope := c.Query("lake", glofs.ScopeAll)
		if scope != glofs.ScopeAll && !glofs.Lake(scope).Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown lake code "+strconv.Quote(scope))
		}

		runs, err := service.Runs(c.Context(), scope)
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(runs)
	})

	v1.Get("/frame", func(c *fiber.Ctx) error {
		var req frameQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		frame, err := service.Frame(c.Context(), req.Lake, req.params())
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(frame)
	})

	v1.Get("/frame_multi", func(c *fiber.Ctx) error {
		var req multiFrameQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		frames, err := service.FrameMulti(c.Context(), req.Lakes, req.params())
		if err != nil {
			return upstreamError(err)
		}

		// Entries stay frame-or-error exactly as the upstream returned them.
		out := make(fiber.Map, len(frames))
		for lake, res := range frames {
			if res.OK() {
				out[string(lake)] = res.Frame
			} else {
				out[string(lake)] = fiber.Map{"error": res.Err}
			}
		}
		return c.JSON(out)
	})

	v1.Get("/grid/wind", func(c *fiber.Ctx) error {
		return serveGrid(c, service.WindGrid)
	})
	v1.Get("/grid/current", func(c *fiber.Ctx) error {
		return serveGrid(c, service.CurrentGrid)
	})
	v1.Get("/grid/temperature", func(c *fiber.Ctx) error {
		var req gridQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		grid, err := service.TemperatureGrid(c.Context(), req.Lake, req.BBox, req.Time, req.Units)
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(grid)
	})

	registerBuoyRoutes(v1, buoys)
}

func serveGrid(c *fiber.Ctx, fetch func(ctx context.Context, lake glofs.Lake, bbox glofs.BBox, timeISO, units string) (*forecast.VectorFieldGrid, error)) error {
	var req gridQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	grid, err := fetch(c.Context(), req.Lake, req.BBox, req.Time, req.Units)
	if err != nil {
		return upstreamError(err)
	}
	return c.JSON(grid)
}

// upstreamError maps client failures onto HTTP responses: upstream statuses
// become 502, everything else is a plain 500.
func upstreamError(err error) error {
	var apiErr *glofs.APIError
	if errors.As(err, &apiErr) {
		return fiber.NewError(fiber.StatusBadGateway, apiErr.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// frameQuery holds query parameters for a single-lake frame fetch.
type frameQuery struct {
	Lake       glofs.Lake
	Hour       int `validate:"gte=-6,lte=120"`
	BBox       glofs.BBox
	Run        *string
	StrideRG   int `validate:"gte=0"`
	StrideWind int `validate:"gte=0"`
}

func (q *frameQuery) bind(c *fiber.Ctx) error {
	lake := glofs.Lake(c.Query("lake"))
	if !lake.Valid() {
		return errors.New("lake must be one of leofs, lmhofs, loofs, lsofs")
	}
	q.Lake = lake
	return bindFrameParams(c, &q.Hour, &q.BBox, &q.Run, &q.StrideRG, &q.StrideWind, q)
}

func (q frameQuery) params() glofs.FrameParams {
	return glofs.FrameParams{
		Hour:       q.Hour,
		BBox:       q.BBox,
		Run:        q.Run,
		StrideRG:   q.StrideRG,
		StrideWind: q.StrideWind,
	}
}

// multiFrameQuery holds query parameters for a batched frame fetch.
type multiFrameQuery struct {
	Lakes      []glofs.Lake
	Hour       int `validate:"gte=-6,lte=120"`
	BBox       glofs.BBox
	Run        *string
	StrideRG   int `validate:"gte=0"`
	StrideWind int `validate:"gte=0"`
}

func (q *multiFrameQuery) bind(c *fiber.Ctx) error {
	raw := c.Query("lakes")
	if raw == "" {
		return errors.New("lakes query parameter is required")
	}
	for _, code := range common.SplitList(raw) {
		lake := glofs.Lake(code)
		if !lake.Valid() {
			return errors.New("unknown lake code " + strconv.Quote(code))
		}
		q.Lakes = append(q.Lakes, lake)
	}
	return bindFrameParams(c, &q.Hour, &q.BBox, &q.Run, &q.StrideRG, &q.StrideWind, q)
}

func (q multiFrameQuery) params() glofs.FrameParams {
	return glofs.FrameParams{
		Hour:       q.Hour,
		BBox:       q.BBox,
		Run:        q.Run,
		StrideRG:   q.StrideRG,
		StrideWind: q.StrideWind,
	}
}

// bindFrameParams parses the parameters shared by frame and frame_multi.
// The run parameter is tri-state: absent, empty, or a run id — absent must
// stay absent all the way to the upstream query string.
func bindFrameParams(c *fiber.Ctx, hour *int, bbox *glofs.BBox, run **string, strideRG, strideWind *int, v any) error {
	hourStr := c.Query("hour")
	if hourStr == "" {
		return errors.New("hour query parameter is required")
	}
	h, err := strconv.Atoi(hourStr)
	if err != nil {
		return errors.New("hour must be an integer")
	}
	*hour = h

	bboxStr := c.Query("bbox")
	if bboxStr == "" {
		return errors.New("bbox query parameter is required")
	}
	b, err := glofs.ParseBBox(bboxStr)
	if err != nil {
		return err
	}
	*bbox = b

	if c.Request().URI().QueryArgs().Has("run") {
		val := c.Query("run")
		*run = &val
	}

	*strideRG = c.QueryInt("stride_rg", 0)
	*strideWind = c.QueryInt("stride_wind", 0)

	return validate.Struct(v)
}

// gridQuery holds query parameters for the dense-grid endpoints.
type gridQuery struct {
	Lake  glofs.Lake
	Time  string `validate:"required"`
	BBox  glofs.BBox
	Units string
}

func (q *gridQuery) bind(c *fiber.Ctx) error {
	lake := glofs.Lake(c.Query("lake"))
	if !lake.Valid() {
		return errors.New("lake must be one of leofs, lmhofs, loofs, lsofs")
	}
	q.Lake = lake

	q.Time = c.Query("time")
	if q.Time == "" {
		return errors.New("time query parameter is required")
	}
	if _, err := time.Parse(time.RFC3339, q.Time); err != nil {
		return errors.New("time must be RFC3339")
	}

	if bboxStr := c.Query("bbox"); bboxStr != "" {
		b, err := glofs.ParseBBox(bboxStr)
		if err != nil {
			return err
		}
		q.BBox = b
	} else {
		q.BBox = lake.Extent()
	}

	q.Units = c.Query("units")
	return validate.Struct(q)
}

// createBuoyRequest is the POST /buoys body.
type createBuoyRequest struct {
	Name   string      `json:"name" validate:"required"`
	Lake   glofs.Lake  `json:"lake" validate:"required"`
	Lat    float64     `json:"lat" validate:"gte=-90,lte=90"`
	Lon    float64     `json:"lon" validate:"gte=-180,lte=180"`
	Status buoy.Status `json:"status"`
}

type updateStatusRequest struct {
	Status buoy.Status `json:"status" validate:"required"`
}

func registerBuoyRoutes(v1 fiber.Router, buoys *buoy.Store) {
	v1.Get("/buoys", func(c *fiber.Ctx) error {
		return c.JSON(buoys.List())
	})

	v1.Post("/buoys", func(c *fiber.Ctx) error {
		var req createBuoyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !req.Lake.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown lake code "+strconv.Quote(string(req.Lake)))
		}
		if req.Status != "" && !req.Status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown buoy status "+strconv.Quote(string(req.Status)))
		}

		created := buoys.Create(buoy.Buoy{
			Name:   req.Name,
			Lake:   req.Lake,
			Lat:    req.Lat,
			Lon:    req.Lon,
			Status: req.Status,
		})
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	v1.Get("/buoys/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid buoy id")
		}
		b, err := buoys.Get(id)
		if err != nil {
			return buoyError(err)
		}
		return c.JSON(b)
	})

	v1.Put("/buoys/:id/status", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid buoy id")
		}
		var req updateStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		b, err := buoys.UpdateStatus(id, req.Status)
		if err != nil {
			return buoyError(err)
		}
		return c.JSON(b)
	})

	v1.Delete("/buoys/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid buoy id")
		}
		if err := buoys.Delete(id); err != nil {
			return buoyError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func buoyError(err error) error {
	var transition *buoy.TransitionError
	switch {
	case errors.Is(err, buoy.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &transition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
