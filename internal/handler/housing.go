package handler

import (
	"math"
	"strconv"
	"strings"

	"github.com/hometag/housing-api/internal/model"
	"github.com/hometag/housing-api/internal/server"
	"github.com/hometag/housing-api/internal/service"
	"github.com/hometag/housing-api/internal/validation"
	"github.com/labstack/echo/v4"
)

var requestValidator = validation.New()

// HousingDataRequest holds the query parameters of GET /api/housing-data/.
//
// zip_codes is repeated: ?zip_codes=94103&zip_codes=10001. The minimum is
// bound as text and parsed in Validate, so any float spelling is accepted
// and a bad value is reported as a field error rather than a bind failure.
type HousingDataRequest struct {
	ZipCodes         []string `query:"zip_codes" validate:"required,min=1"`
	MinOwnerOccupied string   `query:"min_owner_occupied"`

	minOwnerOccupied *float64
}

func (r *HousingDataRequest) Validate() error {
	for i, zip := range r.ZipCodes {
		r.ZipCodes[i] = strings.TrimSpace(zip)
	}
	r.MinOwnerOccupied = strings.TrimSpace(r.MinOwnerOccupied)

	if err := requestValidator.Struct(r); err != nil {
		return err
	}

	r.minOwnerOccupied = nil
	if r.MinOwnerOccupied == "" {
		return nil
	}

	v, err := strconv.ParseFloat(r.MinOwnerOccupied, 64)
	if err != nil {
		return validation.CustomValidationErrors{{Field: "min_owner_occupied", Message: "must be a number"}}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return validation.CustomValidationErrors{{Field: "min_owner_occupied", Message: "must be a finite number"}}
	}

	r.minOwnerOccupied = &v
	return nil
}

type HousingHandler struct {
	Handler
	housing *service.HousingService
}

func NewHousingHandler(s *server.Server, housing *service.HousingService) *HousingHandler {
	return &HousingHandler{
		Handler: NewHandler(s),
		housing: housing,
	}
}

// GetHousingData returns one entry per requested ZIP code, in request
// order, minus those below min_owner_occupied. Lookup failures are
// reported per entry; the status is 200 whenever the parameters are valid.
func (h *HousingHandler) GetHousingData(c echo.Context, req *HousingDataRequest) (*model.HousingDataResponse, error) {
	results := h.housing.FetchHousingAndBusiness(c.Request().Context(), req.ZipCodes, req.minOwnerOccupied)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	h.recordLookup(len(req.ZipCodes), len(results), failed)

	return &model.HousingDataResponse{Results: results}, nil
}

// recordLookup reports request-level lookup counts on the New Relic
// application when it is enabled.
func (h *HousingHandler) recordLookup(requested, returned, failed int) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	app.RecordCustomEvent("HousingLookup", map[string]interface{}{
		"zip_codes_requested": requested,
		"results_returned":    returned,
		"results_failed":      failed,
	})
}
