// Package model holds the response shapes of the housing data API.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnavailableSentinel replaces the establishment count when the business
// lookup failed.
const UnavailableSentinel = "unavailable"

// EstablishmentCount is a business establishment count that may be missing.
// It serializes as a JSON integer, or as "unavailable".
type EstablishmentCount struct {
	Count     int
	Available bool
}

// Establishments returns an available count.
func Establishments(n int) EstablishmentCount {
	return EstablishmentCount{Count: n, Available: true}
}

// EstablishmentsUnavailable returns the missing count.
func EstablishmentsUnavailable() EstablishmentCount {
	return EstablishmentCount{}
}

func (e EstablishmentCount) MarshalJSON() ([]byte, error) {
	if !e.Available {
		return json.Marshal(UnavailableSentinel)
	}
	return json.Marshal(e.Count)
}

func (e *EstablishmentCount) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != UnavailableSentinel {
			return fmt.Errorf("invalid establishment count %q", s)
		}
		*e = EstablishmentsUnavailable()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*e = Establishments(n)
	return nil
}

// HousingData is the merged housing and business record for one ZIP code.
type HousingData struct {
	TotalUnits                int                `json:"total_units"`
	OwnerOccupiedUnits        int                `json:"owner_occupied_units"`
	RenterOccupiedUnits       int                `json:"renter_occupied_units"`
	SingleFamilyDetachedUnits int                `json:"single_family_detached_units"`
	ApartmentsUnits           int                `json:"apartments_units"`
	BusinessEstablishments    EstablishmentCount `json:"business_establishments"`
	PercentOwnerOccupied      float64            `json:"percent_owner_occupied"`
}

// ZipQueryResult is one entry of the response. Exactly one of HousingData
// and Error is set; a nil embedded *HousingData contributes no JSON fields.
type ZipQueryResult struct {
	ZipCode string `json:"zip_code"`
	*HousingData
	Error string `json:"error,omitempty"`
}

// NewHousingResult builds a successful entry.
func NewHousingResult(zipCode string, data HousingData) ZipQueryResult {
	return ZipQueryResult{ZipCode: zipCode, HousingData: &data}
}

// NewErrorResult builds a failed entry.
func NewErrorResult(zipCode, message string) ZipQueryResult {
	return ZipQueryResult{ZipCode: zipCode, Error: message}
}

// Failed reports whether the entry is an error stub.
func (r ZipQueryResult) Failed() bool {
	return r.HousingData == nil
}

// HousingDataResponse is the body of GET /api/housing-data/.
type HousingDataResponse struct {
	Results []ZipQueryResult `json:"results"`
}

// OwnerOccupiedPercent returns owner/total*100 rounded to two decimals, or
// 0 when total is not positive.
//
// Rounding is decided on the exact binary value, with exact ties going to
// the even digit: 1/32 gives 3.12, not 3.13.
func OwnerOccupiedPercent(ownerOccupied, totalUnits int) float64 {
	if totalUnits <= 0 {
		return 0
	}
	pct := float64(ownerOccupied) / float64(totalUnits) * 100
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 2, 64), 64)
	return rounded
}
