package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hometag/housing-api/internal/lib/census"
	"github.com/hometag/housing-api/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CensusClient is the subset of *census.Client the housing service needs.
type CensusClient interface {
	HousingStats(ctx context.Context, zipCode string) (*census.HousingStats, error)
	EstablishmentCount(ctx context.Context, zipCode string) (int, error)
}

// HousingService merges ACS housing counts with CBP establishment counts
// per ZIP code.
type HousingService struct {
	census      CensusClient
	logger      *zerolog.Logger
	concurrency int
}

// NewHousingService builds the service. concurrency below 1 is treated as 1.
func NewHousingService(client CensusClient, logger *zerolog.Logger, concurrency int) *HousingService {
	return &HousingService{
		census:      client,
		logger:      logger,
		concurrency: max(concurrency, 1),
	}
}

// lookup is the outcome of one ZIP code: a result, or nothing when the
// owner-occupied filter excluded it.
type lookup struct {
	result model.ZipQueryResult
	keep   bool
}

// FetchHousingAndBusiness looks up every ZIP code and returns the merged
// records in input order.
//
// A failure for one ZIP code becomes an error entry for that code and never
// stops the others. ZIP codes whose owner-occupied percentage is below
// minOwnerOccupied are left out entirely. The returned slice is never nil.
//
// With concurrency 1 the codes are looked up strictly one after another.
// Higher values fan out, but every lookup writes only its own slot, so the
// output order is the input order either way.
func (s *HousingService) FetchHousingAndBusiness(ctx context.Context, zipCodes []string, minOwnerOccupied *float64) []model.ZipQueryResult {
	slots := make([]lookup, len(zipCodes))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, zipCode := range zipCodes {
		i, zipCode := i, zipCode
		g.Go(func() error {
			slots[i] = s.lookupZip(ctx, zipCode, minOwnerOccupied)
			return nil
		})
	}
	// lookupZip never returns an error to the group.
	_ = g.Wait()

	results := make([]model.ZipQueryResult, 0, len(zipCodes))
	for _, slot := range slots {
		if slot.keep {
			results = append(results, slot.result)
		}
	}

	return results
}

// lookupZip runs the fixed sequence for one ZIP code: housing, percentage,
// establishments, filter.
func (s *HousingService) lookupZip(ctx context.Context, zipCode string, minOwnerOccupied *float64) (out lookup) {
	base := s.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = l
	}
	logger := base.With().Str("zip_code", zipCode).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("housing lookup panicked")
			out = lookup{result: model.NewErrorResult(zipCode, fmt.Sprintf("internal error: %v", r)), keep: true}
		}
	}()

	stats, err := s.census.HousingStats(ctx, zipCode)
	if err != nil {
		logger.Warn().Err(err).Msg("housing lookup failed")
		return lookup{result: model.NewErrorResult(zipCode, housingErrorMessage(err)), keep: true}
	}

	pct := model.OwnerOccupiedPercent(stats.OwnerOccupiedUnits, stats.TotalUnits)

	establishments := model.EstablishmentsUnavailable()
	if n, err := s.census.EstablishmentCount(ctx, zipCode); err != nil {
		logger.Warn().Err(err).Msg("establishment lookup failed, marking unavailable")
	} else {
		establishments = model.Establishments(n)
	}

	if minOwnerOccupied != nil && pct < *minOwnerOccupied {
		logger.Debug().
			Float64("percent_owner_occupied", pct).
			Float64("min_owner_occupied", *minOwnerOccupied).
			Msg("excluded by owner-occupied filter")
		return lookup{}
	}

	return lookup{
		result: model.NewHousingResult(zipCode, model.HousingData{
			TotalUnits:                stats.TotalUnits,
			OwnerOccupiedUnits:        stats.OwnerOccupiedUnits,
			RenterOccupiedUnits:       stats.RenterOccupiedUnits,
			SingleFamilyDetachedUnits: stats.SingleFamilyDetachedUnits,
			ApartmentsUnits:           stats.ApartmentsUnits,
			BusinessEstablishments:    establishments,
			PercentOwnerOccupied:      pct,
		}),
		keep: true,
	}
}

// housingErrorMessage is the text of an error entry.
func housingErrorMessage(err error) string {
	if errors.Is(err, census.ErrNoData) {
		return census.ErrNoData.Error()
	}
	return err.Error()
}
