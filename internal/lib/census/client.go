// Package census is a client for the U.S. Census Bureau data API.
//
// Every dataset shares one calling convention:
//
//	GET {base}/{year}/{dataset}?get=<fields>&for=<geography>&key=<key>
//
// and answers with a JSON table whose first row is a header and whose
// second row holds the values. The client issues exactly one HTTP request
// per call with a fixed timeout and never retries.
package census

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hometag/housing-api/internal/config"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	// DatasetACS5 is the American Community Survey 5-year estimates.
	DatasetACS5 = "acs/acs5"

	// DatasetCBP is County Business Patterns, which also publishes ZCTA totals.
	DatasetCBP = "cbp"

	// ZCTAGeography is the geography name for ZIP code tabulation areas.
	ZCTAGeography = "zip code tabulation area"
)

// ACS5 variables, in the column order HousingStats expects them.
const (
	VarTotalUnits           = "B25001_001E" // housing units
	VarOwnerOccupied        = "B25003_002E" // tenure: owner occupied
	VarRenterOccupied       = "B25003_003E" // tenure: renter occupied
	VarSingleFamilyDetached = "B25024_002E" // units in structure: 1, detached
	VarApartments           = "B25032_010E" // tenure by units in structure: apartments

	VarEstablishments = "ESTAB"
)

var housingFields = []string{
	VarTotalUnits,
	VarOwnerOccupied,
	VarRenterOccupied,
	VarSingleFamilyDetached,
	VarApartments,
}

// bodyPreviewLen caps how much of a response body goes into debug logs.
const bodyPreviewLen = 200

// HousingStats are the raw ACS housing counts for one ZIP code. Values the
// API does not report are 0.
type HousingStats struct {
	TotalUnits                int
	OwnerOccupiedUnits        int
	RenterOccupiedUnits       int
	SingleFamilyDetachedUnits int
	ApartmentsUnits           int
}

// Client calls the Census data API. It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	apiKey string
	year   int
	slow   time.Duration
	logger *zerolog.Logger
}

// NewClient builds a Client from config.
//
// Outbound requests go through newrelic.NewRoundTripper, which records an
// external segment whenever the request context carries a transaction and
// is a plain pass-through otherwise.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Census.BaseURL, "/")).
		SetTimeout(cfg.Census.Timeout).
		SetTransport(newrelic.NewRoundTripper(http.DefaultTransport)).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", config.ServiceName).
		SetLogger(restyLogger{logger: logger})

	return &Client{
		http:   httpClient,
		apiKey: cfg.Census.APIKey,
		year:   cfg.Census.Year,
		slow:   cfg.Observability.Logging.SlowUpstreamThreshold,
		logger: logger,
	}
}

// HousingStats fetches the five ACS housing counts for a ZIP code.
func (c *Client) HousingStats(ctx context.Context, zipCode string) (*HousingStats, error) {
	t, err := c.query(ctx, DatasetACS5, housingFields, zctaFor(zipCode))
	if err != nil {
		return nil, err
	}

	row, err := t.valueRow(len(housingFields))
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, err
		}
		return nil, &MalformedResponseError{Dataset: DatasetACS5, Err: err}
	}

	counts := make([]int, len(housingFields))
	for i, field := range housingFields {
		n, _, err := cellCount(row[i])
		if err != nil {
			return nil, &MalformedResponseError{
				Dataset: DatasetACS5,
				Err:     fmt.Errorf("%s: %w", field, err),
			}
		}
		counts[i] = n
	}

	return &HousingStats{
		TotalUnits:                counts[0],
		OwnerOccupiedUnits:        counts[1],
		RenterOccupiedUnits:       counts[2],
		SingleFamilyDetachedUnits: counts[3],
		ApartmentsUnits:           counts[4],
	}, nil
}

// EstablishmentCount fetches the number of business establishments in a
// ZIP code. A suppressed count is an error, not zero.
func (c *Client) EstablishmentCount(ctx context.Context, zipCode string) (int, error) {
	t, err := c.query(ctx, DatasetCBP, []string{VarEstablishments}, zctaFor(zipCode))
	if err != nil {
		return 0, err
	}

	row, err := t.valueRow(1)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return 0, err
		}
		return 0, &MalformedResponseError{Dataset: DatasetCBP, Err: err}
	}

	n, reported, err := cellCount(row[0])
	if err != nil {
		return 0, &MalformedResponseError{Dataset: DatasetCBP, Err: err}
	}
	if !reported {
		return 0, &MalformedResponseError{Dataset: DatasetCBP, Err: fmt.Errorf("%s not reported", VarEstablishments)}
	}

	return n, nil
}

// Ping performs the smallest useful request (state names) to check that
// the API is reachable and accepts the configured key.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.query(ctx, DatasetACS5, []string{"NAME"}, "state:*")
	if errors.Is(err, ErrNoData) {
		// Reachable and authorised; an empty table is still an answer.
		return nil
	}
	return err
}

// query performs one GET and decodes the tabular body.
func (c *Client) query(ctx context.Context, dataset string, fields []string, geography string) (table, error) {
	logger := c.loggerFor(ctx)
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"get": strings.Join(fields, ","),
			"for": geography,
			"key": c.apiKey,
		}).
		Get(fmt.Sprintf("/%d/%s", c.year, dataset))

	duration := time.Since(start)

	if err != nil {
		uerr := newUnavailableError(dataset, err)
		logger.Error().
			Err(uerr).
			Str("dataset", dataset).
			Str("geography", geography).
			Dur("duration", duration).
			Msg("census request failed")
		return nil, uerr
	}

	body := resp.Body()

	logger.Debug().
		Str("dataset", dataset).
		Str("geography", geography).
		Int("status", resp.StatusCode()).
		Dur("duration", duration).
		Str("body", preview(body)).
		Msg("census response")

	if c.slow > 0 && duration > c.slow {
		logger.Warn().
			Str("dataset", dataset).
			Str("geography", geography).
			Dur("duration", duration).
			Dur("threshold", c.slow).
			Msg("slow census request")
	}

	// The API answers an unknown geography with 204 and no body.
	if resp.StatusCode() == http.StatusNoContent || (resp.StatusCode() == http.StatusOK && len(bytes.TrimSpace(body)) == 0) {
		return nil, ErrNoData
	}

	if resp.StatusCode() != http.StatusOK {
		rerr := &RejectedError{Dataset: dataset, StatusCode: resp.StatusCode(), Body: string(body)}
		logger.Warn().
			Str("dataset", dataset).
			Str("geography", geography).
			Int("status", resp.StatusCode()).
			Str("body", preview(body)).
			Msg("census request rejected")
		return nil, rerr
	}

	t, err := decodeTable(body)
	if err != nil {
		return nil, &MalformedResponseError{Dataset: dataset, Err: err}
	}

	return t, nil
}

// loggerFor prefers the request-scoped logger attached by the HTTP
// middleware so upstream log lines carry the request id.
func (c *Client) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return c.logger
}

func zctaFor(zipCode string) string {
	return ZCTAGeography + ":" + zipCode
}

func preview(body []byte) string {
	if len(body) > bodyPreviewLen {
		return string(body[:bodyPreviewLen])
	}
	return string(body)
}

// restyLogger routes resty's internal warnings into zerolog.
type restyLogger struct {
	logger *zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Str("component", "resty").Msgf(format, v...)
}
