package ecb

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/sig-0/fxcross/crossrate"
	"github.com/sig-0/fxcross/storage/types"
)

const (
	// DefaultBaseURL is the ECB data portal API root
	DefaultBaseURL = "https://data-api.ecb.europa.eu"

	// csvHeader is the exact header of a daily EXR CSV response
	csvHeader = "KEY,FREQ,CURRENCY,CURRENCY_DENOM,EXR_TYPE,EXR_SUFFIX,TIME_PERIOD,OBS_VALUE"

	periodLayout = "2006-01-02"
)

// Column indexes of a daily EXR CSV record
const (
	colCurrency = 2
	colPeriod   = 6
	colValue    = 7
	colCount    = 8
)

var errInvalidRate = errors.New("invalid rate")

// Source fetches daily EUR reference rates from the ECB statistical data warehouse
type Source struct {
	client  *http.Client
	baseURL string
}

// NewSource creates a new instance of the ECB rate source
func NewSource(baseURL string, timeout time.Duration) *Source {
	tr := http.DefaultTransport.(*http.Transport).Clone()

	return &Source{
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Fetch fetches the daily reference rates of the given currencies for [from, to],
// using a single request
func (s *Source) Fetch(
	ctx context.Context,
	currencies []types.Currency,
	from, to civil.Date,
) ([]*types.Observation, error) {
	if len(currencies) == 0 {
		return nil, nil
	}

	// Prepare the request
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		s.queryURL(currencies, from, to),
		http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	req.Header.Set("Accept", "text/csv")

	// Execute the request
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w, unable to execute GET request: %w", crossrate.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	// The ECB answers 404 when the query matches no observations
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"%w, invalid status code received: %d",
			crossrate.ErrSourceUnavailable,
			resp.StatusCode,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w, unable to read response body: %w", crossrate.ErrSourceUnavailable, err)
	}

	return parseObservations(body)
}

// queryURL builds the EXR dataflow query for the given currencies and range
func (s *Source) queryURL(currencies []types.Currency, from, to civil.Date) string {
	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		codes = append(codes, c.String())
	}

	query := url.Values{}
	query.Set("startPeriod", from.In(time.UTC).Format(periodLayout))
	query.Set("endPeriod", to.In(time.UTC).Format(periodLayout))
	query.Set("detail", "dataonly")

	return fmt.Sprintf(
		"%s/service/data/EXR/D.%s.EUR.SP00.A?%s",
		s.baseURL,
		strings.Join(codes, "+"),
		query.Encode(),
	)
}

// parseObservations parses a daily EXR CSV body.
// A body with an unexpected header yields no observations,
// and records with a missing currency, period or value are skipped
func parseObservations(body []byte) ([]*types.Observation, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w, unable to read CSV header: %w", crossrate.ErrMalformedResponse, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	if strings.Join(header, ",") != csvHeader {
		return nil, nil
	}

	observations := make([]*types.Observation, 0)

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w, unable to read CSV record: %w", crossrate.ErrMalformedResponse, err)
		}

		if len(record) < colCount {
			continue
		}

		var (
			currency = strings.TrimSpace(record[colCurrency])
			period   = strings.TrimSpace(record[colPeriod])
			value    = strings.TrimSpace(record[colValue])
		)

		if currency == "" || period == "" || value == "" {
			continue
		}

		date, err := civil.ParseDate(period)
		if err != nil {
			return nil, fmt.Errorf("%w, invalid period %q: %w", crossrate.ErrMalformedResponse, period, err)
		}

		rate, err := parseRate(value)
		if err != nil {
			return nil, fmt.Errorf("%w, invalid value %q: %w", crossrate.ErrMalformedResponse, value, err)
		}

		observations = append(observations, &types.Observation{
			Currency: types.Currency(currency),
			Date:     date,
			Rate:     rate,
		})
	}

	return observations, nil
}

// parseRate parses an observation value, accepting a comma decimal separator
func parseRate(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, err
	}

	if !v.IsPositive() {
		return decimal.Zero, errInvalidRate
	}

	return v, nil
}
