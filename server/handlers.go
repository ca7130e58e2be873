package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"

	"github.com/sig-0/fxcross/crossrate"
	"github.com/sig-0/fxcross/provider/currencies"
	"github.com/sig-0/fxcross/storage/types"
)

const (
	pairsSeparator    = ","
	currencySeparator = "-"
)

var (
	errUnableToFetchCurrencies = errors.New("unable to fetch currencies")
	errUnableToGenerate        = errors.New("unable to generate exchange rates")
	errSourceFailure           = errors.New("rate source failure")

	errInvalidRequest = errors.New("invalid request")
	errStartInFuture  = errors.New("start_date is in the future")
	errStartAfterEnd  = errors.New("start_date is after end_date")
)

var validate = newValidator()

// exchangesRequest is the raw exchange query
type exchangesRequest struct {
	Pairs     []pairRequest `query:"pairs" validate:"required,min=1,max=50,dive"`
	StartDate string        `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string        `query:"end_date" validate:"required,datetime=2006-01-02"`
}

type pairRequest struct {
	From string `query:"from" validate:"required,currency"`
	To   string `query:"to" validate:"required,currency"`
}

// Exchanges returns the cross rates of the requested pairs for every day
// in [start_date, end_date]
func (s *Server) Exchanges(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &exchangesRequest{
		Pairs:     parsePairs(query.Get("pairs")),
		StartDate: strings.TrimSpace(query.Get("start_date")),
		EndDate:   strings.TrimSpace(query.Get("end_date")),
	}

	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Validated dates
	start, _ := civil.ParseDate(req.StartDate) //nolint:errcheck // validated
	end, _ := civil.ParseDate(req.EndDate)     //nolint:errcheck // validated

	now := s.now().UTC()

	if start.After(civil.DateOf(now)) {
		writeError(w, http.StatusNotFound, errStartInFuture)

		return
	}

	if start.After(end) {
		writeError(w, http.StatusBadRequest, errStartAfterEnd)

		return
	}

	pairs := make([]types.Pair, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		pairs = append(pairs, types.Pair{
			From: types.Currency(p.From),
			To:   types.Currency(p.To),
		})
	}

	rates, err := s.generator.Generate(r.Context(), pairs, start, end, now)
	if err != nil {
		s.logger.Error(
			"unable to generate exchange rates",
			"pairs", query.Get("pairs"),
			"start", start.String(),
			"end", end.String(),
			"err", err,
		)

		status, respErr := generateErrorStatus(err)
		writeError(w, status, respErr)

		return
	}

	writeJSON(w, http.StatusOK, newExchangeResponses(rates))
}

func (s *Server) Currencies(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListCurrencies(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch currencies",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchCurrencies,
		)

		return
	}

	resp := &CurrenciesResponse{
		Results: items,
	}

	if resp.Results == nil {
		resp.Results = []types.Currency{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// generateErrorStatus maps a generation error to the response status and error
func generateErrorStatus(err error) (int, error) {
	switch {
	case errors.Is(err, crossrate.ErrInvalidRange):
		return http.StatusBadRequest, errStartAfterEnd
	case errors.Is(err, crossrate.ErrSourceUnavailable),
		errors.Is(err, crossrate.ErrMalformedResponse):
		return http.StatusBadGateway, errSourceFailure
	default:
		return http.StatusInternalServerError, errUnableToGenerate
	}
}

// parsePairs parses the FROM-TO,FROM-TO pair list.
// Malformed pairs are kept partially filled, and rejected by validation
func parsePairs(raw string) []pairRequest {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, pairsSeparator)
	pairs := make([]pairRequest, 0, len(parts))

	for _, part := range parts {
		codes := strings.Split(strings.TrimSpace(part), currencySeparator)

		p := pairRequest{
			From: codes[0],
		}

		if len(codes) == 2 {
			p.To = codes[1]
		}

		pairs = append(pairs, p)
	}

	return pairs
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterAlias("currency", currencies.CodeRule)

	// Report the query names instead of the struct field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}

		return f.Name
	})

	return v
}

// validateRequest validates the request, reporting the first failing field
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w, %w", errInvalidRequest, err)
	}

	fe := fieldErrs[0]

	// Drop the struct name from the namespace
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	return fmt.Errorf("%w, %s failed the %q check", errInvalidRequest, field, fe.Tag())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
