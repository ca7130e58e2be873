package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/sig-0/fxcross/storage"
	pgStorage "github.com/sig-0/fxcross/storage/sql/gen"
	"github.com/sig-0/fxcross/storage/types"
)

type Storage struct {
	queries *pgStorage.Queries
}

func NewStorage(queries *pgStorage.Queries) *Storage {
	return &Storage{
		queries: queries,
	}
}

func (s *Storage) CompleteObservations(
	ctx context.Context,
	currencies []types.Currency,
	from, to civil.Date,
) (map[types.Currency][]*types.Observation, error) {
	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		codes = append(codes, c.String())
	}

	rows, err := s.queries.ObservationsInRange(ctx, pgStorage.ObservationsInRangeParams{
		Currencies: codes,
		FromDate:   dateToPG(from),
		ToDate:     dateToPG(to),
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("unable to fetch observations: %w", err)
	}

	marked, err := s.queries.NonTradingDaysInRange(ctx, pgStorage.NonTradingDaysInRangeParams{
		FromDate: dateToPG(from),
		ToDate:   dateToPG(to),
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("unable to fetch non-trading days: %w", err)
	}

	observations := make([]*types.Observation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, parseObservation(row))
	}

	nonTrading := make([]civil.Date, 0, len(marked))
	for _, d := range marked {
		nonTrading = append(nonTrading, pgToDate(d))
	}

	return storage.FilterComplete(currencies, from, to, nonTrading, observations), nil
}

func (s *Storage) SaveObservations(ctx context.Context, observations []*types.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	arg := pgStorage.SaveObservationsParams{
		Currencies: make([]string, 0, len(observations)),
		Dates:      make([]pgtype.Date, 0, len(observations)),
		Rates:      make([]pgtype.Numeric, 0, len(observations)),
	}

	for _, o := range observations {
		arg.Currencies = append(arg.Currencies, o.Currency.String())
		arg.Dates = append(arg.Dates, dateToPG(o.Date))
		arg.Rates = append(arg.Rates, decimalToNumeric(o.Rate))
	}

	if err := s.queries.SaveObservations(ctx, arg); err != nil {
		return fmt.Errorf("unable to save observations: %w", err)
	}

	return nil
}

func (s *Storage) SaveNonTradingDays(ctx context.Context, dates []civil.Date) error {
	if len(dates) == 0 {
		return nil
	}

	arg := make([]pgtype.Date, 0, len(dates))
	for _, d := range dates {
		arg = append(arg, dateToPG(d))
	}

	if err := s.queries.SaveNonTradingDays(ctx, arg); err != nil {
		return fmt.Errorf("unable to save non-trading days: %w", err)
	}

	return nil
}

func (s *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	results, err := s.queries.ListCurrencies(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch currencies: %w", err)
	}

	if len(results) == 0 {
		return nil, nil //nolint:nilnil // valid case
	}

	out := make([]types.Currency, 0, len(results))

	for _, code := range results {
		out = append(out, types.Currency(code))
	}

	return out, nil
}

func (s *Storage) SaveAPIKey(ctx context.Context, k *types.APIKey) error {
	arg := pgStorage.SaveAPIKeyParams{
		ID:        uuidToPG(k.ID),
		KeyHash:   k.Hash,
		CreatedAt: timeToTimestampz(k.CreatedAt),
	}

	if err := s.queries.SaveAPIKey(ctx, arg); err != nil {
		return fmt.Errorf("unable to save API key: %w", err)
	}

	return nil
}

func (s *Storage) DeleteAPIKey(ctx context.Context, hash string) (bool, error) {
	affected, err := s.queries.DeleteAPIKey(ctx, hash)
	if err != nil {
		return false, fmt.Errorf("unable to delete API key: %w", err)
	}

	return affected > 0, nil
}

func (s *Storage) HasAPIKey(ctx context.Context, hash string) (bool, error) {
	exists, err := s.queries.APIKeyExists(ctx, hash)
	if err != nil {
		return false, fmt.Errorf("unable to look up API key: %w", err)
	}

	return exists, nil
}

// parseObservation parses the postgres observation to the common Go type
func parseObservation(row pgStorage.Observation) *types.Observation {
	return &types.Observation{
		Currency: types.Currency(row.Currency),
		Date:     pgToDate(row.Date),
		Rate:     numericToDecimal(row.Rate),
	}
}

// decimalToNumeric converts the decimal value to postgres numeric
func decimalToNumeric(value decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   value.Coefficient(),
		Exp:   value.Exponent(),
		Valid: true,
	}
}

// numericToDecimal converts the postgres value to decimal
func numericToDecimal(value pgtype.Numeric) decimal.Decimal {
	if !value.Valid || value.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(value.Int, value.Exp)
}

// dateToPG converts the calendar date to a postgres date
func dateToPG(d civil.Date) pgtype.Date {
	return pgtype.Date{
		Time:  d.In(time.UTC),
		Valid: true,
	}
}

// pgToDate converts the postgres date to a calendar date
func pgToDate(d pgtype.Date) civil.Date {
	if !d.Valid {
		return civil.Date{}
	}

	return civil.DateOf(d.Time)
}

// uuidToPG converts the uuid to a postgres uuid
func uuidToPG(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{
		Bytes: id,
		Valid: true,
	}
}

// timeToTimestampz converts the time value to postgres timestamp
func timeToTimestampz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t.UTC(),
		Valid: true,
	}
}
