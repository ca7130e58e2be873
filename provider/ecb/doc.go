// Package ecb provides the European Central Bank reference rate source.
//
// # Source
//
// API: https://data-api.ecb.europa.eu/service/data/EXR/D.{codes}.EUR.SP00.A
//
// Fetches daily euro foreign exchange reference rates (EXR dataflow, daily
// frequency, spot, average) for a set of currencies in a single request.
// Currency codes are joined by '+', and the range is passed as
// startPeriod / endPeriod (yyyy-MM-dd). The response is requested as CSV:
//
//	KEY,FREQ,CURRENCY,CURRENCY_DENOM,EXR_TYPE,EXR_SUFFIX,TIME_PERIOD,OBS_VALUE
//	EXR.D.PLN.EUR.SP00.A,D,PLN,EUR,SP00,A,2020-11-16,4.4775
//
// Each record is "1 EUR = OBS_VALUE units of CURRENCY on TIME_PERIOD".
//
// Parsing rules:
//   - A header other than the one above yields no observations
//   - Records missing the currency, period or value are skipped
//   - An unparsable period or a non-positive value fails the whole fetch
//   - A comma decimal separator is accepted
//
// The ECB answers 404 when no observation matches the query, which is
// treated as an empty result. Any other non-2xx status, or a transport
// failure, is reported as crossrate.ErrSourceUnavailable.
//
// # Feed
//
// Feed wraps the source as an ingest provider that periodically fetches
// the lookback window ending today for a configured set of currencies.
package ecb
