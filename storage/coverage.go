package storage

import (
	"sort"

	"cloud.google.com/go/civil"

	"github.com/sig-0/fxcross/calendar"
	"github.com/sig-0/fxcross/storage/types"
)

// FilterComplete groups the observations of [from, to] by currency and keeps only
// the currencies with an observation on every business day of the range.
// A currency without a single stored observation in the range is never complete,
// even when every weekday of the range is marked as non-trading.
//
// Observations on known non-trading days are returned with their currency,
// but they do not count toward coverage
func FilterComplete(
	currencies []types.Currency,
	from, to civil.Date,
	nonTrading []civil.Date,
	observations []*types.Observation,
) map[types.Currency][]*types.Observation {
	var (
		marked   = calendar.DateSet(nonTrading)
		required = calendar.BusinessDays(from, to, marked)

		wanted  = make(map[types.Currency]struct{}, len(currencies))
		grouped = make(map[types.Currency][]*types.Observation, len(currencies))
		covered = make(map[types.Currency]map[civil.Date]struct{}, len(currencies))
	)

	for _, c := range currencies {
		wanted[c] = struct{}{}
	}

	for _, o := range observations {
		if _, ok := wanted[o.Currency]; !ok {
			continue
		}

		if o.Date.Before(from) || o.Date.After(to) {
			continue
		}

		grouped[o.Currency] = append(grouped[o.Currency], o)

		if !calendar.IsBusinessDay(o.Date, marked) {
			continue
		}

		if covered[o.Currency] == nil {
			covered[o.Currency] = make(map[civil.Date]struct{})
		}

		covered[o.Currency][o.Date] = struct{}{}
	}

	out := make(map[types.Currency][]*types.Observation, len(grouped))

	for c, obs := range grouped {
		if len(covered[c]) != required {
			continue
		}

		sort.Slice(obs, func(i, j int) bool {
			return obs[i].Date.Before(obs[j].Date)
		})

		out[c] = obs
	}

	return out
}
