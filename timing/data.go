package timing

import (
	"errors"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrNoValue is returned by TestGetValue when no data has been recorded
// for the requested ping.
var ErrNoValue = errors.New("no recorded value")

// DistributionData is the aggregated result of a timing-distribution
// metric: the total of all recorded durations, how many were recorded, and
// a bucketed histogram. Sum is expressed in the metric's TimeUnit. Bucket
// boundaries are chosen by the engine and are not part of this contract.
type DistributionData struct {
	// Sum is the total of all recorded durations, in the metric's unit.
	Sum int64

	// Count is the number of recorded durations.
	Count int64

	// Values maps each bucket's lower bound to its observation count.
	// Only buckets with at least one observation are present.
	Values map[int64]int64
}

// parseDistribution decodes the engine's JSON test payload. Malformed
// histogram keys are skipped; sum and count are authoritative.
func parseDistribution(payload string) DistributionData {
	data := DistributionData{
		Sum:    gjson.Get(payload, "sum").Int(),
		Count:  gjson.Get(payload, "count").Int(),
		Values: make(map[int64]int64),
	}

	gjson.Get(payload, "histogram").ForEach(func(key, value gjson.Result) bool {
		bound, err := strconv.ParseInt(key.String(), 10, 64)
		if err == nil {
			data.Values[bound] = value.Int()
		}
		return true
	})

	return data
}
