package histogram

// DefaultMaxBuckets bounds the bucket count when none is requested
const DefaultMaxBuckets = 100

// defaultBucketSeconds is used when the time span is empty
const defaultBucketSeconds = 300

// allowedBucketSizesSec matches the frontend bucket size options
var allowedBucketSizesSec = []int{
	1,                      // 1 second
	2,                      // 2 seconds
	5,                      // 5 seconds
	10,                     // 10 seconds
	30,                     // 30 seconds
	60,                     // 1 minute
	5 * 60,                 // 5 minutes
	10 * 60,                // 10 minutes
	30 * 60,                // 30 minutes
	60 * 60,                // 1 hour
	2 * 60 * 60,            // 2 hours
	3 * 60 * 60,            // 3 hours
	6 * 60 * 60,            // 6 hours
	12 * 60 * 60,           // 12 hours
	24 * 60 * 60,           // 1 day
	2 * 24 * 60 * 60,       // 2 days
	5 * 24 * 60 * 60,       // 5 days
	10 * 24 * 60 * 60,      // 10 days
	30 * 24 * 60 * 60,      // 1 month (30 days)
	6 * 30 * 24 * 60 * 60,  // 6 months
	12 * 30 * 24 * 60 * 60, // 1 year
}

// ChooseBucketSizeForSpan selects the smallest allowed bucket size that
// covers spanSec in at most maxBuckets buckets.
func ChooseBucketSizeForSpan(spanSec int64, maxBuckets int) int {
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxBuckets
	}

	span := max(spanSec, 1)
	for _, s := range allowedBucketSizesSec {
		buckets := (span + int64(s) - 1) / int64(s)
		if buckets <= int64(maxBuckets) {
			return s
		}
	}

	// If even the largest bucket size gives too many buckets, use it anyway
	return allowedBucketSizesSec[len(allowedBucketSizesSec)-1]
}

// BucketSizeForRange picks a bucket size for the millisecond range
// [startMs, endMs]. An empty range gets five minute buckets.
func BucketSizeForRange(startMs, endMs int64, maxBuckets int) int {
	if endMs <= startMs {
		return defaultBucketSeconds
	}
	return ChooseBucketSizeForSpan((endMs-startMs)/1000, maxBuckets)
}
