package histogram

// Bucket is one time bucket of call volume
type Bucket struct {
	// Start epoch milliseconds of the bucket start
	Start  int64 `json:"start"`
	Count  int   `json:"count"`
	Errors int   `json:"errors"`
}

// Response is returned by Build
type Response struct {
	Buckets       []Bucket `json:"buckets"`
	MinTs         int64    `json:"minTs"`
	MaxTs         int64    `json:"maxTs"`
	BucketSeconds int      `json:"bucketSeconds"`
	Version       string   `json:"version,omitempty"` // table_id:version_number
}

// ReadyEvent is emitted when a table histogram has been rebuilt
type ReadyEvent struct {
	TableID       string   `json:"tableId"`
	Version       string   `json:"version"`
	Buckets       []Bucket `json:"buckets"`
	MinTs         int64    `json:"minTs"`
	MaxTs         int64    `json:"maxTs"`
	BucketSeconds int      `json:"bucketSeconds"`
	Error         string   `json:"error,omitempty"`
}
