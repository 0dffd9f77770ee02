package query

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/minio/highwayhash"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"observatory/app/values"
)

// fingerprintKey is the fixed HighwayHash key for row-set fingerprints
var fingerprintKey = []byte("observatory row fingerprint key!")

var canonicalJSON = &ojg.Options{Sort: true}

// Fingerprint returns a stable identity of a row set: a HighwayHash-256 over
// the canonical JSON encoding of every row in order.
func Fingerprint(rows []Row) string {
	h, err := highwayhash.New(fingerprintKey)
	if err != nil {
		// The key length is fixed at 32 bytes
		panic(err)
	}

	for _, row := range rows {
		b, err := oj.Marshal(map[string]any(row), canonicalJSON)
		if err != nil {
			b = fallbackEncoding(row)
		}
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%d-%s", len(rows), hex.EncodeToString(h.Sum(nil)))
}

// fallbackEncoding encodes a row with canonical value keys when it holds
// values the JSON writer rejects
func fallbackEncoding(row Row) []byte {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []byte
	for _, k := range keys {
		out = strconv.AppendQuote(out, k)
		out = append(out, '=')
		out = strconv.AppendQuote(out, values.Key(row[k]))
		out = append(out, ';')
	}
	return out
}
