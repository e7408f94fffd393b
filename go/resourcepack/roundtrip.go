package resourcepack

import (
	"encoding/json"
	"log/slog"
	"reflect"

	"github.com/nsf/jsondiff"
)

// checkRoundTrip re-encodes a decoded definition and compares it with the
// source bytes, so fields the definition types drop show up in the log.
// It reports whether the two agree.
func checkRoundTrip(logger *slog.Logger, name string, data []byte, decoded any) bool {
	var got, want any
	if err := json.Unmarshal(data, &want); err != nil {
		return false
	}
	buf, err := json.Marshal(decoded)
	if err != nil {
		logger.Warn("unable to re-encode definition", "file", name, "err", err)
		return false
	}
	json.Unmarshal(buf, &got)
	if reflect.DeepEqual(got, want) {
		return true
	}

	opts := jsondiff.DefaultConsoleOptions()
	opts.CompareNumbers = func(a, b json.Number) bool {
		av, _ := a.Float64()
		bv, _ := b.Float64()
		return av == bv
	}
	diff, str := jsondiff.Compare(data, buf, &opts)
	if diff == jsondiff.FullMatch {
		return true
	}
	logger.Warn("mismatch decoding", "file", name, "diff", diff.String(), "detail", str)
	return false
}
