// Package patch merges freshly extracted values into a form record.
package patch

import (
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tbxark/formfiller/types"
)

// recordAPI keeps numbers as json.Number so accepted integers survive the round trip.
var recordAPI = sonic.Config{UseNumber: true}.Froze()

// Merge applies update over record as an RFC 7386 merge patch: keys in update overwrite
// keys in record, everything else is kept. Neither input is modified.
func Merge(record, update types.Record) (types.Record, error) {
	if len(update) == 0 {
		return record.Clone(), nil
	}
	docJSON, err := sonic.Marshal(record.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	patchJSON, err := sonic.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal update: %w", err)
	}
	mergedJSON, err := jsonpatch.MergePatch(docJSON, patchJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to apply merge patch: %w", err)
	}
	var merged types.Record
	if err := recordAPI.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merged record: %w", err)
	}
	if merged == nil {
		merged = types.Record{}
	}
	return merged, nil
}

// Changed lists, sorted, the top-level keys whose value differs between before and after.
func Changed(before, after types.Record) ([]string, error) {
	beforeJSON, err := sonic.Marshal(before.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	afterJSON, err := sonic.Marshal(after.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	diffJSON, err := jsonpatch.CreateMergePatch(beforeJSON, afterJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to diff records: %w", err)
	}
	var diff map[string]any
	if err := sonic.Unmarshal(diffJSON, &diff); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diff: %w", err)
	}
	keys := make([]string, 0, len(diff))
	for k := range diff {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Unknown lists, sorted, the keys of update that are not in allowed.
func Unknown(update types.Record, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	var out []string
	for k := range update {
		if _, ok := set[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
