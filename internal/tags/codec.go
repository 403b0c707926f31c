package tags

import (
	"strconv"
	"strings"
)

// DefaultSeparator joins repeated frames of a multi-valued field.
const DefaultSeparator = "; "

// Decode maps comment frames onto a Record. Recognised single-valued keys
// take the last value seen, multi-valued keys are joined with sep in file
// order, and every other frame lands verbatim in ExtraTags.
func Decode(frames []Frame, sep string) Record {
	var rec Record
	multi := make(map[int][]string)

	for _, f := range frames {
		i, ok := lookupField(f.Key)
		if !ok {
			rec.ExtraTags = append(rec.ExtraTags, ExtraTag{Key: f.Key, Value: f.Value})
			continue
		}
		spec := fieldTable[i]
		if spec.multi {
			multi[i] = append(multi[i], f.Value)
			continue
		}
		*spec.ptr(&rec) = f.Value
	}

	for i, values := range multi {
		*fieldTable[i].ptr(&rec) = strings.Join(values, sep)
	}
	return rec
}

// DecodeStore is Decode over the frames of store.
func DecodeStore(store FrameStore, sep string) Record {
	return Decode(store.Frames(), sep)
}

// Encode writes rec into store. Empty fields remove their frames, numeric
// fields that do not parse are stored as "0", and multi-valued fields are
// written as a single frame holding the joined display string. Extra tags
// are only rewritten when their stored values differ.
func Encode(store FrameStore, rec Record) {
	for _, spec := range fieldTable {
		value := *spec.ptr(&rec)
		if value == "" {
			store.Replace(spec.keys, nil)
			continue
		}
		if spec.numeric {
			value = numericText(value)
		}
		store.Replace(spec.keys, []string{value})
	}
	encodeExtras(store, rec.ExtraTags)
}

func encodeExtras(store FrameStore, extras []ExtraTag) {
	var want []ExtraTag
	for _, e := range extras {
		if !IsKnownKey(e.Key) {
			want = append(want, e)
		}
	}
	if equalExtras(unknownFrames(store), want) {
		return
	}

	var order []string
	grouped := make(map[string][]string)
	spelling := make(map[string]string)
	for _, e := range want {
		k := strings.ToUpper(e.Key)
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
			spelling[k] = e.Key
		}
		grouped[k] = append(grouped[k], e.Value)
	}

	for _, k := range order {
		if equalValues(store.Values(k), grouped[k]) {
			continue
		}
		store.Replace([]string{spelling[k]}, grouped[k])
	}
	// Unknown frames the record no longer carries were removed by the caller.
	for _, f := range unknownFrames(store) {
		if _, keep := grouped[strings.ToUpper(f.Key)]; !keep {
			store.Replace([]string{f.Key}, nil)
		}
	}

	// Per-key replacement cannot interleave keys that were absent before, so
	// fall back to rewriting every unknown frame in record order.
	if !equalExtras(unknownFrames(store), want) {
		for _, k := range order {
			store.Replace([]string{spelling[k]}, nil)
		}
		for _, e := range want {
			appendFrame(store, e)
		}
	}
}

func appendFrame(store FrameStore, e ExtraTag) {
	if c, ok := store.(*Comments); ok {
		c.Append(e.Key, e.Value)
		return
	}
	existing := store.Values(e.Key)
	store.Replace([]string{e.Key}, append(existing, e.Value))
}

func unknownFrames(store FrameStore) []ExtraTag {
	var out []ExtraTag
	for _, f := range store.Frames() {
		if !IsKnownKey(f.Key) {
			out = append(out, ExtraTag{Key: f.Key, Value: f.Value})
		}
	}
	return out
}

func equalExtras(a, b []ExtraTag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// numericText returns v when it reads as a number (optionally "n/m"),
// otherwise "0".
func numericText(v string) string {
	t := strings.TrimSpace(v)
	head, tail, hasSlash := strings.Cut(t, "/")
	if _, err := strconv.Atoi(head); err != nil {
		return "0"
	}
	if hasSlash {
		if _, err := strconv.Atoi(tail); err != nil {
			return "0"
		}
	}
	return v
}
