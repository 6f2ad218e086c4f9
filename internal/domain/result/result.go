// Package result provides the persisted per-session result file.
//
// A result file maps fixed key names (insert_person, q1 .. q13,
// total_time_duration, total_throughput_qps, ...) to one value per run.
// A run value is either a single number or a list of numbers when the
// operation was repeated inside the run.
package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

var (
	// ErrMissingKey is returned when a key is absent from a result file.
	ErrMissingKey = errors.New("missing result key")

	// ErrEmptyKey is returned when a key exists but holds no values.
	ErrEmptyKey = errors.New("result key has no values")

	// ErrInvalidValue is returned for null run values and negative durations.
	ErrInvalidValue = errors.New("invalid result value")
)

// Value is one run's entry for a key.
type Value struct {
	Numbers []float64
	List    bool
}

// Scalar creates a single-number value.
func Scalar(v float64) Value {
	return Value{Numbers: []float64{v}}
}

// List creates a list value.
func List(vs ...float64) Value {
	out := make([]float64, len(vs))
	copy(out, vs)
	return Value{Numbers: out, List: true}
}

// MarshalJSON writes a number or an array of numbers. Whole numbers are
// written without a fractional part.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.List && len(v.Numbers) == 1 {
		return []byte(formatNumber(v.Numbers[0])), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, n := range v.Numbers {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(formatNumber(n))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a number or an array of numbers. null is rejected,
// as a value or inside a list.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: null", ErrInvalidValue)
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ptrs []*float64
		if err := json.Unmarshal(trimmed, &ptrs); err != nil {
			return fmt.Errorf("decode value list: %w", err)
		}
		ns := make([]float64, len(ptrs))
		for i, p := range ptrs {
			if p == nil {
				return fmt.Errorf("%w: null at index %d", ErrInvalidValue, i)
			}
			ns[i] = *p
		}
		v.Numbers = ns
		v.List = true
		return nil
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	v.Numbers = []float64{n}
	v.List = false
	return nil
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e18 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// RunRecord holds every key produced by one completed run.
type RunRecord struct {
	values map[string]Value
	order  []string
}

// NewRunRecord creates an empty run record.
func NewRunRecord() *RunRecord {
	return &RunRecord{values: make(map[string]Value)}
}

// Set stores a value, replacing any previous value for key.
func (r *RunRecord) Set(key string, v Value) {
	if _, ok := r.values[key]; !ok {
		r.order = append(r.order, key)
	}
	r.values[key] = v
}

// SetDurations stores nanosecond measurements. A single measurement is
// stored as a scalar.
func (r *RunRecord) SetDurations(key string, ns []int64) {
	fs := make([]float64, len(ns))
	for i, n := range ns {
		fs[i] = float64(n)
	}
	if len(fs) == 1 {
		r.Set(key, Scalar(fs[0]))
		return
	}
	r.Set(key, List(fs...))
}

// Get returns the value for key.
func (r *RunRecord) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Sum returns the sum of all numbers stored under key.
func (r *RunRecord) Sum(key string) float64 {
	var total float64
	for _, n := range r.values[key].Numbers {
		total += n
	}
	return total
}

// Keys returns the keys in insertion order.
func (r *RunRecord) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// File is the persisted mapping from key to per-run values.
type File map[string][]Value

// NewFile collects run records into a file. Keys absent from a run are skipped for that run.
func NewFile(runs []*RunRecord) File {
	f := make(File)
	for _, run := range runs {
		for _, key := range run.order {
			f[key] = append(f[key], run.values[key])
		}
	}
	return f
}

// Has reports whether key is present.
func (f File) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Keys returns all keys sorted.
func (f File) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Runs returns the number of runs stored under key.
func (f File) Runs(key string) int {
	return len(f[key])
}

// Float64s flattens every run's numbers for key in run order.
func (f File) Float64s(key string) ([]float64, error) {
	values, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}

	var out []float64
	for _, v := range values {
		out = append(out, v.Numbers...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyKey, key)
	}
	return out, nil
}

// Int64s flattens key into whole nanoseconds. Negative durations are
// rejected.
func (f File) Int64s(key string) ([]int64, error) {
	fs, err := f.Float64s(key)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(fs))
	for i, v := range fs {
		if v < 0 {
			return nil, fmt.Errorf("%w: %s: negative duration %s", ErrInvalidValue, key, formatNumber(v))
		}
		out[i] = int64(math.Round(v))
	}
	return out, nil
}

// First returns the first number of every run for key. Used where a
// scalar per run is expected, such as query counts.
func (f File) First(key string) ([]float64, error) {
	values, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if len(v.Numbers) > 0 {
			out = append(out, v.Numbers[0])
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyKey, key)
	}
	return out, nil
}

// Write encodes the file as indented JSON.
func (f File) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode result file: %w", err)
	}
	return nil
}

// Read decodes a result file.
func Read(r io.Reader) (File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode result file: %w", err)
	}
	if f == nil {
		f = make(File)
	}
	return f, nil
}
