package result

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_ScalarAndListValues(t *testing.T) {
	input := `{
		"insert_person": [1200345, 1180000],
		"q7": [[1500, 1700], [1600]],
		"total_throughput_qps": [12.3, 11.9]
	}`

	f, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	persons, err := f.Int64s("insert_person")
	require.NoError(t, err)
	assert.Equal(t, []int64{1200345, 1180000}, persons)

	q7, err := f.Int64s("q7")
	require.NoError(t, err)
	assert.Equal(t, []int64{1500, 1700, 1600}, q7)
	assert.Equal(t, 2, f.Runs("q7"))

	qps, err := f.Float64s("total_throughput_qps")
	require.NoError(t, err)
	assert.Equal(t, []float64{12.3, 11.9}, qps)
}

func TestFile_MissingKey(t *testing.T) {
	f := File{"q1": {Scalar(10)}}

	_, err := f.Int64s("q13")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Contains(t, err.Error(), "q13")

	_, err = f.First("q13")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.False(t, f.Has("q13"))
}

func TestFile_EmptyKey(t *testing.T) {
	f := File{"q1": {}}

	_, err := f.Float64s("q1")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestNewFile_AndWrite(t *testing.T) {
	run1 := NewRunRecord()
	run1.SetDurations("q1", []int64{100})
	run1.SetDurations("q7", []int64{5, 6})
	run1.Set("total_throughput_qps", Scalar(10.5))

	run2 := NewRunRecord()
	run2.SetDurations("q1", []int64{200})
	run2.SetDurations("q7", []int64{7, 8})
	run2.Set("total_throughput_qps", Scalar(11))

	f := NewFile([]*RunRecord{run1, run2})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	out := buf.String()
	assert.Contains(t, out, `"q1": [`)
	assert.Contains(t, out, "100,")
	assert.Contains(t, out, "10.5")
	assert.NotContains(t, out, "11.0")

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestRunRecord(t *testing.T) {
	r := NewRunRecord()
	r.SetDurations("q5", []int64{10, 20, 30})
	r.SetDurations("q6", []int64{4})
	r.SetDurations("q5", []int64{1, 2})

	assert.Equal(t, []string{"q5", "q6"}, r.Keys())
	assert.Equal(t, 3.0, r.Sum("q5"))

	v, ok := r.Get("q6")
	require.True(t, ok)
	assert.False(t, v.List)
	assert.Zero(t, r.Sum("missing"))
}

func TestFile_First(t *testing.T) {
	f := File{"insert_query_count": {Scalar(5), Scalar(5), List(5, 9)}}

	got, err := f.First("insert_query_count")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5}, got)
}

func TestValue_UnmarshalInvalid(t *testing.T) {
	_, err := Read(strings.NewReader(`{"q1": ["a"]}`))
	assert.Error(t, err)

	_, err = Read(strings.NewReader(`{"q1": [true]}`))
	assert.Error(t, err)
}

func TestRead_RejectsNull(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"scalar", `{"q1": [null, 300]}`},
		{"inside list", `{"q1": [300, [200, null]]}`},
		{"mixed", `{"q1": [null, 300, [null, -5]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestFile_Int64sRejectsNegative(t *testing.T) {
	f, err := Read(strings.NewReader(`{"q1": [300, [100, -5]], "q2": [300, 0]}`))
	require.NoError(t, err)

	_, err = f.Int64s("q1")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "q1")

	q2, err := f.Int64s("q2")
	require.NoError(t, err)
	assert.Equal(t, []int64{300, 0}, q2)
}

func TestFile_Keys(t *testing.T) {
	f := File{"q2": nil, "q1": nil, "insert_person": nil}
	assert.Equal(t, []string{"insert_person", "q1", "q2"}, f.Keys())
}
