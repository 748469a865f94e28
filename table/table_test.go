package table

import (
	"testing"

	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Columns: []string{"platform_name", "x"},
		Rows: [][]string{
			{"Facebook", "1"},
			{"Google Maps", "2"},
			{"Facebook", "3"},
			{"X", "4"},
		},
	}
}

func TestTable_Select(t *testing.T) {
	tbl := sampleTable()
	res := tbl.Select(func(row []string) bool { return row[0] == "Facebook" })

	assert.Equal(t, tbl.Columns, res.Columns)
	assert.Equal(t, [][]string{{"Facebook", "1"}, {"Facebook", "3"}}, res.Rows)
}

func TestTable_DistinctValues(t *testing.T) {
	assert.Equal(t, []string{"Facebook", "Google Maps", "X"}, sampleTable().DistinctValues(0))
}

func TestTable_Append(t *testing.T) {
	tbl := New([]string{"a", "b"})
	require.NoError(t, tbl.Append([]string{"1", "2"}))
	assert.Error(t, tbl.Append([]string{"1"}))
	assert.Equal(t, 1, tbl.NumRows())
}

func TestTable_Clone(t *testing.T) {
	tbl := sampleTable()
	clone := tbl.Clone()
	clone.Rows[0][0] = "changed"

	assert.Equal(t, "Facebook", tbl.Rows[0][0])
}

func TestConcat(t *testing.T) {
	a := &Table{Columns: []string{"platform_name", "x"}, Rows: [][]string{{"Google Maps", "1"}, {"Google Maps", "2"}}}
	b := &Table{Columns: []string{"platform_name", "x"}, Rows: [][]string{{"Google Maps", "3"}}}

	res, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Google Maps", "1"}, {"Google Maps", "2"}, {"Google Maps", "3"}}, res.Rows)

	reordered := &Table{Columns: []string{"x", "platform_name"}, Rows: [][]string{{"4", "Google Maps"}}}
	_, err = Concat(a, reordered)
	assert.ErrorIs(t, err, lander_error.ErrSchemaMismatch)

	_, err = Concat()
	assert.Error(t, err)
}
