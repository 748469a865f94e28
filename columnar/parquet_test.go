package columnar

import (
	"context"
	"testing"

	"github.com/dsa-lake/data-lander/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		in   *table.Table
	}{
		{
			name: "single row",
			in: &table.Table{
				Columns: []string{"platform_name", "x"},
				Rows:    [][]string{{"Facebook", "1"}},
			},
		},
		{
			name: "empty cells",
			in: &table.Table{
				Columns: []string{"platform_name", "decision_ground", "x"},
				Rows: [][]string{
					{"Google Maps", "", "1"},
					{"Google Maps", "DECISION_GROUND_ILLEGAL_CONTENT", ""},
				},
			},
		},
		{
			name: "no rows",
			in:   table.New([]string{"platform_name"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.in)
			require.NoError(t, err)
			require.NotEmpty(t, data)
			assert.Equal(t, "PAR1", string(data[:4]))

			got, err := Decode(context.Background(), data)
			require.NoError(t, err)
			assert.Equal(t, tt.in.Columns, got.Columns)
			assert.Equal(t, tt.in.NumRows(), got.NumRows())
			if tt.in.NumRows() > 0 {
				assert.Equal(t, tt.in.Rows, got.Rows)
			}
		})
	}
}

func TestEncode_NoColumns(t *testing.T) {
	_, err := Encode(&table.Table{})
	assert.Error(t, err)

	_, err = Encode(nil)
	assert.Error(t, err)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(context.Background(), []byte("not parquet"))
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	in := &table.Table{
		Columns: []string{"platform_name", "x"},
		Rows:    [][]string{{"X", "1"}, {"X", "2"}, {"X", "3"}},
	}
	data, err := Encode(in)
	require.NoError(t, err)

	info, err := Describe(context.Background(), data, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.NumRows)
	assert.Equal(t, len(data), info.Size)
	require.Len(t, info.Columns, 2)
	assert.Equal(t, "platform_name", info.Columns[0].Name)
	assert.Equal(t, "utf8", info.Columns[0].Type)
	assert.True(t, info.Columns[0].Nullable)
	assert.Equal(t, 2, info.Sample.NumRows())
}
