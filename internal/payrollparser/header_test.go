package payrollparser

import (
	"fmt"
	"testing"

	"github.com/lezzdif22/payslip/internal/parsererror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateHeaderLeadingRows(t *testing.T) {
	for k := 0; k < 20; k++ {
		t.Run(fmt.Sprintf("header at row %d", k), func(t *testing.T) {
			var rows [][]string
			for i := 0; i < k-1; i++ {
				rows = append(rows, []string{"", "", ""})
			}
			if k > 0 {
				rows = append(rows, []string{"NAME", "RATE", "Sept. 1–15"})
			}
			rows = append(rows, []string{"", "Per Hour", ""})
			rows = append(rows, []string{"Abante", "300", "37.42"})

			loc, err := LocateHeader(rows, "per hour", 20)
			require.NoError(t, err)
			assert.Equal(t, k, loc.Index)
			if k > 0 {
				assert.Equal(t, []string{"NAME", "RATE Per Hour", "Sept. 1–15"}, loc.Merged)
			} else {
				assert.Nil(t, loc.Label)
				assert.Equal(t, []string{"", "Per Hour", ""}, loc.Merged)
			}
		})
	}
}

func TestLocateHeaderNotFound(t *testing.T) {
	rows := make([][]string, 25)
	for i := range rows {
		rows[i] = []string{"x"}
	}
	rows[22] = []string{"per hour"}

	_, err := LocateHeader(rows, "per hour", 20)
	require.Error(t, err)
	assert.ErrorIs(t, err, parsererror.ErrHeaderNotFound)

	loc, err := LocateHeader(rows, "per hour", 25)
	require.NoError(t, err)
	assert.Equal(t, 22, loc.Index)
}

func TestLocateHeaderMarkerSpacing(t *testing.T) {
	rows := [][]string{{"RATE  PER\tHOUR"}}
	loc, err := LocateHeader(rows, "per hour", 20)
	require.NoError(t, err)
	assert.Equal(t, 0, loc.Index)
}

func TestMergeHeaderRows(t *testing.T) {
	tests := []struct {
		name   string
		label  []string
		marker []string
		want   []string
	}{
		{
			name:   "non-empty side wins",
			label:  []string{"NAME", "", " Sept. 1–15 "},
			marker: []string{"", "per hour", ""},
			want:   []string{"NAME", "per hour", "Sept. 1–15"},
		},
		{
			name:   "both sides joined",
			label:  []string{"NET AMOUNT"},
			marker: []string{"RECEIVED"},
			want:   []string{"NET AMOUNT RECEIVED"},
		},
		{
			name:   "ragged rows",
			label:  []string{"A"},
			marker: []string{"", "B", "C"},
			want:   []string{"A", "B", "C"},
		},
		{
			name:   "no label row",
			label:  nil,
			marker: []string{"per hour"},
			want:   []string{"per hour"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeHeaderRows(tt.label, tt.marker))
		})
	}
}
