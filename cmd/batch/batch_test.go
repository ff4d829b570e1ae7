package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezzdif22/payslip/internal/batch"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/payrollparser"
)

const payroll = `Seq,NAME,RATE,Oct 1-15,Oct 16-31
,,per hour,,
1,"Cruz, Juan",300,8,8
2,"Reyes, Ana",250,10,
`

type fakeRenderer struct{}

func (fakeRenderer) Extension() string { return "pdf" }

func (fakeRenderer) Render(rec models.EmployeeRecord, _ []models.PeriodDescriptor, path string) error {
	return os.WriteFile(path, []byte("%PDF "+rec.Name), 0600)
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestBatchCommand_CommandMetadata(t *testing.T) {
	assert.Equal(t, "batch [input_dir]", Cmd.Use)
	assert.Contains(t, Cmd.Short, "Batch process")
	assert.Contains(t, Cmd.Long, "input directory")
	assert.Contains(t, Cmd.Long, "Example")
	assert.NotNil(t, Cmd.Flags().Lookup("recursive"))
	assert.NotNil(t, Cmd.Flags().Lookup("parallelism"))
}

func TestRun(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	write(t, filepath.Join(in, "october.csv"), payroll)
	write(t, filepath.Join(in, "broken.csv"), "no header here\n")
	write(t, filepath.Join(in, "notes.txt"), "ignored")
	write(t, filepath.Join(in, "2024", "november.csv"), payroll)

	logger := logging.NewMockLogger()
	p := payrollparser.NewParser(payrollparser.Options{}, logger)
	gen := batch.NewGenerator(fakeRenderer{}, logger, nil)

	tests := []struct {
		name      string
		recursive bool
		sheets    int
		generated int
	}{
		{name: "top level", sheets: 2, generated: 2},
		{name: "recursive", recursive: true, sheets: 3, generated: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := Options{Recursive: tt.recursive, Parallelism: 2, Delimiter: ','}
			gen.Force = true

			results, err := Run(context.Background(), &buf, p, gen, in, out, opts, logger)
			require.NoError(t, err)
			require.Len(t, results, tt.sheets)

			counts, failed := batch.Totals(results)
			assert.Equal(t, 1, failed)
			assert.Equal(t, tt.generated, counts[batch.StatusGenerated])
			assert.Contains(t, buf.String(), "FAILED")
			assert.FileExists(t, filepath.Join(out, "october", "payslip_001_Cruz_Juan.pdf"))
			assert.FileExists(t, filepath.Join(out, "october", "outcomes.csv"))
		})
	}

	assert.FileExists(t, filepath.Join(out, "2024_november", "payslip_002_Reyes_Ana.pdf"))
}

func TestRun_EmptyDirectory(t *testing.T) {
	logger := logging.NewMockLogger()
	var buf bytes.Buffer

	results, err := Run(context.Background(), &buf, payrollparser.NewParser(payrollparser.Options{}, logger),
		batch.NewGenerator(fakeRenderer{}, logger, nil), t.TempDir(), t.TempDir(), Options{}, logger)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, logger.HasEntry("WARN", "No payroll sheets found in input directory"))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "october", sheetName("/in", "/in/october.csv"))
	assert.Equal(t, "2024_november", sheetName("/in", "/in/2024/november.csv"))
}
