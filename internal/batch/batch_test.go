package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/mailer"
	"github.com/lezzdif22/payslip/internal/metrics"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/payrollparser"
	"github.com/lezzdif22/payslip/internal/store"
)

const payroll = `Seq,NAME,RATE,Oct 1-15,Oct 16-31,EMAIL
,,per hour,,,
1,"Cruz, Juan",300,8,8,Juan@Example.com
2,"Reyes, Ana",250,10,,
3,,300,1,1,
4,"Santos, Leo",200,5,5,
`

type fakeRenderer struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls int
}

func (f *fakeRenderer) Extension() string { return "pdf" }

func (f *fakeRenderer) Render(rec models.EmployeeRecord, _ []models.PeriodDescriptor, path string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[rec.Name] {
		return errors.New("render failed")
	}
	return os.WriteFile(path, []byte("%PDF "+rec.Name), 0600)
}

type failingSender struct{}

func (failingSender) Send(context.Context, mailer.Message) error { return errors.New("smtp down") }

func writePayroll(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func runBatch(t *testing.T, content string) *payrollparser.Batch {
	t.Helper()
	p := payrollparser.NewParser(payrollparser.Options{}, logging.NewMockLogger())
	b, err := p.Parse(strings.NewReader(content), "payroll.csv")
	require.NoError(t, err)
	return b
}

func statuses(res *Result) map[string]Status {
	out := make(map[string]Status)
	for _, o := range res.Outcomes {
		out[o.Name] = o.Status
	}
	return out
}

func TestGenerator_Generate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "payslips")
	r := &fakeRenderer{}
	rec := metrics.NewRecorder()
	g := NewGenerator(r, logging.NewMockLogger(), rec)

	res, err := g.Generate(context.Background(), runBatch(t, payroll), out)
	require.NoError(t, err)

	assert.Len(t, res.Records, 3)
	require.Len(t, res.Skips, 1)
	assert.Equal(t, models.ReasonMissingName, res.Skips[0].Reason)
	assert.Equal(t, map[Status]int{StatusGenerated: 3}, res.Counts())
	assert.FileExists(t, filepath.Join(out, "payslip_001_Cruz_Juan.pdf"))
	assert.Equal(t, "payroll.csv", res.Source)
	assert.Len(t, res.Periods, 2)

	reg := rec.Registry()
	n, err := testutil.GatherAndCount(reg, "payslip_documents_rendered_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a second run keeps existing files
	res, err = g.Generate(context.Background(), runBatch(t, payroll), out)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusExisting: 3}, res.Counts())
	assert.Equal(t, 3, r.calls)

	g.Force = true
	res, err = g.Generate(context.Background(), runBatch(t, payroll), out)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusGenerated: 3}, res.Counts())
	assert.Equal(t, 6, r.calls)
}

func TestGenerator_RenderFailureIsPerRecord(t *testing.T) {
	g := NewGenerator(&fakeRenderer{fail: map[string]bool{"Reyes, Ana": true}}, logging.NewMockLogger(), nil)

	res, err := g.Generate(context.Background(), runBatch(t, payroll), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, StatusError, statuses(res)["Reyes, Ana"])
	assert.Equal(t, StatusGenerated, statuses(res)["Santos, Leo"])
	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "render failed", failed[0].Error)
}

func TestGenerator_CancelledContext(t *testing.T) {
	g := NewGenerator(&fakeRenderer{}, logging.NewMockLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, runBatch(t, payroll), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_RenderOne(t *testing.T) {
	g := NewGenerator(&fakeRenderer{}, logging.NewMockLogger(), nil)
	seq := 9
	o, err := g.RenderOne(models.EmployeeRecord{Sequence: &seq, Name: "Lim Ken"}, nil, filepath.Join(t.TempDir(), "one"))
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, o.Status)
	assert.True(t, strings.HasSuffix(o.Path, "payslip_009_Lim_Ken.pdf"))
}

func TestDispatcher_DryRun(t *testing.T) {
	ctx := context.Background()
	book := store.NewMemoryStore()
	require.NoError(t, book.Remember(ctx, store.Entry{Seq: "4", Email: "leo@example.com"}))

	sender := mailer.NewDryRunSender(logging.NewMockLogger())
	rec := metrics.NewRecorder()
	d := NewDispatcher(NewGenerator(&fakeRenderer{}, logging.NewMockLogger(), rec), book, sender, logging.NewMockLogger(), rec)
	d.DryRun = true
	d.Subject = "Payslip - {name} ({periods})"

	res, err := d.Send(ctx, runBatch(t, payroll), t.TempDir())
	require.NoError(t, err)

	got := statuses(res)
	assert.Equal(t, StatusDryRun, got["Cruz, Juan"])
	assert.Equal(t, StatusNoEmail, got["Reyes, Ana"])
	assert.Equal(t, StatusDryRun, got["Santos, Leo"])

	msgs := sender.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "juan@example.com", msgs[0].To)
	assert.Equal(t, "Payslip - Cruz, Juan (Oct 1-15, Oct 16-31)", msgs[0].Subject)
	require.Len(t, msgs[0].Attachments, 1)
	assert.FileExists(t, msgs[0].Attachments[0])
	assert.Equal(t, "leo@example.com", msgs[1].To)

	// the sheet's address is remembered for later runs
	email, err := book.Lookup(ctx, models.BuildLookupKeys(nil, "", "Cruz, Juan"))
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", email)
}

func TestDispatcher_FailureStatuses(t *testing.T) {
	ctx := context.Background()
	gen := NewGenerator(&fakeRenderer{fail: map[string]bool{"Cruz, Juan": true}}, logging.NewMockLogger(), nil)
	book := store.NewMemoryStore()
	require.NoError(t, book.Remember(ctx, store.Entry{Seq: "4", Email: "leo@example.com"}))

	d := NewDispatcher(gen, book, failingSender{}, logging.NewMockLogger(), nil)

	res, err := d.Send(ctx, runBatch(t, payroll), t.TempDir())
	require.NoError(t, err)

	got := statuses(res)
	assert.Equal(t, StatusNoPDF, got["Cruz, Juan"])
	assert.Equal(t, StatusNoEmail, got["Reyes, Ana"])
	assert.Equal(t, StatusError, got["Santos, Leo"])
	assert.Len(t, res.Failed(), 2)
}

func TestDispatcher_LookupErrorTreatedAsUnknown(t *testing.T) {
	book := store.NewMemoryStore()
	book.LookupError = errors.New("db locked")
	logger := logging.NewMockLogger()
	d := NewDispatcher(NewGenerator(&fakeRenderer{}, logger, nil), book, mailer.NewDryRunSender(nil), logger, nil)

	res, err := d.Send(context.Background(), runBatch(t, payroll), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, StatusNoEmail, statuses(res)["Santos, Leo"])
	assert.Equal(t, StatusSent, statuses(res)["Cruz, Juan"])
	assert.True(t, logger.HasEntry("WARN", "Address lookup failed"))
}

func TestDispatcher_ThrottleHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	content := payroll + "5,\"Lim, Ken\",100,1,1,ken@example.com\n"
	d := NewDispatcher(NewGenerator(&fakeRenderer{}, nil, nil), nil, mailer.NewDryRunSender(nil), nil, nil)
	d.Throttle = time.Hour

	start := time.Now()
	res, err := d.Send(ctx, runBatch(t, content), t.TempDir())
	assert.Less(t, time.Since(start), 10*time.Second)
	if err == nil {
		assert.Equal(t, StatusError, statuses(res)["Lim, Ken"])
	} else {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePayroll(t, dir, "a.csv", payroll),
		filepath.Join(dir, "missing.csv"),
		writePayroll(t, dir, "b.csv", payroll),
	}
	out := t.TempDir()
	logger := logging.NewMockLogger()
	parser := payrollparser.NewParser(payrollparser.Options{}, logger)
	g := NewGenerator(&fakeRenderer{}, logger, nil)
	g.Force = true

	results, err := RunFiles(context.Background(), paths, 2, logger, func(ctx context.Context, path string) (*Result, error) {
		b, err := parser.Run(path)
		if err != nil {
			return nil, err
		}
		return g.Generate(ctx, b, filepath.Join(out, strings.TrimSuffix(filepath.Base(path), ".csv")))
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, paths[0], results[0].Path)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.NotEqual(t, results[0].Result.BatchID, results[2].Result.BatchID)

	counts, failed := Totals(results)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 6, counts[StatusGenerated])
	assert.Equal(t, []Status{StatusGenerated}, SortedStatuses(counts))
	assert.True(t, logger.HasEntry("ERROR", "Failed to process payroll sheet"))
}
