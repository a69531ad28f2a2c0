package workflow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semcheck/internal/domain"
	"semcheck/internal/gateway"
)

// fakeGateway records calls and returns canned outcomes.
type fakeGateway struct {
	compareCalls int
	checkCalls   int
	extractCalls int
	lastUpload   string

	compare domain.CompareResult
	check   domain.CheckResult
	text    string
	err     error
	panics  bool
}

func (f *fakeGateway) Extract(ctx context.Context, file domain.Upload) (string, error) {
	f.extractCalls++
	f.lastUpload = file.Name
	if file.Body != nil {
		if _, err := io.ReadAll(file.Body); err != nil {
			return "", &gateway.UnexpectedError{Op: gateway.OpExtract, Err: err}
		}
	}
	return f.text, f.err
}

func (f *fakeGateway) Compare(ctx context.Context, text1, text2 string) (domain.CompareResult, error) {
	f.compareCalls++
	if f.panics {
		panic("boom")
	}
	return f.compare, f.err
}

func (f *fakeGateway) Check(ctx context.Context, text string) (domain.CheckResult, error) {
	f.checkCalls++
	return f.check, f.err
}

func (f *fakeGateway) calls() int { return f.compareCalls + f.checkCalls + f.extractCalls }

func TestCheckActionLifecycle(t *testing.T) {
	gw := &fakeGateway{check: domain.CheckResult{AverageScore: 55}}
	o := New(gw, domain.ModeCheck)
	o.SetText(domain.Slot1, "sample text")

	assert.Equal(t, domain.OpNone, o.Operation())
	call := o.CheckAction()
	require.NotNil(t, call)
	assert.Equal(t, domain.OpChecking, o.Operation())

	o.Settle(call(context.Background()))
	st := o.Snapshot()
	assert.Equal(t, domain.OpNone, st.Operation)
	assert.Equal(t, domain.CheckResult{AverageScore: 55}, st.Result)
	assert.Empty(t, st.Error)
	assert.Equal(t, 1, gw.checkCalls)
}

func TestCheckActionFailureSetsErrorOnly(t *testing.T) {
	gw := &fakeGateway{err: &gateway.ServerError{Op: gateway.OpCheck, StatusCode: 500, StatusText: "Internal Server Error"}}
	o := New(gw, domain.ModeCheck)
	o.SetText(domain.Slot1, "sample text")

	o.Run(context.Background(), o.CheckAction())
	st := o.Snapshot()
	assert.Equal(t, domain.OpNone, st.Operation)
	assert.Nil(t, st.Result)
	assert.Equal(t, "failed: Internal Server Error", st.Error)
}

func TestCompareScenarioA(t *testing.T) {
	gw := &fakeGateway{compare: domain.CompareResult{Similarity: 98.5}}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot1, "The cat sat.")
	o.SetText(domain.Slot2, "The cat sat.")

	o.Run(context.Background(), o.PrimaryAction())
	assert.Equal(t, domain.CompareResult{Similarity: 98.5}, o.Snapshot().Result)
}

func TestCompareValidationNeverCallsGateway(t *testing.T) {
	cases := []struct {
		name         string
		text1, text2 string
	}{
		{"empty slot 2", "text", ""},
		{"empty slot 1", "", "text"},
		{"blank slot 2", "text", "   \n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gw := &fakeGateway{}
			o := New(gw, domain.ModeCompare)
			o.SetText(domain.Slot1, c.text1)
			o.SetText(domain.Slot2, c.text2)

			assert.Nil(t, o.CompareAction())
			assert.Equal(t, MsgBothTextsRequired, o.Snapshot().Error)
			assert.Equal(t, domain.OpNone, o.Operation())
			assert.Zero(t, gw.calls())
		})
	}
}

func TestCheckValidation(t *testing.T) {
	gw := &fakeGateway{}
	o := New(gw, domain.ModeCheck)
	o.SetText(domain.Slot2, "ignored in check mode")

	assert.Nil(t, o.PrimaryAction())
	assert.Equal(t, "text field required", o.Snapshot().Error)
	assert.Zero(t, gw.calls())
}

func TestValidationClearsPreviousResult(t *testing.T) {
	gw := &fakeGateway{compare: domain.CompareResult{Similarity: 10}}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot1, "a")
	o.SetText(domain.Slot2, "b")
	o.Run(context.Background(), o.CompareAction())
	require.NotNil(t, o.Snapshot().Result)

	o.SetText(domain.Slot2, "")
	o.CompareAction()
	st := o.Snapshot()
	assert.Nil(t, st.Result)
	assert.Equal(t, MsgBothTextsRequired, st.Error)
}

func TestBusyLockMakesActionsNoOps(t *testing.T) {
	gw := &fakeGateway{compare: domain.CompareResult{Similarity: 50}}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot1, "a")
	o.SetText(domain.Slot2, "b")

	first := o.CompareAction()
	require.NotNil(t, first)

	assert.Nil(t, o.CompareAction())
	assert.Nil(t, o.CheckAction())
	assert.Nil(t, o.ExtractFromFile(domain.Slot1, &domain.Upload{Name: "a.txt"}))
	assert.Nil(t, o.ExtractFromFile(domain.Slot1, nil))
	assert.Equal(t, domain.OpChecking, o.Operation())
	assert.Empty(t, o.Snapshot().Error)

	o.Settle(first(context.Background()))
	assert.Equal(t, 1, gw.calls())
	assert.Equal(t, domain.OpNone, o.Operation())
}

func TestInflightExtractionBlocksAnalysis(t *testing.T) {
	gw := &fakeGateway{text: "extracted"}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot1, "a")
	o.SetText(domain.Slot2, "b")

	extract := o.ExtractFromFile(domain.Slot2, &domain.Upload{Name: "b.txt", Body: strings.NewReader("raw")})
	require.NotNil(t, extract)
	assert.Equal(t, domain.OpExtracting, o.Operation())

	assert.Nil(t, o.CompareAction())
	assert.Nil(t, o.CheckAction())
	assert.Nil(t, o.PrimaryAction())
	assert.Equal(t, domain.OpExtracting, o.Operation())

	o.Settle(extract(context.Background()))
	assert.Equal(t, 1, gw.calls())
	assert.Zero(t, gw.compareCalls)
	assert.Equal(t, domain.OpNone, o.Operation())
	assert.NotNil(t, o.CompareAction())
}

func TestOversizedUploadClosesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("sixteen bytes!!!"), 0o644))

	client, err := gateway.NewClient(gateway.Config{BaseURL: "http://127.0.0.1:1", MaxUploadBytes: 4})
	require.NoError(t, err)
	o := New(client, domain.ModeCompare)

	up := OpenFile(path)
	o.Run(context.Background(), o.ExtractFromFile(domain.Slot1, up))
	assert.Contains(t, o.Snapshot().Error, "exceeds the 4 byte upload limit")

	lf := up.Body.(*lazyFile)
	require.NotNil(t, lf.f)
	assert.ErrorIs(t, lf.f.Close(), os.ErrClosed)
}

func TestUnreadUploadCloseIsNoop(t *testing.T) {
	up := OpenFile(filepath.Join(t.TempDir(), "never.txt"))
	lf := up.Body.(*lazyFile)
	assert.NoError(t, lf.Close())
	assert.Nil(t, lf.f)
}

func TestExtractReplacesSlotContent(t *testing.T) {
	gw := &fakeGateway{text: "extracted body"}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot2, "old")

	call := o.ExtractFromFile(domain.Slot2, &domain.Upload{Name: "essay.docx", Body: strings.NewReader("PK")})
	require.NotNil(t, call)
	assert.Equal(t, domain.OpExtracting, o.Operation())
	assert.Equal(t, "essay.docx", o.Snapshot().Slots[domain.Slot2].File)

	o.Settle(call(context.Background()))
	st := o.Snapshot()
	assert.Equal(t, "extracted body", st.Slots[domain.Slot2].Content)
	assert.Empty(t, st.Slots[domain.Slot2].File)
	assert.Equal(t, domain.OpNone, st.Operation)
	assert.Empty(t, st.Error)
}

func TestExtractScenarioDConnectivityFailure(t *testing.T) {
	gw := &fakeGateway{err: &gateway.TransportError{Op: gateway.OpExtract, Err: errors.New("connection refused")}}
	o := New(gw, domain.ModeCheck)
	o.SetText(domain.Slot1, "keep me")

	o.Run(context.Background(), o.ExtractFromFile(domain.Slot1, &domain.Upload{Name: "a.txt", Body: strings.NewReader("x")}))
	st := o.Snapshot()
	assert.Equal(t, MsgUnreachable, st.Error)
	assert.Equal(t, domain.OpNone, st.Operation)
	assert.Equal(t, "keep me", st.Slots[domain.Slot1].Content)
	assert.Empty(t, st.Slots[domain.Slot1].File)
}

func TestExtractNilFile(t *testing.T) {
	gw := &fakeGateway{}
	o := New(gw, domain.ModeCompare)

	assert.Nil(t, o.ExtractFromFile(domain.Slot1, nil))
	assert.Equal(t, MsgNoFile, o.Snapshot().Error)
	assert.Zero(t, gw.calls())
}

func TestSameFileCanBeResubmitted(t *testing.T) {
	gw := &fakeGateway{text: "v"}
	o := New(gw, domain.ModeCompare)

	for i := 0; i < 2; i++ {
		o.Run(context.Background(), o.ExtractFromFile(domain.Slot1, &domain.Upload{Name: "same.txt", Body: strings.NewReader("x")}))
	}
	assert.Equal(t, 2, gw.extractCalls)
}

func TestModeSwitchDiscardsStaleResult(t *testing.T) {
	gw := &fakeGateway{check: domain.CheckResult{AverageScore: 70}}
	o := New(gw, domain.ModeCheck)
	o.SetText(domain.Slot1, "sample")

	call := o.CheckAction()
	require.NotNil(t, call)
	o.SetMode(domain.ModeCompare)
	assert.Equal(t, domain.OpChecking, o.Operation(), "mode switch does not cancel the call")

	o.Settle(call(context.Background()))
	st := o.Snapshot()
	assert.Equal(t, domain.OpNone, st.Operation)
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Error)
	assert.Equal(t, domain.ModeCompare, st.Mode)
}

func TestModeSwitchDiscardsStaleError(t *testing.T) {
	gw := &fakeGateway{err: &gateway.TransportError{Op: gateway.OpCompare, Err: errors.New("timeout")}}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot1, "a")
	o.SetText(domain.Slot2, "b")

	call := o.CompareAction()
	o.SetMode(domain.ModeCheck)
	o.Settle(call(context.Background()))
	assert.Empty(t, o.Snapshot().Error)
}

func TestStaleExtractionStillFillsSlot(t *testing.T) {
	gw := &fakeGateway{text: "from file"}
	o := New(gw, domain.ModeCompare)

	call := o.ExtractFromFile(domain.Slot2, &domain.Upload{Name: "b.txt", Body: strings.NewReader("x")})
	o.SetMode(domain.ModeCheck)
	o.Settle(call(context.Background()))
	assert.Equal(t, "from file", o.Text(domain.Slot2))
	assert.Equal(t, domain.OpNone, o.Operation())
}

func TestSetModeClearsResultAndError(t *testing.T) {
	gw := &fakeGateway{}
	o := New(gw, domain.ModeCompare)
	o.CompareAction()
	require.NotEmpty(t, o.Snapshot().Error)

	o.SetMode(domain.ModeCompare)
	assert.Empty(t, o.Snapshot().Error)
	assert.Nil(t, o.Snapshot().Result)
}

func TestUnknownSettlementIsIgnored(t *testing.T) {
	o := New(&fakeGateway{}, domain.ModeCompare)
	o.Settle(Settlement{Generation: 42, Op: domain.OpChecking, Result: domain.CompareResult{Similarity: 1}})
	assert.Nil(t, o.Snapshot().Result)
	assert.Equal(t, domain.OpNone, o.Operation())
}

func TestPanicInGatewayReleasesLock(t *testing.T) {
	gw := &fakeGateway{panics: true}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot1, "a")
	o.SetText(domain.Slot2, "b")

	o.Run(context.Background(), o.CompareAction())
	st := o.Snapshot()
	assert.Equal(t, domain.OpNone, st.Operation)
	assert.Contains(t, st.Error, "failed: unexpected error: panic during checking")
}

func TestResultAndErrorNeverBothSet(t *testing.T) {
	outcomes := []*fakeGateway{
		{check: domain.CheckResult{AverageScore: 1}},
		{err: &gateway.ServerError{Op: gateway.OpCheck, StatusCode: http.StatusBadRequest, StatusText: "Bad Request", Detail: "empty"}},
		{err: &gateway.TransportError{Op: gateway.OpCheck, Err: errors.New("refused")}},
	}
	for _, gw := range outcomes {
		o := New(gw, domain.ModeCheck)
		o.SetText(domain.Slot1, "text")
		o.Run(context.Background(), o.CheckAction())
		st := o.Snapshot()
		assert.True(t, (st.Result == nil) != (st.Error == ""), "exactly one of result or error must be set: %+v", st)
	}
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts("a.txt"))
	assert.True(t, Accepts("Report.DOCX"))
	assert.False(t, Accepts("a.pdf"))
	assert.False(t, Accepts("txt"))
}

func TestOpenFileReadsLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essay.txt")
	require.NoError(t, os.WriteFile(path, []byte("essay body"), 0o644))

	up := OpenFile(path)
	assert.Equal(t, "essay.txt", up.Name)
	data, err := io.ReadAll(up.Body)
	require.NoError(t, err)
	assert.Equal(t, "essay body", string(data))
}

func TestOpenFileMissingSurfacesThroughCall(t *testing.T) {
	gw := &fakeGateway{text: "unused"}
	o := New(gw, domain.ModeCompare)
	o.SetText(domain.Slot1, "keep")

	up := OpenFile(filepath.Join(t.TempDir(), "missing.txt"))
	o.Run(context.Background(), o.ExtractFromFile(domain.Slot1, up))
	st := o.Snapshot()
	assert.True(t, strings.HasPrefix(st.Error, "failed: unexpected error: "), st.Error)
	assert.Equal(t, "keep", st.Slots[domain.Slot1].Content)
}
