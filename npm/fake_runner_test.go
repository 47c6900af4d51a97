package npm

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/logutil"
)

type fakeCall struct {
	Line string
	Opts cmdutil.RunOptions
}

type fakeResponse struct {
	Result *cmdutil.Result
	Err    error
}

// fakeRunner records command lines and answers from responses keyed by a
// command line prefix. Unmatched lines succeed with empty output.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []fakeCall
	responses map[string]fakeResponse
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string]fakeResponse{}}
}

func (f *fakeRunner) respond(prefix string, res *cmdutil.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = fakeResponse{Result: res, Err: err}
}

func (f *fakeRunner) Run(_ context.Context, line string, opts cmdutil.RunOptions) (*cmdutil.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Line: line, Opts: opts})

	var best string
	for prefix := range f.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	resp, ok := f.responses[best]
	if !ok {
		return &cmdutil.Result{}, nil
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	res := *resp.Result
	if res.Code != 0 && !opts.NoThrow {
		return &res, &cmdutil.ExitError{CommandLine: line, Code: res.Code, Stderr: res.Stderr}
	}
	return &res, nil
}

func (f *fakeRunner) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Line
	}
	return out
}

func (f *fakeRunner) last() fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// newTestClient returns a client on a fake runner whose logs go to the
// returned buffer.
func newTestClient(t *testing.T, cfg Config) (*Client, *fakeRunner, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logutil.SetupLoggerWithWriter(&logs, true, false)
	t.Cleanup(func() { logutil.SetupLogger(false, false) })

	runner := newFakeRunner()
	cfg.Runner = runner
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, runner, &logs
}
