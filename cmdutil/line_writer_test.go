package cmdutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect() (*lineStream, *[]string) {
	var lines []string
	return newLineStream(func(line string) {
		lines = append(lines, line)
	}), &lines
}

func TestLineWriter(t *testing.T) {
	stream, lines := collect()
	lw := stream.writer()

	n, err := lw.Write([]byte("line 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []string{"line 1"}, *lines)

	_, err = lw.Write([]byte("line 2\nline 3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"line 1", "line 2", "line 3"}, *lines)
}

func TestLineWriterIncomplete(t *testing.T) {
	stream, lines := collect()
	lw := stream.writer()

	_, _ = lw.Write([]byte("partial"))
	assert.Empty(t, *lines)

	_, _ = lw.Write([]byte(" line\n"))
	assert.Equal(t, []string{"partial line"}, *lines)
}

func TestLineWriterFlush(t *testing.T) {
	stream, lines := collect()
	lw := stream.writer()

	_, _ = lw.Write([]byte("no newline"))
	require.Empty(t, *lines)

	lw.Flush()
	assert.Equal(t, []string{"no newline"}, *lines)

	lw.Flush()
	assert.Len(t, *lines, 1, "second Flush must not emit again")
}

func TestLineWriterStripsCarriageReturn(t *testing.T) {
	tests := []struct {
		name   string
		writes []string
		want   []string
	}{
		{name: "crlf", writes: []string{"added 3 packages\r\n"}, want: []string{"added 3 packages"}},
		{name: "split crlf", writes: []string{"up to date\r", "\n"}, want: []string{"up to date"}},
		{name: "inner cr kept", writes: []string{"a\rb\n"}, want: []string{"a\rb"}},
		{name: "blank crlf line", writes: []string{"\r\n"}, want: []string{""}},
		{name: "flushed tail", writes: []string{"tail\r"}, want: []string{"tail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, lines := collect()
			lw := stream.writer()
			for _, w := range tt.writes {
				_, _ = lw.Write([]byte(w))
			}
			lw.Flush()
			assert.Equal(t, tt.want, *lines)
		})
	}
}

func TestLineStreamKeepsWritersApart(t *testing.T) {
	stream, lines := collect()
	out, errw := stream.writer(), stream.writer()

	_, _ = out.Write([]byte("stdout "))
	_, _ = errw.Write([]byte("stderr line\n"))
	_, _ = out.Write([]byte("line\n"))

	assert.Equal(t, []string{"stderr line", "stdout line"}, *lines)
}

func TestLineStreamSerializesHandler(t *testing.T) {
	count := 0
	stream := newLineStream(func(string) { count++ })
	writers := []*lineWriter{stream.writer(), stream.writer()}

	var wg sync.WaitGroup
	for _, lw := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, _ = lw.Write([]byte("x\n"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, count)
}
