package report

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/sortnbackup/pkg/config"
)

func TestFormatSizeBinary(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatSize(tc.n, config.SizeBinary), "n=%d", tc.n)
	}
}

func TestFormatSizeDecimal(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1500, "1.5 kB"},
		{1000000, "1.0 MB"},
		{2500000000, "2.5 GB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatSize(tc.n, config.SizeDecimal), "n=%d", tc.n)
	}
}

func TestSummaryCounters(t *testing.T) {
	s := NewSummary()
	s.AddCopied(100)
	s.AddCopied(50)
	s.AddIgnored()
	s.AddSkipped()
	s.AddLogged()
	s.AddDiagnostic("camera", "a/pic.jpg", "copy", errors.New("disk full"))

	assert.Equal(t, 2, s.Copied)
	assert.Equal(t, int64(150), s.BytesCopied)
	assert.Equal(t, 1, s.Ignored)
	assert.Equal(t, 1, s.SkippedJournal)
	assert.Equal(t, 1, s.Logged)
	assert.Equal(t, 1, s.ErrorCount())
}

func TestSummaryConcurrentAdds(t *testing.T) {
	s := NewSummary()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddCopied(10)
			s.AddIgnored()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Copied)
	assert.Equal(t, int64(500), s.BytesCopied)
	assert.Equal(t, 50, s.Ignored)
}

func TestSummaryRender(t *testing.T) {
	s := NewSummary()
	s.AddCopied(2048)
	s.AddIgnored()
	s.AddDiagnostic("camera", "bad.jpg", "decode", errors.New("not an image"))

	out := s.Render(config.SizeBinary)
	assert.Contains(t, out, "Run summary")
	assert.Contains(t, out, "Copied")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "bad.jpg")
	assert.Contains(t, out, "not an image")
}

func TestSummaryRenderOmitsLogLinesWhenZero(t *testing.T) {
	s := NewSummary()
	out := s.Render(config.SizeBinary)
	assert.NotContains(t, out, "Log lines")
}
