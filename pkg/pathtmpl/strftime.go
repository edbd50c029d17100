package pathtmpl

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
)

// Format is a validated strftime-style time format string. The original
// configuration vocabulary uses %-verbs (as chrono does), so they are
// interpreted directly instead of being translated into a Go reference
// layout, which would mangle literal digits in the format.
type Format struct {
	raw string
}

// ParseFormat validates a strftime format string. Unknown verbs are
// configuration errors.
func ParseFormat(s string) (*Format, error) {
	f := &Format{raw: s}
	if err := f.eval(time.Time{}, &strings.Builder{}); err != nil {
		return nil, err
	}
	return f, nil
}

// String returns the raw format string.
func (f *Format) String() string { return f.raw }

// Render formats t according to the format string.
func (f *Format) Render(t time.Time) string {
	var b strings.Builder
	// Validated at parse time; cannot fail here.
	_ = f.eval(t, &b)
	return b.String()
}

func (f *Format) eval(t time.Time, b *strings.Builder) error {
	for i := 0; i < len(f.raw); i++ {
		c := f.raw[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(f.raw) {
			return errors.Newf(errors.ErrBadTimeFormat,
				"time format %q ends with a bare %%", f.raw)
		}
		switch f.raw[i] {
		case 'Y':
			fmt.Fprintf(b, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(b, "%02d", t.Day())
		case 'e':
			fmt.Fprintf(b, "%2d", t.Day())
		case 'j':
			fmt.Fprintf(b, "%03d", t.YearDay())
		case 'H':
			fmt.Fprintf(b, "%02d", t.Hour())
		case 'I':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			fmt.Fprintf(b, "%02d", h)
		case 'M':
			fmt.Fprintf(b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(b, "%02d", t.Second())
		case 'b':
			b.WriteString(t.Format("Jan"))
		case 'B':
			b.WriteString(t.Format("January"))
		case 'a':
			b.WriteString(t.Format("Mon"))
		case 'A':
			b.WriteString(t.Format("Monday"))
		case 'p':
			if t.Hour() < 12 {
				b.WriteString("AM")
			} else {
				b.WriteString("PM")
			}
		case 'F':
			b.WriteString(t.Format("2006-01-02"))
		case 'T':
			b.WriteString(t.Format("15:04:05"))
		case 's':
			fmt.Fprintf(b, "%d", t.Unix())
		case '%':
			b.WriteByte('%')
		default:
			return errors.Newf(errors.ErrBadTimeFormat,
				"unsupported verb %%%c in time format %q", f.raw[i], f.raw)
		}
	}
	return nil
}
