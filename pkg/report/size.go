package report

import (
	"fmt"

	"github.com/arthur-debert/sortnbackup/pkg/config"
)

var (
	binaryUnits  = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}
	decimalUnits = []string{"B", "kB", "MB", "GB", "TB", "PB"}
)

// FormatSize renders a byte count in the configured unit family.
func FormatSize(n int64, style config.SizeStyle) string {
	base := 1024.0
	units := binaryUnits
	if style == config.SizeDecimal {
		base = 1000.0
		units = decimalUnits
	}

	v := float64(n)
	i := 0
	for v >= base && i < len(units)-1 {
		v /= base
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", n, units[0])
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
