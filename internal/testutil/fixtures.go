package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// LoggerCSV renders samples in the data-logger format: a free-form
// preamble, then a "t(us),X(mg),Y(mg),Z(mg)" header and one row per
// sample. times are in seconds and written as integer microseconds.
func LoggerCSV(preamble []string, times, x, y, z []float64) string {
	var b strings.Builder
	for _, line := range preamble {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("t(us),X(mg),Y(mg),Z(mg)\n")
	writeRows(&b, times, x, y, z)
	return b.String()
}

// RawCSV renders samples as header-less numeric rows after skip junk lines.
func RawCSV(skip int, times, x, y, z []float64) string {
	var b strings.Builder
	for i := 0; i < skip; i++ {
		b.WriteString("# header line " + strconv.Itoa(i+1) + "\n")
	}
	writeRows(&b, times, x, y, z)
	return b.String()
}

func writeRows(b *strings.Builder, times, x, y, z []float64) {
	for i := range times {
		b.WriteString(strconv.FormatInt(int64(times[i]*1e6+0.5), 10))
		for _, col := range [][]float64{x, y, z} {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(col[i], 'f', -1, 64))
		}
		b.WriteByte('\n')
	}
}
