package recording

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Load reads the file at path with the given layout.
func Load(path string, layout Layout) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	rec, err := LoadReader(f, layout, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return rec, nil
}

// LoadReader parses a capture from r. source names the data in errors and
// in the returned Recording.
func LoadReader(r io.Reader, layout Layout, source string) (*Recording, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	line := 0

	for ; line < layout.Skip; line++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %s ends after %d of %d preamble lines", ErrNoSamples, source, line, layout.Skip)
			}
			return nil, err
		}
	}

	var header []string
	switch {
	case layout.HeaderToken != "":
		for {
			text, err := br.ReadString('\n')
			if text != "" {
				line++
			}
			if strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(text, "\ufeff")), layout.HeaderToken) {
				header, err = splitHeader(text, layout.delimiter())
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
				}
				break
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("%w: no line starts with %q in %s", ErrHeaderNotFound, layout.HeaderToken, source)
				}
				return nil, err
			}
		}
	case layout.HasHeader:
		// Blank lines before the header are skipped, as pandas does.
		var text string
		for {
			var err error
			text, err = br.ReadString('\n')
			if text != "" {
				line++
			}
			if strings.TrimSpace(strings.TrimPrefix(text, "\ufeff")) != "" {
				break
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("%w: expected header after line %d of %s", ErrHeaderNotFound, line, source)
				}
				return nil, err
			}
		}

		var err error
		header, err = splitHeader(text, layout.delimiter())
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
	}

	idx, err := layout.resolve(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = layout.delimiter()
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var (
		data  []float64
		rows  int
		width int
	)
	present := make([]int, 0, len(idx))
	for _, j := range idx {
		if j >= 0 {
			present = append(present, j)
		}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if pe := (*csv.ParseError)(nil); errors.As(err, &pe) {
				return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedRow, source, line+pe.Line, pe.Err)
			}
			return nil, err
		}
		row, _ := cr.FieldPos(0)

		if rows == 0 {
			width = len(record)
			for _, j := range present {
				if j >= width {
					return nil, fmt.Errorf("%w: index %d, rows have %d fields in %s", ErrColumnNotFound, j, width, source)
				}
			}
		}

		for _, j := range present {
			v, err := strconv.ParseFloat(cleanField(record[j]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s line %d field %d: %q", ErrMalformedRow, source, line+row, j+1, record[j])
			}
			data = append(data, v)
		}
		rows++
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrNoSamples, source)
	}

	table := mat.NewDense(rows, len(present), data)
	rec := &Recording{Source: source}

	col := 0
	for i, j := range idx {
		if j < 0 {
			continue
		}
		values := mat.Col(nil, col, table)
		col++

		switch i {
		case 0:
			rec.Time = ToSeconds(values, layout.TimeUnit)
		case 1:
			rec.X = values
		case 2:
			rec.Y = values
		case 3:
			rec.Z = values
		}
		if i > 0 && layout.accelScale() != 1 {
			floats.Scale(layout.accelScale(), values)
		}
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return rec, nil
}

func splitHeader(text string, comma rune) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = comma
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	fields, err := cr.Read()
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i] = cleanField(fields[i])
	}
	return fields, nil
}

// WriteCSV writes rec in the given layout so that Load reads it back.
// Timestamps are converted back to the raw unit and rounded to three
// decimals.
func WriteCSV(w io.Writer, rec *Recording, layout Layout) error {
	if err := layout.Validate(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	preamble := layout.Skip
	for i := 0; i < preamble; i++ {
		fmt.Fprintf(bw, "# accelscope %s export, line %d\n", layout.Name, i+1)
	}
	if layout.HeaderToken != "" {
		fmt.Fprintf(bw, "source%c%s\n", layout.delimiter(), rec.Source)
	}

	channels := [4][]float64{rec.Time, rec.X, rec.Y, rec.Z}
	cols := layout.columns()

	width := 0
	for i, c := range cols {
		if !c.Present() || channels[i] == nil {
			continue
		}
		pos := width
		if c.ByIndex {
			pos = c.Index
		}
		if pos+1 > width {
			width = pos + 1
		}
	}

	order := make([]int, 4)
	header := make([]string, width)
	next := 0
	for i, c := range cols {
		order[i] = -1
		if !c.Present() || channels[i] == nil {
			continue
		}
		if c.ByIndex {
			order[i] = c.Index
		} else {
			for next < width && header[next] != "" {
				next++
			}
			order[i] = next
			header[next] = c.Name
		}
	}

	cw := csv.NewWriter(bw)
	cw.Comma = layout.delimiter()
	if layout.HasHeader || layout.HeaderToken != "" {
		if err := cw.Write(header); err != nil {
			return err
		}
	}

	row := make([]string, width)
	for k := range rec.Time {
		for i := range row {
			row[i] = "0"
		}
		for i, pos := range order {
			if pos < 0 {
				continue
			}
			v := channels[i][k]
			if i == 0 {
				v = math.Round(v*layout.TimeUnit*1000) / 1000
			} else {
				v /= layout.accelScale()
			}
			row[pos] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
