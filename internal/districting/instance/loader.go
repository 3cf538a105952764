// Package instance reads demand point instances from flat files.
//
// Two formats are supported: CSV with a header row naming the id, lat, long
// and demand columns, and the legacy whitespace-separated text layout
//
//	NAME: <name>
//	<ignored>
//	NODES: <n>
//	<ignored>
//	<id> <lat> <long> <demand>   (n rows)
//
// Every row is validated before it becomes a DemandPoint.
package instance

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/districting/internal/districting"
	"github.com/go-playground/validator/v10"
)

// ErrMalformed is returned when a file does not follow its declared format.
var ErrMalformed = errors.New("instance: malformed file")

// Format identifies an instance file layout.
type Format int

const (
	FormatCSV Format = iota + 1
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatText:
		return "text"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps "csv" or "text" to a Format. An empty name yields 0 so
// callers can fall back to FormatFromPath.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return 0, nil
	case "csv":
		return FormatCSV, nil
	case "text", "txt":
		return FormatText, nil
	}
	return 0, fmt.Errorf("unknown instance format %q", name)
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatText
}

// pointRow is the validated shape of one input row.
type pointRow struct {
	ID     int     `validate:"gte=0"`
	Lat    float64 `validate:"gte=-90,lte=90"`
	Long   float64 `validate:"gte=-180,lte=180"`
	Demand float64 `validate:"gte=0"`
}

var validate = validator.New()

func (r pointRow) point() districting.DemandPoint {
	return districting.DemandPoint{ID: r.ID, Lat: r.Lat, Long: r.Long, Demand: r.Demand}
}

// Load opens path and reads it in the given format. A zero format is
// inferred from the extension. The instance name defaults to the file's base
// name when the format carries none.
func Load(path string, format Format) (*districting.Instance, error) {
	if format == 0 {
		format = FormatFromPath(path)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open instance file: %w", err)
	}
	defer f.Close()

	var in *districting.Instance
	switch format {
	case FormatCSV:
		in, err = ReadCSV(f)
	case FormatText:
		in, err = ReadText(f)
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if in.Name == "" {
		in.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return in, nil
}

// ReadCSV reads a CSV instance. The header must name id, lat (or latitude),
// long (or lon, longitude) and demand columns in any order; extra columns are
// ignored.
func ReadCSV(r io.Reader) (*districting.Instance, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", districting.ErrInvalidInstance)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	in := &districting.Instance{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRow(rec[cols.id], rec[cols.lat], rec[cols.long], rec[cols.demand])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		in.Points = append(in.Points, row.point())
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

type csvColumns struct {
	id, lat, long, demand int
}

func columnIndex(header []string) (csvColumns, error) {
	cols := csvColumns{id: -1, lat: -1, long: -1, demand: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id":
			cols.id = i
		case "lat", "latitude":
			cols.lat = i
		case "long", "lon", "lng", "longitude":
			cols.long = i
		case "demand":
			cols.demand = i
		}
	}
	if cols.id < 0 || cols.lat < 0 || cols.long < 0 || cols.demand < 0 {
		return cols, fmt.Errorf("header %v must name id, lat, long and demand: %w", header, ErrMalformed)
	}
	return cols, nil
}

// ReadText reads the legacy text layout described in the package comment.
func ReadText(r io.Reader) (*districting.Instance, error) {
	sc := bufio.NewScanner(r)
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	nameLine, ok := next()
	if !ok {
		return nil, fmt.Errorf("empty file: %w", districting.ErrInvalidInstance)
	}
	nameFields := strings.Fields(nameLine)
	if len(nameFields) < 2 {
		return nil, fmt.Errorf("line 1: expected name, got %q: %w", nameLine, ErrMalformed)
	}
	in := &districting.Instance{Name: nameFields[1]}

	if _, ok := next(); !ok {
		return nil, fmt.Errorf("line 2: unexpected end of file: %w", ErrMalformed)
	}

	countLine, ok := next()
	if !ok {
		return nil, fmt.Errorf("line 3: unexpected end of file: %w", ErrMalformed)
	}
	countFields := strings.Fields(countLine)
	if len(countFields) < 2 {
		return nil, fmt.Errorf("line 3: expected node count, got %q: %w", countLine, ErrMalformed)
	}
	n, err := strconv.Atoi(countFields[1])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("line 3: invalid node count %q: %w", countFields[1], ErrMalformed)
	}

	if _, ok := next(); !ok {
		return nil, fmt.Errorf("line 4: unexpected end of file: %w", ErrMalformed)
	}

	for i := 0; i < n; i++ {
		lineNo := 5 + i
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("line %d: expected %d nodes, got %d: %w", lineNo, n, i, ErrMalformed)
		}
		f := strings.Fields(line)
		if len(f) < 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d: %w", lineNo, len(f), ErrMalformed)
		}
		row, err := parseRow(f[0], f[1], f[2], f[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		in.Points = append(in.Points, row.point())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read instance: %w", err)
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func parseRow(id, lat, long, demand string) (pointRow, error) {
	var (
		row pointRow
		err error
	)
	if row.ID, err = strconv.Atoi(strings.TrimSpace(id)); err != nil {
		return row, fmt.Errorf("invalid id %q: %w", id, ErrMalformed)
	}
	if row.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return row, fmt.Errorf("invalid lat %q: %w", lat, ErrMalformed)
	}
	if row.Long, err = strconv.ParseFloat(strings.TrimSpace(long), 64); err != nil {
		return row, fmt.Errorf("invalid long %q: %w", long, ErrMalformed)
	}
	if row.Demand, err = strconv.ParseFloat(strings.TrimSpace(demand), 64); err != nil {
		return row, fmt.Errorf("invalid demand %q: %w", demand, ErrMalformed)
	}
	// ParseFloat accepts "Inf" and "NaN", which the range tags let through.
	if math.IsNaN(row.Demand) || math.IsInf(row.Demand, 0) {
		return row, fmt.Errorf("non-finite demand %q: %w", demand, ErrMalformed)
	}
	if err := validate.Struct(row); err != nil {
		return row, fmt.Errorf("point %d: %v: %w", row.ID, err, ErrMalformed)
	}
	return row, nil
}
