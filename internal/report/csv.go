package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/lightcurve/internal/transit"
)

// WriteCSV writes one row per sample with columns time and flux. When geo
// is non-nil it must be index aligned with s and adds the projected
// separation z and whether the planet is in front of the star.
func WriteCSV(w io.Writer, s Series, geo []transit.Geometry) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if geo != nil && len(geo) != len(s.Times) {
		return fmt.Errorf("geometry has %d samples, series has %d", len(geo), len(s.Times))
	}

	cw := csv.NewWriter(w)
	header := []string{"time", "flux"}
	if geo != nil {
		header = append(header, "z", "in_front")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := range s.Times {
		row[0] = strconv.FormatFloat(s.Times[i], 'g', -1, 64)
		row[1] = strconv.FormatFloat(s.Flux[i], 'g', -1, 64)
		if geo != nil {
			row[2] = strconv.FormatFloat(geo[i].Z, 'g', -1, 64)
			row[3] = strconv.FormatBool(geo[i].InFront)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV table to path.
func WriteCSVFile(path string, s Series, geo []transit.Geometry) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, s, geo); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
