package reconstruction

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ExportPositions writes the reconstructed trajectory, one row per sample.
// A ".dat" extension selects whitespace separation; anything else is
// written as CSV, and a missing extension defaults to ".csv".
func (s *Solver) ExportPositions(filename string) error {
	if !strings.HasSuffix(filename, ".csv") && !strings.HasSuffix(filename, ".dat") {
		filename += ".csv"
	}
	sep := ","
	header := "position_x,position_y,position_z"
	if strings.HasSuffix(filename, ".dat") {
		sep = " "
		header = "position_x position_y position_z"
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, header)
	for _, p := range s.Positions {
		fmt.Fprintf(w, "%v%s%v%s%v\n", p.X, sep, p.Y, sep, p.Z)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
