package reconstruction

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NodalCounts holds one measurement field per detector: Counts[d][v] is the
// modeled count of detector d at mesh vertex v. The fields are produced by
// an external projection step and persisted between runs.
type NodalCounts struct {
	Counts [][]float64
}

// NumDetectors returns the number of detector fields.
func (nc *NodalCounts) NumDetectors() int {
	return len(nc.Counts)
}

// LoadNodalCounts reads one count field per file, one value per line, in
// mesh vertex order. Every field must cover exactly numVertices vertices.
func LoadNodalCounts(files []string, numVertices int) (*NodalCounts, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no nodal count files given")
	}
	nc := &NodalCounts{Counts: make([][]float64, len(files))}
	for d, file := range files {
		values, err := readFloatFile(file)
		if err != nil {
			return nil, fmt.Errorf("detector %d: %v", d, err)
		}
		if len(values) != numVertices {
			return nil, fmt.Errorf("detector %d: %d nodal counts for %d mesh vertices",
				d, len(values), numVertices)
		}
		nc.Counts[d] = values
	}
	return nc, nil
}

// Save writes every detector field to prefix_detectorNN.counts, one value
// per line, and returns the file names written.
func (nc *NodalCounts) Save(prefix string) ([]string, error) {
	files := make([]string, len(nc.Counts))
	for d, values := range nc.Counts {
		name := fmt.Sprintf("%s_detector%02d.counts", prefix, d)
		f, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		w := bufio.NewWriter(f)
		for _, v := range values {
			fmt.Fprintf(w, "%v\n", v)
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		files[d] = name
	}
	return files, nil
}

// ReadExperimentalCounts reads the measured count samples: one row per
// sample, one whitespace-separated column per detector.
func ReadExperimentalCounts(filename string, numDetectors int) ([][]float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples [][]float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != numDetectors {
			return nil, fmt.Errorf("%s:%d: %d columns for %d detectors",
				filename, line, len(fields), numDetectors)
		}
		row := make([]float64, numDetectors)
		for i, field := range fields {
			row[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %v", filename, line, err)
			}
		}
		samples = append(samples, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func readFloatFile(filename string) ([]float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		for _, field := range strings.Fields(scanner.Text()) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %v", filename, line, err)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
