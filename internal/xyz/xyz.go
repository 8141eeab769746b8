// Package xyz reads and writes plain-text xyz point files: one point per
// line, coordinates separated by whitespace.
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// Read parses points from xyz text. Blank lines and lines starting with #
// are skipped, and columns past the third (stored normals, colors) are
// ignored.
func Read(r io.Reader) ([]r3.Vector, error) {
	var points []r3.Vector
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: want at least 3 coordinates, got %d", line, len(fields))
		}
		var coords [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			coords[i] = v
		}
		points = append(points, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// ReadFile reads an xyz file from disk.
func ReadFile(path string) ([]r3.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	points, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// Write writes one "x y z" line per point.
func Write(w io.Writer, points []r3.Vector) error {
	bw := bufio.NewWriter(w)
	for _, pt := range points {
		if _, err := fmt.Fprintf(bw, "%g %g %g\n", pt.X, pt.Y, pt.Z); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteNormals writes one "x y z nx ny nz" line per point. The two slices
// must be the same length.
func WriteNormals(w io.Writer, points, normals []r3.Vector) error {
	if len(points) != len(normals) {
		return fmt.Errorf("have %d points but %d normals", len(points), len(normals))
	}
	bw := bufio.NewWriter(w)
	for i, pt := range points {
		n := normals[i]
		if _, err := fmt.Fprintf(bw, "%g %g %g %g %g %g\n", pt.X, pt.Y, pt.Z, n.X, n.Y, n.Z); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes an xyz file to disk. When normals is non-nil each line
// carries six columns, point then normal.
func WriteFile(path string, points, normals []r3.Vector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var werr error
	if normals == nil {
		werr = Write(f, points)
	} else {
		werr = WriteNormals(f, points, normals)
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("%s: %w", path, werr)
	}
	return nil
}
