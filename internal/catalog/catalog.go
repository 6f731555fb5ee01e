// Package catalog loads the static exercise reference data used to ground
// workout plan generation. The catalog is read once per process and never
// modified; row order follows the source file.
package catalog

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed exercises.csv
var defaultFS embed.FS

// Exercise is one read-only catalog row.
type Exercise struct {
	Name       string
	BodyPart   string
	Equipment  string
	Difficulty string // Beginner, Intermediate, Advanced
	InjuryRisk string // Low, Medium, High
}

// Load reads the exercise catalog from path. An empty path loads the
// embedded default dataset.
func Load(path string) ([]Exercise, error) {
	if path == "" {
		f, err := defaultFS.Open("exercises.csv")
		if err != nil {
			return nil, fmt.Errorf("opening embedded catalog: %w", err)
		}
		defer f.Close()
		return parse(f)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

// expected header columns, in order.
var columns = []string{"ExerciseName", "BodyPart", "Equipment", "Difficulty", "InjuryRisk"}

func parse(r io.Reader) ([]Exercise, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("catalog missing column %q", col)
		}
	}

	var exercises []Exercise
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog row: %w", err)
		}
		exercises = append(exercises, Exercise{
			Name:       record[idx["ExerciseName"]],
			BodyPart:   record[idx["BodyPart"]],
			Equipment:  record[idx["Equipment"]],
			Difficulty: record[idx["Difficulty"]],
			InjuryRisk: record[idx["InjuryRisk"]],
		})
	}
	return exercises, nil
}
