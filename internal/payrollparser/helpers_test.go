package payrollparser

import (
	"encoding/csv"
	"strings"
)

func splitCSV(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	rec, err := r.Read()
	if err != nil {
		panic(err)
	}
	return rec
}
