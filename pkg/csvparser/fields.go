package csvparser

import "strings"

const fieldCutset = " \""

// SplitFields splits line on every comma and trims spaces and double quotes
// from both ends of each field. Commas inside quotes are not special; use
// SplitQuotedFields when quoted fields may hold commas.
func SplitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.Trim(f, fieldCutset)
	}
	return fields
}

// SplitQuotedFields splits line on commas preceded by an even number of
// double quotes and trims fields like SplitFields.
func SplitQuotedFields(line string) []string {
	fields := make([]string, 0, strings.Count(line, ",")+1)
	quotes := 0
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quotes++
		case ',':
			if quotes%2 == 0 {
				fields = append(fields, strings.Trim(line[start:i], fieldCutset))
				start = i + 1
			}
		}
	}
	return append(fields, strings.Trim(line[start:], fieldCutset))
}
