package provider

import (
	"math"
	"strconv"
	"strings"
)

// ExtractInt normalizes a numeric cell as written by the published CSVs.
//
// Integer columns are often serialized as floats ("12.0") and missing values
// as "NA" or an empty cell; both missing forms read as zero.
//
// Returns ok=false if the cell is not numeric.
func ExtractInt(cell string) (int, bool) {
	v := strings.TrimSpace(cell)
	if v == "" || v == "NA" {
		return 0, true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

// ExtractBool normalizes a flag cell. Flags arrive as 0/1, 0.0/1.0 or
// TRUE/FALSE; missing reads as false.
//
// Returns ok=false if the cell is not a recognizable flag.
func ExtractBool(cell string) (bool, bool) {
	v := strings.TrimSpace(cell)
	switch strings.ToUpper(v) {
	case "", "NA", "0", "0.0", "FALSE", "F":
		return false, true
	case "1", "1.0", "TRUE", "T":
		return true, true
	}
	if n, ok := ExtractInt(v); ok {
		return n != 0, true
	}
	return false, false
}

// ExtractString trims a text cell and maps "NA" to empty.
func ExtractString(cell string) string {
	v := strings.TrimSpace(cell)
	if v == "NA" {
		return ""
	}
	return v
}
