// Package vin handles Vehicle Identification Number parsing and validation:
// ISO 3779 format, North-American check digit, and model-year decoding.
package vin

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidFormat = errors.New("vin: must be 17 characters A-Z0-9 excluding I, O, Q")
	ErrCheckDigit    = errors.New("vin: check digit mismatch")
	ErrInvalidYear   = errors.New("vin: invalid model year code")
)

// vinRegex matches a 17-character VIN. I, O and Q are never used to avoid
// confusion with 1 and 0.
var vinRegex = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// transliteration maps VIN letters to their check-digit values (ISO 3779).
var transliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

// weights for each of the 17 positions; position 9 (the check digit itself)
// carries weight 0.
var weights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// yearCodes maps the position-10 code to an offset within a 30-year cycle
// starting 1980.
var yearCodes = map[byte]int{
	'A': 0, 'B': 1, 'C': 2, 'D': 3, 'E': 4, 'F': 5, 'G': 6, 'H': 7,
	'J': 8, 'K': 9, 'L': 10, 'M': 11, 'N': 12, 'P': 13, 'R': 14,
	'S': 15, 'T': 16, 'V': 17, 'W': 18, 'X': 19, 'Y': 20,
	'1': 21, '2': 22, '3': 23, '4': 24, '5': 25, '6': 26, '7': 27,
	'8': 28, '9': 29,
}

// VIN is a parsed, validated vehicle identification number.
type VIN struct {
	Raw          string `json:"raw"`
	WMI          string `json:"wmi"`           // world manufacturer identifier (1-3)
	VDS          string `json:"vds"`           // vehicle descriptor section (4-9)
	VIS          string `json:"vis"`           // vehicle identifier section (10-17)
	ModelYear    int    `json:"model_year"`
	SerialNumber string `json:"serial_number"` // positions 12-17
}

// Parse validates a VIN and decodes its sections. Input is case-insensitive.
func Parse(raw string) (*VIN, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))

	if !vinRegex.MatchString(v) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	if computeCheckDigit(v) != v[8] {
		return nil, fmt.Errorf("%w: %s", ErrCheckDigit, v)
	}

	year, err := decodeModelYear(v)
	if err != nil {
		return nil, err
	}

	return &VIN{
		Raw:          v,
		WMI:          v[:3],
		VDS:          v[3:9],
		VIS:          v[9:],
		ModelYear:    year,
		SerialNumber: v[11:],
	}, nil
}

// computeCheckDigit returns the expected position-9 character: the weighted
// transliterated sum mod 11, with 10 written as 'X'.
func computeCheckDigit(v string) byte {
	sum := 0
	for i := 0; i < 17; i++ {
		c := v[i]
		val := 0
		if c >= '0' && c <= '9' {
			val = int(c - '0')
		} else {
			val = transliteration[c]
		}
		sum += val * weights[i]
	}
	rem := sum % 11
	if rem == 10 {
		return 'X'
	}
	return byte('0' + rem)
}

// decodeModelYear decodes the position-10 year code. The code repeats on a
// 30-year cycle; per the post-2009 convention, a letter in position 7
// selects the 2010–2039 cycle, a digit the 1980–2009 cycle.
func decodeModelYear(v string) (int, error) {
	offset, ok := yearCodes[v[9]]
	if !ok {
		return 0, fmt.Errorf("%w: %c", ErrInvalidYear, v[9])
	}
	base := 1980
	if v[6] >= 'A' {
		base = 2010
	}
	return base + offset, nil
}
