// Package paris holds the rules mapping postal codes, INSEE codes and free
// text labels to one of the twenty arrondissements.
package paris

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	postalPattern = regexp.MustCompile(`^750(0[1-9]|1[0-9]|20)$`)
	inseePattern  = regexp.MustCompile(`^751(0[1-9]|1[0-9]|20)$`)
	firstNumber   = regexp.MustCompile(`\d{1,2}`)
	fiveDigits    = regexp.MustCompile(`\d{5}`)
	floatSuffix   = regexp.MustCompile(`^(\d+)\.0+$`)
)

// NormalizeCode trims whitespace and drops a float artefact such as "75006.0"
// left by spreadsheet exports.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if m := floatSuffix.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return code
}

// PostalDistrict returns the arrondissement for a 750XX postal code.
func PostalDistrict(code string) (int, bool) {
	return match(postalPattern, NormalizeCode(code))
}

// INSEEDistrict returns the arrondissement for a 751XX commune code.
func INSEEDistrict(code string) (int, bool) {
	return match(inseePattern, NormalizeCode(code))
}

// TextDistrict takes the first one or two digit number of a label such as
// "6ème Arrdt" and accepts it when it lies in [1,20].
func TextDistrict(label string) (int, bool) {
	m := firstNumber.FindString(label)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || !Valid(n) {
		return 0, false
	}
	return n, true
}

// ExtractPostalCode returns the first five digit group of s, which may hold
// several codes or an address.
func ExtractPostalCode(s string) (string, bool) {
	m := fiveDigits.FindString(NormalizeCode(s))
	return m, m != ""
}

// PostalCode formats the 750XX postal code for district n.
func PostalCode(n int) string {
	return "750" + twoDigits(n)
}

// Valid reports whether n is an arrondissement number.
func Valid(n int) bool {
	return n >= 1 && n <= 20
}

func match(pattern *regexp.Regexp, code string) (int, bool) {
	m := pattern.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
