package scoring

import (
	"regexp"
	"strconv"
)

var forYardsRe = regexp.MustCompile(`\bfor (-?\d+) yards?\b`)

// LateralReturnYards sums every "for N yard(s)" phrase in a play description.
// On a return with laterals each ball carrier's gain is written as its own
// phrase and the numeric return_yards field only holds the first one.
//
// ok is false when no phrase was found; "for no gain" is not a phrase.
func LateralReturnYards(desc string) (yards int, ok bool) {
	for _, m := range forYardsRe.FindAllStringSubmatch(desc, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		yards += n
		ok = true
	}
	return yards, ok
}
