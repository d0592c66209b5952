package extract

import "regexp"

// region is the explicit result of one bounded search. Each stage of a
// structural scan operates only within the text its predecessor returned, so
// a match can never leak across unrelated brace-delimited regions.
type region struct {
	text string
	ok   bool
}

func findRegion(re *regexp.Regexp, within string) region {
	m := re.FindStringSubmatch(within)
	if m == nil {
		return region{}
	}
	return region{text: m[1], ok: true}
}

// then narrows the region with a further search; a miss anywhere in the
// chain yields a missing region.
func (r region) then(re *regexp.Regexp) region {
	if !r.ok {
		return region{}
	}
	return findRegion(re, r.text)
}
