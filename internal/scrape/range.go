package scrape

import (
	"strconv"

	"github.com/VariableSan/ranobe-scraper/pkg/models"
)

// SingleRange builds the span label for sites whose hrefs carry one ordinal.
// parse extracts the raw ordinal token from an href. When both endpoints are
// numeric the label is ordered start <= end regardless of selection order;
// otherwise the raw tokens are kept verbatim, unswapped.
func SingleRange(hrefs []string, parse func(string) string) models.RangeLabel {
	if len(hrefs) == 0 {
		return models.RangeLabel{}
	}

	start := parse(hrefs[0])
	end := parse(hrefs[len(hrefs)-1])

	s, serr := strconv.Atoi(start)
	e, eerr := strconv.Atoi(end)
	if serr == nil && eerr == nil && s > e {
		start, end = end, start
	}

	return models.RangeLabel{Start: start, End: end}
}

// VolumeChapterRange builds the span label for sites whose hrefs carry a
// volume+chapter ordinal pair. parse extracts the raw (volume, chapter)
// tokens. Endpoints are compared by volume then chapter; non-numeric tokens
// disable the swap and are kept verbatim.
func VolumeChapterRange(hrefs []string, parse func(string) (string, string)) models.RangeLabel {
	if len(hrefs) == 0 {
		return models.RangeLabel{}
	}

	sVol, sChap := parse(hrefs[0])
	eVol, eChap := parse(hrefs[len(hrefs)-1])

	sv, err1 := strconv.Atoi(sVol)
	sc, err2 := strconv.Atoi(sChap)
	ev, err3 := strconv.Atoi(eVol)
	ec, err4 := strconv.Atoi(eChap)

	if err1 == nil && err2 == nil && err3 == nil && err4 == nil {
		if sv > ev || (sv == ev && sc > ec) {
			sVol, sChap, eVol, eChap = eVol, eChap, sVol, sChap
		}
	}

	return models.RangeLabel{
		Start: "Vol " + sVol + " Chap " + sChap,
		End:   "Vol " + eVol + " Chap " + eChap,
	}
}
