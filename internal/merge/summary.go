package merge

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

var blankLinesRE = regexp.MustCompile(`\n\s*\n+`)

// Summary 组合图例与简介；placement 决定图例在前还是在后，空行被折叠。
func Summary(legend, synopsis string, placement domain.LegendPlacement) string {
	legend = strings.TrimSpace(legend)
	synopsis = strings.TrimSpace(synopsis)
	var s string
	switch {
	case legend == "":
		s = synopsis
	case synopsis == "":
		s = legend
	case placement == domain.LegendSuffix:
		s = synopsis + "\n" + legend
	default:
		s = legend + "\n" + synopsis
	}
	return blankLinesRE.ReplaceAllString(s, "\n")
}

func sortFold(ss []string) {
	slices.SortStableFunc(ss, func(a, b string) int {
		if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}
