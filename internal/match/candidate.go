package match

import (
	"time"

	"github.com/John-Robertt/filmmatch/internal/domain"
)

// Verdict 是一个候选经过全部启用匹配器后的结论。
type Verdict struct {
	Results []Result
	// Rejection 是第一个未接受的结果（Accepted()==true 时为零值）。
	Rejection Result
	Date      time.Time
	Score     float64
}

func (v Verdict) Accepted() bool { return v.Rejection.Outcome == 0 }

// Candidate 依次运行 title -> studio -> date -> duration(site，按偏好启用)，遇到第一个未接受立即返回。
func Candidate(exp domain.Expectation, cand domain.Candidate, p domain.Prefs) Verdict {
	var v Verdict
	check := func(r Result) bool {
		v.Results = append(v.Results, r)
		if !r.Accepted() {
			v.Rejection = r
			return false
		}
		return true
	}

	t := Title(exp, cand, p.TitleSimilarity)
	if !check(t) {
		return v
	}
	v.Score = t.Score

	if !check(Studio(exp, cand.Studio)) {
		return v
	}

	d := Date(exp, cand)
	if !check(d) {
		return v
	}
	v.Date = d.Date

	if p.MatchAgainstSiteDuration {
		if !check(Duration(exp, cand.Duration, p.DurationToleranceMinutes, "site")) {
			return v
		}
	}
	return v
}
