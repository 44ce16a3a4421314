package app

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"

	"HazardDrill/internal/drill"
	"HazardDrill/internal/locale"
)

// Summary aggregates a batch.
type Summary struct {
	Runs    int            `json:"runs"`
	Mean    float64        `json:"mean"`
	Best    float64        `json:"best"`
	Worst   float64        `json:"worst"`
	TotalXP int            `json:"total_xp"`
	Grades  map[string]int `json:"grades"`
	Badges  map[string]int `json:"badges"`
}

// Summarize computes batch statistics.
func Summarize(results []RunResult) Summary {
	s := Summary{Runs: len(results), Grades: map[string]int{}, Badges: map[string]int{}}
	if len(results) == 0 {
		return s
	}
	s.Best, s.Worst = results[0].Result.Score, results[0].Result.Score
	total := 0.0
	for _, r := range results {
		res := r.Result
		total += res.Score
		s.Best = max(s.Best, res.Score)
		s.Worst = min(s.Worst, res.Score)
		s.TotalXP += res.XP
		s.Grades[res.Grade.Label]++
		for _, b := range res.Badges {
			s.Badges[b.ID]++
		}
	}
	s.Mean = total / float64(len(results))
	return s
}

var reportText = map[string]locale.Text{
	"run":     locale.EnHi("run", "रन"),
	"seed":    locale.EnHi("seed", "सीड"),
	"score":   locale.EnHi("score", "स्कोर"),
	"grade":   locale.EnHi("grade", "ग्रेड"),
	"badges":  locale.EnHi("badges", "बैज"),
	"none":    locale.EnHi("none", "कोई नहीं"),
	"summary": locale.EnHi("Summary", "सारांश"),
	"mean":    locale.EnHi("mean", "औसत"),
	"best":    locale.EnHi("best", "सर्वश्रेष्ठ"),
	"worst":   locale.EnHi("worst", "न्यूनतम"),
	"runs":    locale.EnHi("runs", "रन"),
}

func label(key string, tag language.Tag) string { return reportText[key].In(tag) }

func runName(n int, tag language.Tag) string {
	base, _ := tag.Base()
	if base.String() == "en" {
		return humanize.Ordinal(n) + " " + label("run", tag)
	}
	return fmt.Sprintf("%s %d", label("run", tag), n)
}

// WriteReport prints a localized per-run and summary report.
func WriteReport(w io.Writer, tag language.Tag, cfg drill.ScenarioConfig, results []RunResult) error {
	p := locale.Printer(tag)
	var b strings.Builder

	b.WriteString(cfg.Title.In(tag))
	b.WriteString(" (")
	b.WriteString(cfg.Difficulty.Label.In(tag))
	b.WriteString(")\n")

	badgeNames := make(map[string]string, len(cfg.Scoring.Badges))
	for _, bd := range cfg.Scoring.Badges {
		badgeNames[bd.ID] = bd.Name.In(tag)
	}

	for _, r := range results {
		res := r.Result
		names := make([]string, 0, len(res.Badges))
		for _, bd := range res.Badges {
			names = append(names, bd.Name.In(tag))
		}
		badges := label("none", tag)
		if len(names) > 0 {
			badges = strings.Join(names, ", ")
		}
		b.WriteString(p.Sprintf("%s (%s %s): %s %.1f, %s %s (%s), XP %d, %s: %s\n",
			runName(r.Run, tag), label("seed", tag), strconv.FormatInt(r.Seed, 10),
			label("score", tag), res.Score,
			label("grade", tag), res.Grade.Label, res.Grade.Title.In(tag),
			res.XP, label("badges", tag), badges))
	}

	s := Summarize(results)
	b.WriteString(p.Sprintf("%s: %d %s, %s %.1f, %s %.1f, %s %.1f, XP %s\n",
		label("summary", tag), s.Runs, label("runs", tag),
		label("mean", tag), s.Mean, label("best", tag), s.Best, label("worst", tag), s.Worst,
		humanize.Comma(int64(s.TotalXP))))

	grades := make([]string, 0, len(s.Grades))
	for g := range s.Grades {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	for _, g := range grades {
		b.WriteString(p.Sprintf("  %s %s: %d\n", label("grade", tag), g, s.Grades[g]))
	}
	ids := make([]string, 0, len(s.Badges))
	for id := range s.Badges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		name := badgeNames[id]
		if name == "" {
			name = id
		}
		b.WriteString(p.Sprintf("  %s: %d\n", name, s.Badges[id]))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
