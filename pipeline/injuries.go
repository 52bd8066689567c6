package pipeline

import (
	"sort"

	"nfl-projections-go/models"
)

// MissingCategory names the one-hot column of a missing status.
const MissingCategory = "nan"

// InjuryFeatures is the one-hot encoded injury table.
type InjuryFeatures struct {
	// Names are the encoded columns: report_status_* then practice_status_*.
	Names []string
	ByKey map[Key]map[string]float64
}

// EncodeInjuries one-hot encodes report and practice status. Categories are
// sorted with the missing category last. When a player-week is reported more
// than once the last report wins.
func EncodeInjuries(reports []models.InjuryReport) InjuryFeatures {
	reportCats := categories(reports, func(r models.InjuryReport) string { return r.ReportStatus })
	practiceCats := categories(reports, func(r models.InjuryReport) string { return r.PracticeStatus })

	names := make([]string, 0, len(reportCats)+len(practiceCats))
	for _, c := range reportCats {
		names = append(names, "report_status_"+c)
	}
	for _, c := range practiceCats {
		names = append(names, "practice_status_"+c)
	}

	byKey := make(map[Key]map[string]float64, len(reports))
	for _, r := range reports {
		row := make(map[string]float64, len(names))
		for _, n := range names {
			row[n] = 0
		}
		row["report_status_"+categoryOf(r.ReportStatus)] = 1
		row["practice_status_"+categoryOf(r.PracticeStatus)] = 1
		byKey[Key{PlayerID: r.PlayerID, Season: r.Season, Week: r.Week}] = row
	}

	return InjuryFeatures{Names: names, ByKey: byKey}
}

func categoryOf(status string) string {
	if status == "" {
		return MissingCategory
	}
	return status
}

func categories(reports []models.InjuryReport, field func(models.InjuryReport) string) []string {
	seen := make(map[string]struct{})
	missing := false
	for _, r := range reports {
		v := field(r)
		if v == "" {
			missing = true
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen)+1)
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	if missing {
		out = append(out, MissingCategory)
	}
	return out
}
