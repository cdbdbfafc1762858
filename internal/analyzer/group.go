package analyzer

import (
	"math"
	"slices"
	"strings"
	"time"

	"tccretro/internal/records"
)

// keyFunc extracts a group label from a record. An empty label is folded into
// Unspecified.
type keyFunc func(records.Record) string

// aggregate groups rs by key and computes per-group and total metrics.
func aggregate(name, title string, rs []records.Record, key keyFunc) (Result, error) {
	if len(rs) == 0 {
		return Result{}, &AnalysisError{Analyzer: name, Reason: ReasonEmptyInput}
	}

	res := Result{Name: name, Title: title, Records: len(rs)}
	index := make(map[string]int)
	for _, rec := range rs {
		label := strings.TrimSpace(key(rec))
		if label == "" {
			label = Unspecified
		}
		i, ok := index[label]
		if !ok {
			i = len(res.Categories)
			index[label] = i
			res.Categories = append(res.Categories, Category{Label: label})
		}

		est, ok := records.ParseDuration(rec.Estimated)
		if !ok {
			res.ParseErrors++
		}
		act, ok := records.ParseDuration(rec.Actual)
		if !ok {
			res.ParseErrors++
		}
		c := &res.Categories[i]
		c.Estimated += est
		c.Actual += act
		c.Count++
		res.TotalEstimated += est
		res.TotalActual += act
	}

	for i := range res.Categories {
		c := &res.Categories[i]
		c.Variance = c.Actual - c.Estimated
		c.Share = share(c.Actual, res.TotalActual)
	}
	slices.SortStableFunc(res.Categories, func(a, b Category) int {
		if a.Actual != b.Actual {
			if a.Actual > b.Actual {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	})
	return res, nil
}

func share(part, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
