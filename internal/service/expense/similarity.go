package expense

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seu-repo/jarvis/internal/domain"
)

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK returns up to k expenses most similar to query, best first.
// Expenses whose vectors have a different dimension are skipped.
func TopK(query []float64, expenses []domain.Expense, k int) []domain.Expense {
	type scored struct {
		e     domain.Expense
		score float64
	}
	ranked := make([]scored, 0, len(expenses))
	for _, e := range expenses {
		if len(e.Embedding) != len(query) || len(query) == 0 {
			continue
		}
		ranked = append(ranked, scored{e: e, score: cosine(query, e.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]domain.Expense, len(ranked))
	for i, r := range ranked {
		out[i] = r.e
	}
	return out
}

// PeriodRange resolves a spoken period into a half-open [from, to) range.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, bool) {
	p := strings.ToLower(strings.TrimSpace(period))
	y, m, d := now.Date()
	loc := now.Location()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch p {
	case "today":
		return today, today.AddDate(0, 0, 1), true
	case "yesterday":
		return today.AddDate(0, 0, -1), today, true
	case "this week":
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case "last week":
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset-7)
		return start, start.AddDate(0, 0, 7), true
	case "this month":
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), true
	case "last month":
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return start, start.AddDate(0, 1, 0), true
	case "this year":
		start := time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), true
	}

	// "last N days"
	fields := strings.Fields(p)
	if len(fields) == 3 && fields[0] == "last" && (fields[2] == "days" || fields[2] == "day") {
		if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
			return today.AddDate(0, 0, -n+1), today.AddDate(0, 0, 1), true
		}
	}
	return time.Time{}, time.Time{}, false
}
