package report

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

const dateLayout = "2006-01-02"

// Aggregate folds the records of the civil dates [from, to] into per-day
// counts, the topN auto-logout offenders and a health summary. isAutoClosed
// recognises a forced logout by its cutoff signature. Every day of the
// window gets a row, so an empty input yields zeroed rows.
func Aggregate(records []attendance.Attendance, from, to time.Time, isAutoClosed func(time.Time) bool, topN int) ([]DailyCount, []Offender, Health) {
	var daily []DailyCount
	index := make(map[string]int)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(daily)
		daily = append(daily, DailyCount{Date: key})
	}

	worked := make([]time.Duration, len(daily))
	offenders := make(map[string]*Offender)

	for _, rec := range records {
		key := rec.DateOfWorking.Format(dateLayout)
		i, ok := index[key]
		if !ok {
			continue
		}
		day := &daily[i]

		switch {
		case rec.Status == attendance.StatusOnLeave:
			day.OnLeave++
			continue
		case rec.Status == attendance.StatusAbsent:
			day.Absent++
			continue
		case rec.LogoutTime == nil:
			day.NeverClosed++
			continue
		case isAutoClosed(*rec.LogoutTime):
			day.AutoClosed++
			o, ok := offenders[rec.EmployeeID]
			if !ok {
				o = &Offender{EmployeeID: rec.EmployeeID, EmployeeName: rec.EmployeeID}
				if rec.EmployeeName != nil && *rec.EmployeeName != "" {
					o.EmployeeName = *rec.EmployeeName
				}
				offenders[rec.EmployeeID] = o
			}
			o.Count++
			o.Dates = append(o.Dates, key)
		default:
			day.ManuallyClosed++
		}

		if d, ok := rec.Worked(); ok && d > 0 {
			worked[i] += d
		}
	}

	var health Health
	for i := range daily {
		daily[i].HoursWorked = round2(worked[i].Hours())
		health.TotalAutoLogouts += daily[i].AutoClosed
		if daily[i].AutoClosed > 0 {
			date := daily[i].Date
			health.MostRecentDayProcessed = &date
		}
	}
	if len(daily) > 0 {
		health.AveragePerDay = round2(float64(health.TotalAutoLogouts) / float64(len(daily)))
	}

	return daily, rankOffenders(offenders, topN), health
}

func rankOffenders(byEmployee map[string]*Offender, topN int) []Offender {
	ranked := make([]Offender, 0, len(byEmployee))
	for _, o := range byEmployee {
		sort.Strings(o.Dates)
		ranked = append(ranked, *o)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].EmployeeName != ranked[j].EmployeeName {
			return ranked[i].EmployeeName < ranked[j].EmployeeName
		}
		return ranked[i].EmployeeID < ranked[j].EmployeeID
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
