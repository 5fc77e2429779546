package attendance

import "math"

// WorkerStats are attendance counts for one worker.
type WorkerStats struct {
	TotalDays      int
	PresentDays    int
	AbsentDays     int
	LateDays       int
	AttendanceRate int
}

// ComputeWorkerStats aggregates a worker's records. The attendance rate is
// the rounded percentage of present records, or 0 without records.
func ComputeWorkerStats(records []WorkRecord) WorkerStats {
	var st WorkerStats
	for _, r := range records {
		st.TotalDays++
		switch r.Status {
		case StatusPresent:
			st.PresentDays++
		case StatusAbsent:
			st.AbsentDays++
		case StatusLate:
			st.LateDays++
		}
	}
	st.AttendanceRate = percent(st.PresentDays, st.TotalDays)
	return st
}

// Summary holds dataset-wide metrics for a given date.
type Summary struct {
	Date                  string
	Workers               int
	Records               int
	UniqueDays            int
	PresentOnDate         int
	AbsentOnDate          int
	AverageAttendanceRate int
}

// Summarize derives global metrics. The average attendance rate is the
// rounded mean of the per-worker rates.
func Summarize(ds Dataset, date string) Summary {
	sum := Summary{
		Date:    date,
		Workers: len(ds.Workers),
		Records: len(ds.WorkRecords),
	}

	days := make(map[string]struct{})
	byWorker := make(map[string][]WorkRecord)
	for _, r := range ds.WorkRecords {
		days[r.Date] = struct{}{}
		byWorker[r.WorkerID] = append(byWorker[r.WorkerID], r)
		if r.Date != date {
			continue
		}
		switch r.Status {
		case StatusPresent:
			sum.PresentOnDate++
		case StatusAbsent:
			sum.AbsentOnDate++
		}
	}
	sum.UniqueDays = len(days)

	if len(ds.Workers) > 0 {
		total := 0
		for _, w := range ds.Workers {
			total += ComputeWorkerStats(byWorker[w.ID]).AttendanceRate
		}
		sum.AverageAttendanceRate = int(math.Round(float64(total) / float64(len(ds.Workers))))
	}
	return sum
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
