package usage

import (
	"sort"
	"sync"
	"time"

	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/span"
	"github.com/sgostarter/libtemporal/temporal"
)

type MergeData func(dOld, dNew interface{}) interface{}

func MergeReplace(_, dNew interface{}) interface{} {
	return dNew
}

func MergeIgnore(dOld, _ interface{}) interface{} {
	return dOld
}

type StatusTimeUsageData struct {
	Duration time.Duration
	D        interface{}
}

// TimeUsage tracks how long something spends in each status. Time before the
// first update is accounted to status 0.
type TimeUsage interface {
	Update(status int, d interface{})
	UpdateAt(status int, d interface{}, at time.Time) error

	// Timeline returns the status history as a step function.
	Timeline() temporal.Temporal[int64]

	DoStatisticsAndClean(tsB, tsE time.Time) map[int]*StatusTimeUsageData
	DoStatisticsAndCleanEx(tsB, tsE time.Time, md MergeData) map[int]*StatusTimeUsageData

	GetStatusStatistics(tsB, tsE time.Time, statuses []int) []*StatusTimeUsageData
	GetStatusStatisticsEx(tsB, tsE time.Time, statuses []int, clearData bool, md MergeData) []*StatusTimeUsageData

	GetStatusStatisticsAndClean(tsB, tsE time.Time, statuses []int) []*StatusTimeUsageData
	GetStatusStatisticsAndCleanEx(tsB, tsE time.Time, statuses []int, md MergeData) []*StatusTimeUsageData
}

func NewTimeUsage() TimeUsage {
	return &timeUsageImpl{}
}

type timeUsageImpl struct {
	sync.Mutex

	timeline temporal.Temporal[int64]
	ds       []statusWithTime
}

type statusWithTime struct {
	status int
	d      interface{}
	at     span.Timestamp
}

func (ts *timeUsageImpl) Update(status int, d interface{}) {
	_ = ts.UpdateAt(status, d, time.Now())
}

func (ts *timeUsageImpl) UpdateAt(status int, d interface{}, at time.Time) (err error) {
	ts.Lock()
	defer ts.Unlock()

	inst := temporal.Instant[int64]{Value: int64(status), T: span.FromTime(at)}

	var timeline temporal.Temporal[int64]

	if ts.timeline == nil {
		timeline, err = temporal.NewTInstantInterp[int64](carrier.Int{}, inst.Value, inst.T, carrier.Step)
	} else {
		timeline, err = temporal.AppendInstant(ts.timeline, inst, temporal.Gap{})
	}

	if err != nil {
		return
	}

	ts.timeline = timeline

	ts.ds = append(ts.ds, statusWithTime{
		status: status,
		d:      d,
		at:     inst.T,
	})

	return
}

func (ts *timeUsageImpl) Timeline() temporal.Temporal[int64] {
	ts.Lock()
	defer ts.Unlock()

	if ts.timeline == nil {
		return nil
	}

	return ts.timeline.Clone()
}

// extendedTo returns the timeline with its last status held until t.
func (ts *timeUsageImpl) extendedTo(t span.Timestamp) temporal.Temporal[int64] {
	end := ts.timeline.EndInstant()
	if t <= end.T {
		return ts.timeline
	}

	line, err := temporal.AppendInstant(ts.timeline.Clone(), temporal.Instant[int64]{Value: end.Value, T: t}, temporal.Gap{})
	if err != nil {
		return ts.timeline
	}

	return line
}

func (ts *timeUsageImpl) DoStatistics(tsB, tsE time.Time, clearData bool, md MergeData) (ds map[int]*StatusTimeUsageData) {
	if md == nil {
		md = MergeReplace
	}

	ts.Lock()
	defer ts.Unlock()

	ds = make(map[int]*StatusTimeUsageData)

	fnD := func(status int) *StatusTimeUsageData {
		if d, ok := ds[status]; ok {
			return d
		}

		d := &StatusTimeUsageData{}
		ds[status] = d

		return d
	}

	b, e := span.FromTime(tsB), span.FromTime(tsE)
	if e <= b {
		return
	}

	var covered time.Duration

	if ts.timeline != nil {
		window, err := temporal.AtPeriod(ts.extendedTo(e), span.Period{Lower: b, Upper: e, LowerInc: true})
		if err == nil && window != nil {
			covered = window.Duration()

			for _, status := range window.Values() {
				part, _ := temporal.AtValue(window, status)
				if part != nil {
					fnD(int(status)).Duration += part.Duration()
				}
			}
		}
	}

	if covered < e.Sub(b) {
		fnD(0).Duration += e.Sub(b) - covered
	}

	// the update in force at tsB counts as the first one of the window
	first := sort.Search(len(ts.ds), func(i int) bool { return ts.ds[i].at > b }) - 1
	if first < 0 {
		first = 0
	}

	lastIdx := -1

	for idx := first; idx < len(ts.ds) && ts.ds[idx].at < e; idx++ {
		f := ts.ds[idx]

		d, exists := ds[f.status]
		if !exists {
			d = fnD(f.status)
			d.D = f.d
		} else {
			d.D = md(d.D, f.d)
		}

		lastIdx = idx
	}

	if clearData && lastIdx > 0 {
		ts.clean(lastIdx)
	}

	return
}

func (ts *timeUsageImpl) clean(keepFrom int) {
	ts.ds = append([]statusWithTime(nil), ts.ds[keepFrom:]...)

	p := span.Period{Lower: ts.ds[0].at, Upper: ts.timeline.EndInstant().T, LowerInc: true, UpperInc: true}

	line, err := temporal.AtPeriod(ts.timeline, p)
	if err != nil || line == nil {
		return
	}

	ts.timeline = line
}

func (ts *timeUsageImpl) DoStatisticsAndClean(tsB, tsE time.Time) map[int]*StatusTimeUsageData {
	return ts.DoStatisticsAndCleanEx(tsB, tsE, nil)
}

func (ts *timeUsageImpl) DoStatisticsAndCleanEx(tsB, tsE time.Time, md MergeData) map[int]*StatusTimeUsageData {
	return ts.DoStatistics(tsB, tsE, true, md)
}

func (ts *timeUsageImpl) GetStatusStatistics(tsB, tsE time.Time, statuses []int) []*StatusTimeUsageData {
	return ts.GetStatusStatisticsEx(tsB, tsE, statuses, false, nil)
}

func (ts *timeUsageImpl) GetStatusStatisticsEx(tsB, tsE time.Time, statuses []int, clearData bool, md MergeData) []*StatusTimeUsageData {
	ds := ts.DoStatistics(tsB, tsE, clearData, md)

	vs := make([]*StatusTimeUsageData, len(statuses))
	for idx := 0; idx < len(statuses); idx++ {
		vs[idx] = ds[statuses[idx]]
	}

	return vs
}

func (ts *timeUsageImpl) GetStatusStatisticsAndClean(tsB, tsE time.Time, statuses []int) []*StatusTimeUsageData {
	return ts.GetStatusStatisticsAndCleanEx(tsB, tsE, statuses, nil)
}

func (ts *timeUsageImpl) GetStatusStatisticsAndCleanEx(tsB, tsE time.Time, statuses []int, md MergeData) []*StatusTimeUsageData {
	return ts.GetStatusStatisticsEx(tsB, tsE, statuses, true, md)
}
