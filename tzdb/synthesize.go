package tzdb

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/arran4/golang-icalendar/internal/tzif"
	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"
)

// The window scanned for transitions. Rules still running at its end are
// written without UNTIL.
var (
	scanFrom = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	scanTo   = time.Date(2038, time.January, 1, 0, 0, 0, 0, time.UTC)
)

const scanStep = 12 * time.Hour

type zone struct {
	name   string
	offset int
	dst    bool
}

func zoneAt(loc *time.Location, t time.Time) zone {
	in := t.In(loc)
	name, offset := in.Zone()
	return zone{name: name, offset: offset, dst: in.IsDST()}
}

type transition struct {
	at       time.Time
	from, to zone
}

// transitions lists the zone changes of loc in the scan window.
func transitions(loc *time.Location) []transition {
	var r []transition
	prev := zoneAt(loc, scanFrom)
	for t := scanFrom; t.Before(scanTo); t = t.Add(scanStep) {
		next := t.Add(scanStep)
		z := zoneAt(loc, next)
		if z == prev {
			continue
		}
		lo, hi := t, next
		for hi.Sub(lo) > time.Second {
			mid := lo.Add(hi.Sub(lo) / 2).Truncate(time.Second)
			if zoneAt(loc, mid) == prev {
				lo = mid
			} else {
				hi = mid
			}
		}
		r = append(r, transition{at: hi, from: prev, to: z})
		prev = z
	}
	return r
}

// rename rebuilds loc under another name. Transitions are only kept for the
// scan window.
func rename(loc *time.Location, name string) (*time.Location, error) {
	ts := transitions(loc)
	initial := zoneAt(loc, scanFrom)
	types := []tzif.Type{{Offset: initial.offset, IsDST: initial.dst, Name: initial.name}}
	index := map[zone]int{}
	var txs []tzif.Transition
	for _, t := range ts {
		i, ok := index[t.to]
		if !ok {
			i = len(types)
			index[t.to] = i
			types = append(types, tzif.Type{Offset: t.to.offset, IsDST: t.to.dst, Name: t.to.name})
		}
		txs = append(txs, tzif.Transition{At: t.at.Unix(), Type: i})
	}
	data, err := tzif.Encode(types, txs)
	if err != nil {
		return nil, errors.Wrapf(err, "renaming %s to %s", loc, name)
	}
	r, err := time.LoadLocationFromTZData(name, data)
	return r, errors.Wrapf(err, "renaming %s to %s", loc, name)
}

// observance is a run of transitions into the same zone from the same
// offset.
type observance struct {
	from, to zone
	// onsets are local wall times before the transition, read in UTC.
	onsets []time.Time
	rule   *rrule.ROption
}

func (o *observance) start() time.Time {
	return o.onsets[0]
}

func localOnset(t transition) time.Time {
	return t.at.Add(time.Duration(t.from.offset) * time.Second).UTC()
}

// yearlyRule describes t as a yearly weekday rule: the nth, or last when n
// is -1, weekday of its month.
func yearlyRule(t time.Time) (month time.Month, wd time.Weekday, n int) {
	month, wd = t.Month(), t.Weekday()
	if t.AddDate(0, 0, 7).Month() != month {
		return month, wd, -1
	}
	return month, wd, (t.Day()-1)/7 + 1
}

var weekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// splitRule moves the longest tail of onsets following one yearly weekday
// rule into a rule observance of its own.
func splitRule(o *observance) (*observance, *observance) {
	n := len(o.onsets)
	if n < 3 {
		return o, nil
	}
	last := o.onsets[n-1]
	m, wd, nth := yearlyRule(last)
	i := n - 1
	for i > 0 {
		prev := o.onsets[i-1]
		pm, pwd, pn := yearlyRule(prev)
		ph, pmi, ps := prev.Clock()
		h, mi, s := last.Clock()
		if prev.Year() != o.onsets[i].Year()-1 || pm != m || pwd != wd || pn != nth || ph != h || pmi != mi || ps != s {
			break
		}
		i--
	}
	if n-i < 3 {
		return o, nil
	}
	opt := &rrule.ROption{
		Freq:      rrule.YEARLY,
		Bymonth:   []int{int(m)},
		Byweekday: []rrule.Weekday{weekdays[wd].Nth(nth)},
	}
	if last.Year() < scanTo.Year()-2 {
		opt.Until = last.Add(-time.Duration(o.from.offset) * time.Second)
	}
	ruled := &observance{from: o.from, to: o.to, onsets: o.onsets[i:], rule: opt}
	if i == 0 {
		return nil, ruled
	}
	return &observance{from: o.from, to: o.to, onsets: o.onsets[:i]}, ruled
}

func formatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign, seconds = "-", -seconds
	}
	s := fmt.Sprintf("%s%02d%02d", sign, seconds/3600, seconds/60%60)
	if seconds%60 != 0 {
		s += fmt.Sprintf("%02d", seconds%60)
	}
	return s
}

const localLayout = "20060102T150405"

func (o *observance) container() *contentline.Container {
	kind := "STANDARD"
	if o.to.dst {
		kind = "DAYLIGHT"
	}
	c := contentline.NewContainer(kind,
		contentline.New("DTSTART", o.start().Format(localLayout)),
		contentline.New("TZOFFSETFROM", formatOffset(o.from.offset)),
		contentline.New("TZOFFSETTO", formatOffset(o.to.offset)),
	)
	if o.to.name != "" {
		c.Append(contentline.New("TZNAME", o.to.name))
	}
	if o.rule != nil {
		c.Append(contentline.New("RRULE", o.rule.RRuleString()))
	} else if len(o.onsets) > 1 {
		dates := make([]string, len(o.onsets)-1)
		for i, t := range o.onsets[1:] {
			dates[i] = t.Format(localLayout)
		}
		c.Append(contentline.New("RDATE", strings.Join(dates, ",")))
	}
	return c
}

// Synthesize describes loc as a VTIMEZONE with the given TZID. Transitions
// that recur on the same weekday every year become RRULEs, the others
// RDATEs. A location without transitions gets a single STANDARD
// observance.
func Synthesize(tzid string, loc *time.Location) *contentline.Container {
	c := contentline.NewContainer("VTIMEZONE", contentline.New("TZID", tzid))
	ts := transitions(loc)
	if len(ts) == 0 {
		z := zoneAt(loc, scanFrom)
		c.Append((&observance{from: z, to: z, onsets: []time.Time{scanFrom}}).container())
		return c
	}
	type key struct{ from, to zone }
	groups := map[key]*observance{}
	var order []*observance
	for _, t := range ts {
		k := key{t.from, t.to}
		o, ok := groups[k]
		if !ok {
			o = &observance{from: t.from, to: t.to}
			groups[k] = o
			order = append(order, o)
		}
		o.onsets = append(o.onsets, localOnset(t))
	}
	var all []*observance
	for _, o := range order {
		rest, ruled := splitRule(o)
		for _, x := range []*observance{rest, ruled} {
			if x != nil {
				all = append(all, x)
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].start().Before(all[j].start())
	})
	for _, o := range all {
		c.Append(o.container())
	}
	return c
}
