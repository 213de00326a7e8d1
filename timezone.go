package ics

import (
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/arran4/golang-icalendar/internal/tzif"
	"github.com/arran4/golang-icalendar/tzdb"
	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"
)

// Observance is a STANDARD or DAYLIGHT sub-component of a VTIMEZONE.
type Observance struct {
	ComponentBase
	Kind ComponentType
	// Start is the local time of the first onset. It is floating.
	Start      time.Time
	OffsetFrom UTCOffset
	OffsetTo   UTCOffset
	Recurrence Recurrence
	Names      []string
	Comments   []string
}

// Name returns the first TZNAME, or the offset when there is none.
func (o *Observance) Name() string {
	if len(o.Names) > 0 {
		return o.Names[0]
	}
	return formatUTCOffset(o.OffsetTo)
}

func (o *Observance) IsDaylight() bool {
	return o.Kind == ComponentDaylight
}

// Timezone is a VTIMEZONE. After parsing it answers offset queries itself and
// backs a *time.Location that datetimes referencing its TZID carry.
//
// The observances must not be modified once the time zone has been queried.
// Copies share their lookup cache.
type Timezone struct {
	ComponentBase
	TZID         string
	URL          *url.URL
	LastModified time.Time
	Observances  []*Observance

	state *tzState
}

// NewTimezone returns a time zone ready for queries.
func NewTimezone(tzid string, observances ...*Observance) *Timezone {
	return &Timezone{TZID: tzid, Observances: observances, state: &tzState{}}
}

// onsetHorizon bounds the expansion of open ended observance rules.
var onsetHorizon = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

const maxOnsets = 1000

type onset struct {
	// at is the local wall time of the onset, read in UTC.
	at  time.Time
	obs *Observance
}

type tzLookup struct {
	from, to time.Time
	offset   time.Duration
	dst      time.Duration
	name     string
}

type tzState struct {
	onsetsOnce sync.Once
	onsets     []onset

	mu   sync.Mutex
	last *tzLookup

	locOnce sync.Once
	loc     *time.Location
	locErr  error
}

// wall reads the wall clock of t as a UTC time.
func wall(t time.Time) time.Time {
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, m, d, h, mi, s, 0, time.UTC)
}

func (o *Observance) onsets() []time.Time {
	start := wall(o.Start)
	r := []time.Time{start}
	for _, opt := range o.Recurrence.RRules {
		opt.Dtstart = start
		if !opt.Until.IsZero() {
			opt.Until = wall(opt.Until.UTC().Add(time.Duration(o.OffsetFrom)))
		}
		rule, err := rrule.NewRRule(opt)
		if err != nil {
			continue
		}
		next := rule.Iterator()
		for i := 0; i < maxOnsets; i++ {
			t, ok := next()
			if !ok || t.After(onsetHorizon) {
				break
			}
			r = append(r, t)
		}
	}
	for _, d := range o.Recurrence.RDates {
		r = append(r, wall(d.Start()))
	}
	return r
}

func computeOnsets(observances []*Observance) []onset {
	var r []onset
	for _, o := range observances {
		if o == nil {
			continue
		}
		seen := map[time.Time]bool{}
		for _, at := range o.onsets() {
			if !seen[at] {
				seen[at] = true
				r = append(r, onset{at: at, obs: o})
			}
		}
	}
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].at.Before(r[j].at)
	})
	return r
}

func (tz *Timezone) onsets() []onset {
	if tz.state == nil {
		return computeOnsets(tz.Observances)
	}
	tz.state.onsetsOnce.Do(func() {
		tz.state.onsets = computeOnsets(tz.Observances)
	})
	return tz.state.onsets
}

func lookupAt(onsets []onset, w time.Time) tzLookup {
	if len(onsets) == 0 {
		return tzLookup{name: "UTC"}
	}
	i := sort.Search(len(onsets), func(i int) bool {
		return onsets[i].at.After(w)
	})
	if i == 0 {
		first := onsets[0].obs
		return tzLookup{to: onsets[0].at, offset: time.Duration(first.OffsetFrom), name: first.Name()}
	}
	o := onsets[i-1].obs
	l := tzLookup{from: onsets[i-1].at, offset: time.Duration(o.OffsetTo), name: o.Name()}
	if i < len(onsets) {
		l.to = onsets[i].at
	}
	if o.IsDaylight() {
		l.dst = time.Duration(o.OffsetTo - o.OffsetFrom)
	}
	return l
}

func (l *tzLookup) covers(w time.Time) bool {
	return (l.from.IsZero() || !w.Before(l.from)) && (l.to.IsZero() || w.Before(l.to))
}

// lookup finds the observance in force at the wall clock of t. The latest
// onset at or before t wins; before the first onset the earliest
// observance's TZOFFSETFROM applies.
func (tz *Timezone) lookup(t time.Time) tzLookup {
	w := wall(t)
	if tz.state == nil {
		return lookupAt(tz.onsets(), w)
	}
	onsets := tz.onsets()
	tz.state.mu.Lock()
	defer tz.state.mu.Unlock()
	if l := tz.state.last; l != nil && l.covers(w) {
		return *l
	}
	l := lookupAt(onsets, w)
	tz.state.last = &l
	return l
}

// UTCOffset returns the offset in force at the wall clock time of t.
func (tz *Timezone) UTCOffset(t time.Time) time.Duration {
	return tz.lookup(t).offset
}

// DST returns the daylight saving adjustment in force at the wall clock time
// of t. It is zero outside DAYLIGHT observances.
func (tz *Timezone) DST(t time.Time) time.Duration {
	return tz.lookup(t).dst
}

func (tz *Timezone) TZName(t time.Time) string {
	return tz.lookup(t).name
}

// Location returns a *time.Location with the TZID as its name whose
// transitions follow the observances.
func (tz *Timezone) Location() (*time.Location, error) {
	if tz.state == nil {
		return tz.buildLocation()
	}
	tz.state.locOnce.Do(func() {
		if tz.state.loc == nil {
			tz.state.loc, tz.state.locErr = tz.buildLocation()
		}
	})
	return tz.state.loc, tz.state.locErr
}

func (tz *Timezone) buildLocation() (*time.Location, error) {
	if tz.TZID == "" {
		return nil, errors.New("VTIMEZONE without TZID")
	}
	onsets := tz.onsets()
	initial := tzif.Type{Name: "UTC"}
	if len(onsets) > 0 {
		first := onsets[0].obs
		initial = tzif.Type{Offset: first.OffsetFrom.Seconds(), Name: first.Name()}
	}
	types := []tzif.Type{initial}
	index := map[*Observance]int{}
	var transitions []tzif.Transition
	for _, on := range onsets {
		i, ok := index[on.obs]
		if !ok {
			i = len(types)
			index[on.obs] = i
			types = append(types, tzif.Type{
				Offset: on.obs.OffsetTo.Seconds(),
				IsDST:  on.obs.IsDaylight(),
				Name:   on.obs.Name(),
			})
		}
		transitions = append(transitions, tzif.Transition{
			At:   on.at.Add(-time.Duration(on.obs.OffsetFrom)).Unix(),
			Type: i,
		})
	}
	data, err := tzif.Encode(types, transitions)
	if err != nil {
		return nil, errors.Wrapf(err, "VTIMEZONE %s", tz.TZID)
	}
	loc, err := time.LoadLocationFromTZData(tz.TZID, data)
	if err != nil {
		return nil, errors.Wrapf(err, "VTIMEZONE %s", tz.TZID)
	}
	return loc, nil
}

// TimezoneFromTZID looks id up in the time zone database. Identifiers the
// database does not know are synthesised from the system tzdata.
func TimezoneFromTZID(id string, ops ...any) (*Timezone, error) {
	o, err := parseOps(ops)
	if err != nil {
		return nil, err
	}
	ctx := newContext(o)
	var c *contentline.Container
	if ctx.Database != nil {
		c, err = ctx.Database.Lookup(id)
		if err != nil && !errors.Is(err, tzdb.ErrNotFound) {
			return nil, &TimezoneError{TZID: id, Err: err}
		}
	}
	var preset *time.Location
	if ldb, ok := ctx.Database.(LocationDatabase); ok && c != nil {
		preset, _ = ldb.Location(id)
	}
	if c == nil {
		loc, err := time.LoadLocation(id)
		if err != nil || id == "" || id == "Local" {
			return nil, &TimezoneError{TZID: id, Err: tzdb.ErrNotFound}
		}
		ctx.Logger.WithField("tzid", id).Warn("time zone synthesised from system tzdata, no iCalendar definition is available")
		c, preset = tzdb.Synthesize(id, loc), loc
	}
	tz := &Timezone{}
	if err := timezoneSchema().populate(tz, c, ctx); err != nil {
		return nil, err
	}
	tz.state.loc = preset
	return tz, nil
}

// TimezoneFromContainer binds a VTIMEZONE container.
func TimezoneFromContainer(c *contentline.Container, ops ...any) (*Timezone, error) {
	o, err := parseOps(ops)
	if err != nil {
		return nil, err
	}
	tz := &Timezone{}
	if err := timezoneSchema().populate(tz, c, newContext(o)); err != nil {
		return nil, err
	}
	return tz, nil
}

// ToContainer renders the time zone as a VTIMEZONE container.
func (tz *Timezone) ToContainer(ops ...any) (*contentline.Container, error) {
	o, err := parseOps(ops)
	if err != nil {
		return nil, err
	}
	return timezoneSchema().toContainer(tz, newContext(o))
}

func observanceSchemaFor(kind ComponentType) *schema[Observance] {
	s := newSchema[Observance](string(kind),
		scalarField(PropertyDtstart, func(o *Observance) *time.Time { return &o.Start }, DateTimeCodec).require(),
		exactField(PropertyTzoffsetfrom, func(o *Observance) *UTCOffset { return &o.OffsetFrom }, UTCOffsetCodec),
		exactField(PropertyTzoffsetto, func(o *Observance) *UTCOffset { return &o.OffsetTo }, UTCOffsetCodec),
		newRecurrenceConverter(-1, func(o *Observance) *Recurrence { return &o.Recurrence }),
		listField(PropertyComment, false, func(o *Observance) *[]string { return &o.Comments }, TextCodec),
		listField(PropertyTzname, false, func(o *Observance) *[]string { return &o.Names }, TextCodec),
	)
	s.prePopulate = func(o *Observance, _ *contentline.Container, _ *Context) error {
		o.Kind = kind
		return nil
	}
	return s
}

var (
	standardSchema = sync.OnceValue(func() *schema[Observance] { return observanceSchemaFor(ComponentStandard) })
	daylightSchema = sync.OnceValue(func() *schema[Observance] { return observanceSchemaFor(ComponentDaylight) })
)

func observanceSchema(name string) *schema[Observance] {
	if name == string(ComponentDaylight) {
		return daylightSchema()
	}
	return standardSchema()
}

var timezoneSchema = sync.OnceValue(func() *schema[Timezone] {
	s := newSchema[Timezone](string(ComponentVTimezone),
		scalarField(PropertyTzid, func(tz *Timezone) *string { return &tz.TZID }, TextCodec).require(),
		scalarField(PropertyLastModified, func(tz *Timezone) *time.Time { return &tz.LastModified }, DateTimeCodec),
		scalarField(PropertyTzurl, func(tz *Timezone) **url.URL { return &tz.URL }, URICodec),
		&subcomponentConverter[Timezone, Observance]{
			names:     []string{string(ComponentStandard), string(ComponentDaylight)},
			prio:      -10,
			schemaFor: observanceSchema,
			schemaOf:  func(o *Observance) *schema[Observance] { return observanceSchema(string(o.Kind)) },
			get:       func(tz *Timezone) *[]*Observance { return &tz.Observances },
		},
	)
	s.validate = func(tz *Timezone, ctx *Context) error {
		if len(tz.Observances) == 0 {
			return ctx.schemaError("", "needs a STANDARD or DAYLIGHT observance")
		}
		tz.state = &tzState{}
		return nil
	}
	return s
})
