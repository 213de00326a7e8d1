package main

import (
	"fmt"
	"net/url"
	"time"

	ics "github.com/arran4/golang-icalendar"
	"github.com/arran4/golang-icalendar/contentline"
	log "github.com/sirupsen/logrus"
)

func main() {
	i := ics.NewCalendarFor("Mozilla.org/NONSGML Mozilla Calendar V1.1")
	lmt := time.Date(1893, 4, 1, 0, 0, 0, 0, ics.Floating)
	tz := ics.NewTimezone("Europe/Berlin", &ics.Observance{
		Kind:       ics.ComponentStandard,
		Start:      lmt,
		OffsetFrom: ics.UTCOffset(53*time.Minute + 28*time.Second),
		OffsetTo:   ics.UTCOffset(time.Hour),
		Names:      []string{"Europe/Berlin(STD)"},
		Recurrence: ics.Recurrence{RDates: []ics.RecurrenceDate{{Time: lmt}}},
	})
	tz.AddExtra(contentline.New("X-TZINFO", "Europe/Berlin[2024a]"))
	i.AddTimezone(tz)
	berlin, err := tz.Location()
	if err != nil {
		log.WithError(err).Fatal("building Europe/Berlin")
	}

	vEvent := i.AddEvent("d23cef0d-9e58-43c4-9391-5ad8483ca346")
	vEvent.Created = time.Date(2024, 9, 29, 12, 6, 40, 0, time.UTC)
	vEvent.LastModified = time.Date(2024, 9, 29, 12, 7, 31, 0, time.UTC)
	vEvent.DTStamp = vEvent.LastModified
	vEvent.Summary = "Test Event"
	start := time.Date(2024, 9, 29, 14, 45, 0, 0, berlin)
	if err := vEvent.SetStartAt(start); err != nil {
		log.WithError(err).Fatal("setting start")
	}
	if err := vEvent.SetEndAt(start.Add(time.Hour)); err != nil {
		log.WithError(err).Fatal("setting end")
	}
	opaque := false
	vEvent.Transparent = &opaque
	vEvent.Location = "Github"
	uri := &url.URL{
		Scheme: "data",
		Opaque: "text/html,I%20want%20a%20custom%20linkout%20for%20Thunderbird.%3Cbr%3EThis%20is%20the%20Github%20%3Ca%20href%3D%22https%3A%2F%2Fgithub.com%2Farran4%2Fgolang-ical%2Fissues%2F97%22%3EIssue%3C%2Fa%3E.",
	}
	vEvent.Description = "I want a custom linkout for Thunderbird.\nThis is the Github Issue."
	altrep := contentline.Params{}
	altrep.Set(string(ics.ParameterAltrep), contentline.Quoted(uri.String()))
	vEvent.ExtraParams = map[string][]contentline.Params{"description": {altrep}}
	fmt.Println(i.Serialize())
}
