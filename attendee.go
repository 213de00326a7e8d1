package ics

import (
	"net/url"
	"strings"

	"github.com/arran4/golang-icalendar/contentline"
)

// Attendee is an ATTENDEE of an event or a recipient of an email alarm.
type Attendee struct {
	Address       *url.URL
	CommonName    string
	Directory     string
	SentBy        string
	Language      string
	UserType      CalendarUserType
	Members       []string
	Role          ParticipationRole
	Status        ParticipationStatus
	RSVP          *bool
	DelegatedTo   []string
	DelegatedFrom []string
}

// NewAttendee returns an attendee for a mailto address.
func NewAttendee(email string) Attendee {
	return Attendee{Address: mailto(email)}
}

func (p Attendee) Email() string {
	return email(p.Address)
}

// Organizer is the ORGANIZER of an event.
type Organizer struct {
	Address    *url.URL
	CommonName string
	Directory  string
	SentBy     string
	Language   string
}

// NewOrganizer returns an organizer for a mailto address.
func NewOrganizer(email string) *Organizer {
	return &Organizer{Address: mailto(email)}
}

func (o Organizer) Email() string {
	return email(o.Address)
}

func mailto(email string) *url.URL {
	return &url.URL{Scheme: "mailto", Opaque: email}
}

func email(u *url.URL) string {
	if u == nil {
		return ""
	}
	if strings.EqualFold(u.Scheme, "mailto") {
		if u.Opaque != "" {
			return u.Opaque
		}
		return strings.TrimPrefix(u.String(), u.Scheme+":")
	}
	return u.String()
}

func popParam(params *contentline.Params, name Parameter) string {
	vs, ok := params.Pop(string(name))
	if !ok || len(vs) == 0 {
		return ""
	}
	return vs[0].Value
}

func popParams(params *contentline.Params, name Parameter) []string {
	vs, _ := params.Pop(string(name))
	if len(vs) == 0 {
		return nil
	}
	r := make([]string, len(vs))
	for i, v := range vs {
		r[i] = v.Value
	}
	return r
}

func setParam(params *contentline.Params, name Parameter, values ...string) {
	if len(values) == 0 || (len(values) == 1 && values[0] == "") {
		return
	}
	pvs := make([]contentline.ParamValue, len(values))
	for i, v := range values {
		if name.IsQuoted() {
			pvs[i] = contentline.Quoted(v)
		} else {
			pvs[i] = contentline.Raw(v)
		}
	}
	params.Set(string(name), pvs...)
}

var attendeeCodec Codec = adaptCodec[Attendee]{
	base: CalAddressCodec,
	to: func(v any, params *contentline.Params) (Attendee, error) {
		a := Attendee{
			Address:       v.(*url.URL),
			CommonName:    popParam(params, ParameterCn),
			Directory:     popParam(params, ParameterDir),
			SentBy:        popParam(params, ParameterSentBy),
			Language:      popParam(params, ParameterLanguage),
			UserType:      CalendarUserType(popParam(params, ParameterCutype)),
			Members:       popParams(params, ParameterMember),
			Role:          ParticipationRole(popParam(params, ParameterRole)),
			Status:        ParticipationStatus(popParam(params, ParameterParticipationStatus)),
			DelegatedTo:   popParams(params, ParameterDelegatedTo),
			DelegatedFrom: popParams(params, ParameterDelegatedFrom),
		}
		if rsvp := popParam(params, ParameterRsvp); rsvp != "" {
			b, err := BooleanCodec.Parse(rsvp, params, nil)
			if err != nil {
				return Attendee{}, err
			}
			r := b.(bool)
			a.RSVP = &r
		}
		return a, nil
	},
	from: func(a Attendee, params *contentline.Params) (any, bool) {
		setParam(params, ParameterCn, a.CommonName)
		setParam(params, ParameterCutype, string(a.UserType))
		setParam(params, ParameterMember, a.Members...)
		setParam(params, ParameterRole, string(a.Role))
		setParam(params, ParameterParticipationStatus, string(a.Status))
		if a.RSVP != nil {
			s, _ := BooleanCodec.Serialize(*a.RSVP, params, nil)
			setParam(params, ParameterRsvp, s)
		}
		setParam(params, ParameterDelegatedTo, a.DelegatedTo...)
		setParam(params, ParameterDelegatedFrom, a.DelegatedFrom...)
		setParam(params, ParameterSentBy, a.SentBy)
		setParam(params, ParameterDir, a.Directory)
		setParam(params, ParameterLanguage, a.Language)
		return a.Address, a.Address != nil
	},
}

var organizerCodec Codec = adaptCodec[Organizer]{
	base: CalAddressCodec,
	to: func(v any, params *contentline.Params) (Organizer, error) {
		return Organizer{
			Address:    v.(*url.URL),
			CommonName: popParam(params, ParameterCn),
			Directory:  popParam(params, ParameterDir),
			SentBy:     popParam(params, ParameterSentBy),
			Language:   popParam(params, ParameterLanguage),
		}, nil
	},
	from: func(o Organizer, params *contentline.Params) (any, bool) {
		setParam(params, ParameterCn, o.CommonName)
		setParam(params, ParameterDir, o.Directory)
		setParam(params, ParameterSentBy, o.SentBy)
		setParam(params, ParameterLanguage, o.Language)
		return o.Address, o.Address != nil
	},
}
