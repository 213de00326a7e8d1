package ics

import "strings"

// ComponentType enumerates the component names defined in RFC 5545 section 3.6.
type ComponentType string

const (
	// ComponentVCalendar is the VCALENDAR container component.
	ComponentVCalendar ComponentType = "VCALENDAR"
	// ComponentVEvent represents a VEVENT component.
	ComponentVEvent ComponentType = "VEVENT"
	// ComponentVTodo represents a VTODO component.
	ComponentVTodo ComponentType = "VTODO"
	// ComponentVJournal represents a VJOURNAL component.
	ComponentVJournal ComponentType = "VJOURNAL"
	// ComponentVFreeBusy represents a VFREEBUSY component.
	ComponentVFreeBusy ComponentType = "VFREEBUSY"
	// ComponentVTimezone represents a VTIMEZONE component.
	ComponentVTimezone ComponentType = "VTIMEZONE"
	// ComponentVAlarm represents a VALARM subcomponent.
	ComponentVAlarm ComponentType = "VALARM"
	// ComponentStandard represents a STANDARD timezone subcomponent.
	ComponentStandard ComponentType = "STANDARD"
	// ComponentDaylight represents a DAYLIGHT timezone subcomponent.
	ComponentDaylight ComponentType = "DAYLIGHT"
)

// Property is an iCalendar property name as defined in RFC 5545 section 3.8.
type Property string

const (
	PropertyCalscale      Property = "CALSCALE" // TEXT
	PropertyMethod        Property = "METHOD"   // TEXT
	PropertyProductId     Property = "PRODID"   // TEXT
	PropertyVersion       Property = "VERSION"  // TEXT
	PropertyName          Property = "NAME"     // TEXT, RFC 7986
	PropertyXWRCalName    Property = "X-WR-CALNAME"
	PropertyXWRCalDesc    Property = "X-WR-CALDESC"
	PropertyXWRTimezone   Property = "X-WR-TIMEZONE"
	PropertyXPublishedTTL Property = "X-PUBLISHED-TTL"

	PropertyAttach          Property = "ATTACH"
	PropertyCategories      Property = "CATEGORIES" // TEXT
	PropertyClass           Property = "CLASS"      // TEXT
	PropertyColor           Property = "COLOR"      // TEXT
	PropertyComment         Property = "COMMENT"    // TEXT
	PropertyDescription     Property = "DESCRIPTION"
	PropertyGeo             Property = "GEO"
	PropertyLocation        Property = "LOCATION" // TEXT
	PropertyPercentComplete Property = "PERCENT-COMPLETE"
	PropertyPriority        Property = "PRIORITY"
	PropertyResources       Property = "RESOURCES" // TEXT
	PropertyStatus          Property = "STATUS"    // TEXT
	PropertySummary         Property = "SUMMARY"   // TEXT

	PropertyCompleted Property = "COMPLETED"
	PropertyDtend     Property = "DTEND"
	PropertyDue       Property = "DUE"
	PropertyDtstart   Property = "DTSTART"
	PropertyDuration  Property = "DURATION"
	PropertyFreebusy  Property = "FREEBUSY"
	PropertyTransp    Property = "TRANSP" // TEXT

	PropertyTzid         Property = "TZID"   // TEXT
	PropertyTzname       Property = "TZNAME" // TEXT
	PropertyTzoffsetfrom Property = "TZOFFSETFROM"
	PropertyTzoffsetto   Property = "TZOFFSETTO"
	PropertyTzurl        Property = "TZURL"

	PropertyAttendee     Property = "ATTENDEE"
	PropertyContact      Property = "CONTACT" // TEXT
	PropertyOrganizer    Property = "ORGANIZER"
	PropertyRecurrenceId Property = "RECURRENCE-ID"
	PropertyRelatedTo    Property = "RELATED-TO" // TEXT
	PropertyUrl          Property = "URL"
	PropertyUid          Property = "UID" // TEXT

	PropertyExdate Property = "EXDATE"
	PropertyExrule Property = "EXRULE"
	PropertyRdate  Property = "RDATE"
	PropertyRrule  Property = "RRULE"

	PropertyAction  Property = "ACTION" // TEXT
	PropertyRepeat  Property = "REPEAT"
	PropertyTrigger Property = "TRIGGER"

	PropertyCreated       Property = "CREATED"
	PropertyDtstamp       Property = "DTSTAMP"
	PropertyLastModified  Property = "LAST-MODIFIED"
	PropertySequence      Property = "SEQUENCE"
	PropertyRequestStatus Property = "REQUEST-STATUS" // TEXT

	PropertyBegin Property = "BEGIN"
	PropertyEnd   Property = "END"
)

// IsExperimental reports whether the name is an X- name.
func (p Property) IsExperimental() bool {
	return len(p) > 2 && strings.EqualFold(string(p[:2]), "X-")
}

// Parameter is a property parameter name from RFC 5545 section 3.2.
type Parameter string

// IsQuoted reports whether the parameter's value should be quoted when serialized.
// RFC 5545 section 3.2 requires quotes around the URI valued parameters.
func (p Parameter) IsQuoted() bool {
	switch p {
	case ParameterAltrep, ParameterDir, ParameterSentBy, ParameterMember, ParameterDelegatedTo, ParameterDelegatedFrom:
		return true
	}
	return false
}

const (
	// ParameterAltrep references an alternate text representation (section 3.2.1).
	ParameterAltrep Parameter = "ALTREP"
	// ParameterCn provides a common name (section 3.2.2).
	ParameterCn Parameter = "CN"
	// ParameterCutype defines the calendar user type (section 3.2.3).
	ParameterCutype Parameter = "CUTYPE"
	// ParameterDelegatedFrom lists participants the request was delegated from (section 3.2.4).
	ParameterDelegatedFrom Parameter = "DELEGATED-FROM"
	// ParameterDelegatedTo lists participants the request was delegated to (section 3.2.5).
	ParameterDelegatedTo Parameter = "DELEGATED-TO"
	// ParameterDir gives a reference to directory information (section 3.2.6).
	ParameterDir Parameter = "DIR"
	// ParameterEncoding defines inline attachment encoding (section 3.2.7).
	ParameterEncoding Parameter = "ENCODING"
	// ParameterFmttype is the content type for a binary attachment (section 3.2.8).
	ParameterFmttype Parameter = "FMTTYPE"
	// ParameterFbtype specifies free/busy time type (section 3.2.9).
	ParameterFbtype Parameter = "FBTYPE"
	// ParameterLanguage indicates the language for text values (section 3.2.10).
	ParameterLanguage Parameter = "LANGUAGE"
	// ParameterMember identifies group membership (section 3.2.11).
	ParameterMember Parameter = "MEMBER"
	// ParameterParticipationStatus holds participation status (section 3.2.12).
	ParameterParticipationStatus Parameter = "PARTSTAT"
	// ParameterRange is used with RECURRENCE-ID (section 3.2.13).
	ParameterRange Parameter = "RANGE"
	// ParameterRelated selects the start or end of the parent for TRIGGER (section 3.2.14).
	ParameterRelated Parameter = "RELATED"
	// ParameterReltype specifies relationship type for RELATED-TO (section 3.2.15).
	ParameterReltype Parameter = "RELTYPE"
	// ParameterRole indicates participant role (section 3.2.16).
	ParameterRole Parameter = "ROLE"
	// ParameterRsvp indicates whether a response is requested (section 3.2.17).
	ParameterRsvp Parameter = "RSVP"
	// ParameterSentBy gives the address responsible for sending a request (section 3.2.18).
	ParameterSentBy Parameter = "SENT-BY"
	// ParameterTzid references a time zone identifier (section 3.2.19).
	ParameterTzid Parameter = "TZID"
	// ParameterValue sets the value data type of the property (section 3.2.20).
	ParameterValue Parameter = "VALUE"
)

// ValueDataType names a value type usable in the VALUE parameter.
type ValueDataType string

// ValueDataType lists the VALUE parameter types described in RFC 5545 section 3.3.
const (
	ValueDataTypeBinary     ValueDataType = "BINARY"
	ValueDataTypeBoolean    ValueDataType = "BOOLEAN"
	ValueDataTypeCalAddress ValueDataType = "CAL-ADDRESS"
	ValueDataTypeDate       ValueDataType = "DATE"
	ValueDataTypeDateTime   ValueDataType = "DATE-TIME"
	ValueDataTypeDuration   ValueDataType = "DURATION"
	ValueDataTypeFloat      ValueDataType = "FLOAT"
	ValueDataTypeInteger    ValueDataType = "INTEGER"
	ValueDataTypePeriod     ValueDataType = "PERIOD"
	ValueDataTypeRecur      ValueDataType = "RECUR"
	ValueDataTypeText       ValueDataType = "TEXT"
	ValueDataTypeTime       ValueDataType = "TIME"
	ValueDataTypeUri        ValueDataType = "URI"
	ValueDataTypeUtcOffset  ValueDataType = "UTC-OFFSET"
)

type CalendarUserType string

// CalendarUserType enumerates the CUTYPE parameter values from RFC 5545 section 3.2.3.
const (
	CalendarUserTypeIndividual CalendarUserType = "INDIVIDUAL"
	CalendarUserTypeGroup      CalendarUserType = "GROUP"
	CalendarUserTypeResource   CalendarUserType = "RESOURCE"
	CalendarUserTypeRoom       CalendarUserType = "ROOM"
	CalendarUserTypeUnknown    CalendarUserType = "UNKNOWN"
)

type ParticipationStatus string

// ParticipationStatus enumerates the PARTSTAT parameter values from RFC 5545 section 3.2.12.
const (
	ParticipationStatusNeedsAction ParticipationStatus = "NEEDS-ACTION"
	ParticipationStatusAccepted    ParticipationStatus = "ACCEPTED"
	ParticipationStatusDeclined    ParticipationStatus = "DECLINED"
	ParticipationStatusTentative   ParticipationStatus = "TENTATIVE"
	ParticipationStatusDelegated   ParticipationStatus = "DELEGATED"
	ParticipationStatusCompleted   ParticipationStatus = "COMPLETED"
	ParticipationStatusInProcess   ParticipationStatus = "IN-PROCESS"
)

type ParticipationRole string

// ParticipationRole enumerates the ROLE parameter values for participants
// (RFC 5545 section 3.2.16).
const (
	ParticipationRoleChair          ParticipationRole = "CHAIR"
	ParticipationRoleReqParticipant ParticipationRole = "REQ-PARTICIPANT"
	ParticipationRoleOptParticipant ParticipationRole = "OPT-PARTICIPANT"
	ParticipationRoleNonParticipant ParticipationRole = "NON-PARTICIPANT"
)

type ObjectStatus string

// ObjectStatus enumerates allowed STATUS property values for calendar objects
// (RFC 5545 section 3.8.1.11).
const (
	ObjectStatusTentative   ObjectStatus = "TENTATIVE"
	ObjectStatusConfirmed   ObjectStatus = "CONFIRMED"
	ObjectStatusCancelled   ObjectStatus = "CANCELLED"
	ObjectStatusNeedsAction ObjectStatus = "NEEDS-ACTION"
	ObjectStatusCompleted   ObjectStatus = "COMPLETED"
	ObjectStatusInProcess   ObjectStatus = "IN-PROCESS"
	ObjectStatusDraft       ObjectStatus = "DRAFT"
	ObjectStatusFinal       ObjectStatus = "FINAL"
)

var (
	eventStatuses = []ObjectStatus{ObjectStatusTentative, ObjectStatusConfirmed, ObjectStatusCancelled}
	todoStatuses  = []ObjectStatus{ObjectStatusNeedsAction, ObjectStatusCompleted, ObjectStatusInProcess, ObjectStatusCancelled}
)

// Action enumerates VALARM ACTION property values (RFC 5545 section 3.8.6.1).
type Action string

const (
	ActionAudio   Action = "AUDIO"
	ActionDisplay Action = "DISPLAY"
	ActionEmail   Action = "EMAIL"
	// ActionNone is defined by RFC 9074 and means the alarm is inert.
	ActionNone Action = "NONE"
)

type Classification string

// Classification enumerates CLASS property values (RFC 5545 section 3.8.1.3).
const (
	ClassificationPublic       Classification = "PUBLIC"
	ClassificationPrivate      Classification = "PRIVATE"
	ClassificationConfidential Classification = "CONFIDENTIAL"
)

type Method string

// Method enumerates METHOD property values used with scheduling messages
// (RFC 5546 section 1.4).
const (
	MethodPublish        Method = "PUBLISH"
	MethodRequest        Method = "REQUEST"
	MethodReply          Method = "REPLY"
	MethodAdd            Method = "ADD"
	MethodCancel         Method = "CANCEL"
	MethodRefresh        Method = "REFRESH"
	MethodCounter        Method = "COUNTER"
	MethodDeclinecounter Method = "DECLINECOUNTER"
)

// TimeTransparency enumerates TRANSP property values.
type TimeTransparency string

const (
	TransparencyOpaque      TimeTransparency = "OPAQUE"
	TransparencyTransparent TimeTransparency = "TRANSPARENT"
)
