// Package tzdb is the built-in time zone database. It resolves Olson
// identifiers from the tz data embedded by 4d63.com/tz, Windows zone names
// through an alias table and vendor prefixed identifiers such as
// /mozilla.org/20050126_1/Europe/Berlin, and hands out VTIMEZONE containers
// synthesised from the resulting locations.
package tzdb

import (
	"strings"
	"sync"
	"time"

	"4d63.com/tz"
	"github.com/arran4/golang-icalendar/contentline"
	"github.com/pkg/errors"
)

// ErrNotFound is returned, wrapped, for identifiers the database does not
// know.
var ErrNotFound = errors.New("time zone not found")

// Database resolves TZIDs. It is safe for concurrent use.
type Database struct {
	load    func(name string) (*time.Location, error)
	aliases map[string]string
	cache   sync.Map
}

type entry struct {
	loc       *time.Location
	container *contentline.Container
}

// Default is the database used when no other one is configured.
var Default = New()

// New returns a database backed by the embedded tz data.
func New() *Database {
	return &Database{load: tz.LoadLocation, aliases: windowsAliases()}
}

// Canonical returns the Olson identifier tzid refers to.
func (db *Database) Canonical(tzid string) (string, bool) {
	id := strings.TrimSpace(tzid)
	if id == "" || id == "Local" {
		return "", false
	}
	if olson, ok := db.aliases[strings.ToLower(id)]; ok {
		return olson, true
	}
	if _, err := db.load(id); err == nil {
		return id, true
	}
	// Vendor prefixed identifiers: drop leading path elements until the
	// rest is known.
	parts := strings.Split(strings.Trim(id, "/"), "/")
	for i := 1; i < len(parts); i++ {
		rest := strings.Join(parts[i:], "/")
		if _, err := db.load(rest); err == nil {
			return rest, true
		}
	}
	return "", false
}

func (db *Database) get(tzid string) (*entry, error) {
	if e, ok := db.cache.Load(tzid); ok {
		return e.(*entry), nil
	}
	olson, ok := db.Canonical(tzid)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", tzid)
	}
	loc, err := db.load(olson)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", olson)
	}
	if olson != tzid {
		if loc, err = rename(loc, tzid); err != nil {
			return nil, err
		}
	}
	e, _ := db.cache.LoadOrStore(tzid, &entry{loc: loc, container: Synthesize(tzid, loc)})
	return e.(*entry), nil
}

// Location returns the location for tzid, named tzid.
func (db *Database) Location(tzid string) (*time.Location, error) {
	e, err := db.get(tzid)
	if err != nil {
		return nil, err
	}
	return e.loc, nil
}

// Lookup returns a VTIMEZONE for tzid. The container is a copy the caller
// may modify.
func (db *Database) Lookup(tzid string) (*contentline.Container, error) {
	e, err := db.get(tzid)
	if err != nil {
		return nil, err
	}
	return e.container.Clone(true), nil
}
