package tzdb

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed windows_zones.yaml
var windowsZonesYAML []byte

type aliasTable struct {
	Windows map[string]string `yaml:"windows"`
}

// windowsAliases maps lower case Windows zone names to Olson identifiers.
func windowsAliases() map[string]string {
	var t aliasTable
	if err := yaml.Unmarshal(windowsZonesYAML, &t); err != nil {
		panic("tzdb: bad windows_zones.yaml: " + err.Error())
	}
	r := make(map[string]string, len(t.Windows))
	for name, olson := range t.Windows {
		r[strings.ToLower(name)] = olson
	}
	return r
}
