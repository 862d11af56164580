// Package buildinfo carries version details stamped at link time:
//
//	go build -ldflags "-X vendzone/internal/buildinfo.Version=v1.2.0 -X vendzone/internal/buildinfo.Commit=$(git rev-parse HEAD)"
package buildinfo

import "runtime"

var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	return map[string]string{
		"service":   "vendzone",
		"version":   Version,
		"commit":    Commit,
		"builtAt":   BuiltAt,
		"goVersion": runtime.Version(),
	}
}

// String is the one-line form printed by zonectl version.
func String() string {
	s := "vendzone " + Version
	if Commit != "" {
		c := Commit
		if len(c) > 12 {
			c = c[:12]
		}
		s += " (" + c + ")"
	}
	return s
}
