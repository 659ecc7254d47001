package version

import (
	"runtime/debug"
)

type Info struct {
	Commit    string `json:"commit"`
	Time      string `json:"time"`
	GoVersion string `json:"goVersion"`
	Modified  bool   `json:"modified"`
}

// Version is read from the vcs stamps the go tool embeds in the binary.
var Version = func() Info {
	v := Info{}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	v.GoVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			v.Commit = setting.Value
		case "vcs.time":
			v.Time = setting.Value
		case "vcs.modified":
			v.Modified = setting.Value == "true"
		}
	}
	return v
}()

func (i Info) String() string {
	if i.Commit == "" {
		return "devel"
	}
	commit := i.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return commit + " " + i.Time
}
