package cli

import "lazydotnet/internal/config"

// Flags holds command-line flags
type Flags struct {
	Target     string
	NameFilter string
	NoBuild    bool
	FailFast   bool
	OpenViewer bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Target:     f.Target,
		NameFilter: f.NameFilter,
		NoBuild:    f.NoBuild,
		FailFast:   f.FailFast,
		OpenViewer: f.OpenViewer,
	}
}
