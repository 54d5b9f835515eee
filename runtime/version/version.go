// Package version enumerates the consensus fork versions.
package version

const (
	Phase0 = iota
	Altair
	Bellatrix
	Capella
	Deneb
	Electra
)

// String returns the canonical lowercase name of the fork version.
func String(version int) string {
	switch version {
	case Phase0:
		return "phase0"
	case Altair:
		return "altair"
	case Bellatrix:
		return "bellatrix"
	case Capella:
		return "capella"
	case Deneb:
		return "deneb"
	case Electra:
		return "electra"
	default:
		return "unknown version"
	}
}
