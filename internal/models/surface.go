package models

// SurfaceColumns is the CSV header of an attack surface map.
var SurfaceColumns = []string{
	"Enum",
	"Port",
	"Protocol",
	"State",
	"Service",
	"Version",
	"Hypothesis",
	"Notes",
	"Loot",
}

// PortRow is one open port parsed from nmap output. Hypothesis, Notes and
// Loot start empty and are filled in by hand.
type PortRow struct {
	Enum       string `json:"enum"`
	Port       string `json:"port"`
	Protocol   string `json:"protocol"`
	State      string `json:"state"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	Hypothesis string `json:"hypothesis"`
	Notes      string `json:"notes"`
	Loot       string `json:"loot"`
}

// Record returns the row in SurfaceColumns order.
func (r PortRow) Record() []string {
	return []string{r.Enum, r.Port, r.Protocol, r.State, r.Service, r.Version, r.Hypothesis, r.Notes, r.Loot}
}
