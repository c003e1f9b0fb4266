package models

import (
	"strings"
)

// ProcedureInfo is the static eligibility record for one procedure name.
// Procedures with no teams are matched by ward instead.
type ProcedureInfo struct {
	Teams []string `json:"teams"`
	Wards []string `json:"wards"`
}

// ProcedureCatalog maps normalized procedure names to their eligible teams
// and wards. It is loaded once at startup and passed explicitly to whoever
// needs it.
type ProcedureCatalog struct {
	entries map[string]ProcedureInfo
}

// NewProcedureCatalog builds a catalog from raw entries, normalizing names.
func NewProcedureCatalog(entries map[string]ProcedureInfo) *ProcedureCatalog {
	normalized := make(map[string]ProcedureInfo, len(entries))
	for name, info := range entries {
		normalized[strings.ToUpper(strings.TrimSpace(name))] = info
	}
	return &ProcedureCatalog{entries: normalized}
}

// Lookup returns the eligibility record for a normalized procedure name.
func (c *ProcedureCatalog) Lookup(name string) (ProcedureInfo, bool) {
	if c == nil {
		return ProcedureInfo{}, false
	}
	info, ok := c.entries[strings.ToUpper(strings.TrimSpace(name))]
	return info, ok
}

// Size returns the number of catalog entries.
func (c *ProcedureCatalog) Size() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
