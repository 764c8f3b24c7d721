package services

import (
	"math"
	"strings"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

// Requirement weights. A condition hit is certain, an equipment hit less so,
// and every service row carrying a requested flag adds flagWeight.
const (
	conditionWeight = 1.0
	equipmentWeight = 0.8
	flagWeight      = 0.5
)

// Capability is one normalized row of what a clinic offers
type Capability struct {
	Condition string
	Equipment string
	Flags     map[entities.CapabilityFlag]bool
}

// CapabilitiesFromServices adapts stored service rows
func CapabilitiesFromServices(services []*entities.Service) []Capability {
	caps := make([]Capability, 0, len(services))
	for _, s := range services {
		c := Capability{
			Condition: strings.ToLower(s.Condition),
			Equipment: strings.ToLower(s.Equipment),
			Flags:     make(map[entities.CapabilityFlag]bool, len(entities.CapabilityFlags)),
		}
		for _, f := range entities.CapabilityFlags {
			if s.HasCapability(f) {
				c.Flags[f] = true
			}
		}
		caps = append(caps, c)
	}
	return caps
}

// CapabilitiesFromNames adapts a flat list of offered service or equipment
// names. Each name is one row matching as both condition and equipment; a name
// that spells a capability flag also sets that flag.
func CapabilitiesFromNames(names []string) []Capability {
	caps := make([]Capability, 0, len(names))
	for _, name := range names {
		lower := strings.ToLower(strings.TrimSpace(name))
		if lower == "" {
			continue
		}
		c := Capability{Condition: lower, Equipment: lower, Flags: map[entities.CapabilityFlag]bool{}}
		if f, ok := entities.ParseCapabilityFlag(name); ok {
			c.Flags[f] = true
		}
		caps = append(caps, c)
	}
	return caps
}

// EquipmentRequirements turns plain equipment names into requirements
func EquipmentRequirements(equipment []string) []entities.ServiceRequirement {
	reqs := make([]entities.ServiceRequirement, 0, len(equipment))
	for _, e := range equipment {
		if e = strings.TrimSpace(e); e != "" {
			reqs = append(reqs, entities.ServiceRequirement{Equipment: e})
		}
	}
	return reqs
}

// MatchScore returns the fraction of requirements the capabilities satisfy,
// in [0,1]. No requirements is a full match; requirements against a clinic
// with no capabilities score 0.
func MatchScore(caps []Capability, reqs []entities.ServiceRequirement) float64 {
	if len(reqs) == 0 {
		return 1.0
	}
	if len(caps) == 0 {
		return 0.0
	}

	var acc float64
	for _, req := range reqs {
		acc += requirementWeight(caps, req)
	}

	return clamp01(acc / float64(len(reqs)))
}

// requirementWeight applies the first branch that is satisfied: condition,
// then equipment, then flags. Flags are summed per matching row, not OR-ed.
func requirementWeight(caps []Capability, req entities.ServiceRequirement) float64 {
	if cond := strings.ToLower(strings.TrimSpace(req.Condition)); cond != "" {
		for _, c := range caps {
			if strings.Contains(c.Condition, cond) {
				return conditionWeight
			}
		}
	}

	if equip := strings.ToLower(strings.TrimSpace(req.Equipment)); equip != "" {
		for _, c := range caps {
			if strings.Contains(c.Equipment, equip) {
				return equipmentWeight
			}
		}
	}

	var w float64
	for _, f := range req.Flags {
		for _, c := range caps {
			if c.Flags[f] {
				w += flagWeight
			}
		}
	}
	return w
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
