package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/vetclinicdiscovery/internal/application/services"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

func capabilities(rows ...*entities.Service) []services.Capability {
	return services.CapabilitiesFromServices(rows)
}

func TestMatchScore_NoRequirementsIsFullMatch(t *testing.T) {
	assert.Equal(t, 1.0, services.MatchScore(nil, nil))
	assert.Equal(t, 1.0, services.MatchScore(capabilities(&entities.Service{Condition: "Dermatology"}), []entities.ServiceRequirement{}))
}

func TestMatchScore_NoCapabilitiesIsZero(t *testing.T) {
	reqs := []entities.ServiceRequirement{{Condition: "dermatology"}}
	assert.Equal(t, 0.0, services.MatchScore(nil, reqs))
}

func TestMatchScore_ConditionCountsOncePerRequirement(t *testing.T) {
	caps := capabilities(
		&entities.Service{Condition: "Dermatology"},
		&entities.Service{Condition: "Veterinary dermatology"},
	)
	reqs := []entities.ServiceRequirement{{Condition: "DERMA"}}

	assert.Equal(t, 1.0, services.MatchScore(caps, reqs))
}

func TestMatchScore_EquipmentWeighsLess(t *testing.T) {
	caps := capabilities(&entities.Service{Equipment: "Digital X-Ray"})
	reqs := []entities.ServiceRequirement{{Equipment: "x-ray"}}

	assert.InDelta(t, 0.8, services.MatchScore(caps, reqs), 1e-9)
}

func TestMatchScore_ConditionTakesPrecedenceOverEquipment(t *testing.T) {
	caps := capabilities(&entities.Service{Condition: "fracture", Equipment: "x-ray"})
	reqs := []entities.ServiceRequirement{{Condition: "fracture", Equipment: "x-ray"}}

	assert.Equal(t, 1.0, services.MatchScore(caps, reqs))
}

func TestMatchScore_FlagsSumPerRow(t *testing.T) {
	one := capabilities(&entities.Service{Surgery: true})
	reqs := []entities.ServiceRequirement{{Flags: []entities.CapabilityFlag{entities.FlagSurgery, entities.FlagDentalCare}}}
	assert.InDelta(t, 0.5, services.MatchScore(one, reqs), 1e-9)

	two := capabilities(&entities.Service{Surgery: true}, &entities.Service{Surgery: true, DentalCare: true})
	assert.Equal(t, 1.0, services.MatchScore(two, reqs), "three flag hits clamp to 1")
}

func TestMatchScore_AveragesAcrossRequirements(t *testing.T) {
	caps := capabilities(
		&entities.Service{Condition: "dermatology"},
		&entities.Service{Equipment: "ultrasound"},
	)
	reqs := []entities.ServiceRequirement{
		{Condition: "dermatology"},
		{Equipment: "ultrasound"},
		{Condition: "oncology"},
	}

	assert.InDelta(t, 0.6, services.MatchScore(caps, reqs), 1e-9)
}

func TestMatchScore_MissIsZero(t *testing.T) {
	caps := capabilities(&entities.Service{Condition: "dermatology", Grooming: true})
	reqs := []entities.ServiceRequirement{{Condition: "oncology", Flags: []entities.CapabilityFlag{entities.FlagSurgery}}}

	assert.Equal(t, 0.0, services.MatchScore(caps, reqs))
}

func TestCapabilitiesFromNames(t *testing.T) {
	caps := services.CapabilitiesFromNames([]string{"Surgery", " Ultrasound ", "  "})

	assert.Len(t, caps, 2)
	assert.Equal(t, "surgery", caps[0].Condition)
	assert.True(t, caps[0].Flags[entities.FlagSurgery])
	assert.Equal(t, "ultrasound", caps[1].Equipment)
	assert.Empty(t, caps[1].Flags)

	reqs := []entities.ServiceRequirement{{Flags: []entities.CapabilityFlag{entities.FlagSurgery}}}
	assert.InDelta(t, 0.5, services.MatchScore(caps, reqs), 1e-9)
}

func TestEquipmentRequirements_DropsBlanks(t *testing.T) {
	reqs := services.EquipmentRequirements([]string{"x-ray", " ", "", " ultrasound"})

	assert.Equal(t, []entities.ServiceRequirement{{Equipment: "x-ray"}, {Equipment: "ultrasound"}}, reqs)
}
