package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() CablingTree {
	return CablingTree{
		SurveyID: "s1",
		Buildings: []CablingBuilding{{
			Name: "HQ",
			CentralRacks: []CablingRack{{
				Name:    "MDF",
				Devices: []CablingDevice{{Name: "Core switch", Quantity: 1}},
			}},
			Floors: []CablingFloor{{
				Name:  "Ground",
				Racks: []CablingRack{{Name: "IDF-0", Devices: []CablingDevice{{Name: "Patch panel", Quantity: 2}}}},
				Rooms: []CablingRoom{{Name: "Reception", Outlets: 4, Devices: []CablingDevice{{Name: "IP phone", Quantity: 3}}}},
			}},
		}},
	}
}

func TestCablingTree_ValidateOK(t *testing.T) {
	tree := sampleTree()
	assert.NoError(t, tree.Validate())
}

func TestCablingTree_ValidateCollectsFieldErrors(t *testing.T) {
	tree := sampleTree()
	tree.Buildings[0].Floors[0].Name = " "
	tree.Buildings[0].Floors[0].Rooms[0].Devices[0].Quantity = 0
	tree.Buildings[0].CentralRacks[0].Images = []CablingImage{{URL: ""}}

	err := tree.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "buildings[0].floors[0].name")
	assert.Contains(t, verr.Fields, "buildings[0].floors[0].rooms[0].devices[0].quantity")
	assert.Contains(t, verr.Fields, "buildings[0].central_racks[0].images[0].url")
}

func TestCablingTree_Devices(t *testing.T) {
	tree := sampleTree()
	devices := tree.Devices()
	require.Len(t, devices, 3)
	assert.Equal(t, "Core switch", devices[0].Name)
	assert.Equal(t, "Patch panel", devices[1].Name)
	assert.Equal(t, "IP phone", devices[2].Name)
}

func TestCablingTree_Normalize(t *testing.T) {
	tree := CablingTree{Buildings: []CablingBuilding{{Name: "B", Floors: []CablingFloor{{Name: "F", Rooms: []CablingRoom{{Name: "R"}}}}}}}
	tree.Normalize()

	b := tree.Buildings[0]
	assert.NotNil(t, b.Images)
	assert.NotNil(t, b.CentralRacks)
	assert.NotNil(t, b.Floors[0].Racks)
	assert.NotNil(t, b.Floors[0].Rooms[0].Devices)
	assert.NotNil(t, b.Floors[0].Rooms[0].Images)

	empty := CablingTree{}
	empty.Normalize()
	assert.NotNil(t, empty.Buildings)
}

func TestNewPage_Basic(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Size: DefaultPageSize}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 3, Size: MaxPageSize}, NewPage(3, 1000))
	p := NewPage(2, 10)
	assert.Equal(t, uint64(10), p.Offset())
	assert.Equal(t, uint64(10), p.Limit())
}

func TestMenuItem_VisibleTo(t *testing.T) {
	open := MenuItem{IsActive: true}
	assert.True(t, open.VisibleTo(RoleUser))

	restricted := MenuItem{IsActive: true, Roles: []string{"MANAGER"}}
	assert.True(t, restricted.VisibleTo(RoleManager))
	assert.True(t, restricted.VisibleTo(RoleAdmin))
	assert.False(t, restricted.VisibleTo(RoleEmployee))

	inactive := MenuItem{IsActive: false}
	assert.False(t, inactive.VisibleTo(RoleAdmin))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "bad", "a": "worse"}}
	assert.Equal(t, "validation failed: a: worse; b: bad;", err.Error())
}
