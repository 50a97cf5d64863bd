package domain

import (
	"strconv"
	"strings"
)

// Cabling hierarchy of a site survey:
//
//	building -> floor -> room | rack -> device
//
// A building may also own central racks (racks without a floor).

// CablingImage photo attached to a node. Images are replaced wholesale on save.
type CablingImage struct {
	URL     string  `json:"url"`
	Caption *string `json:"caption,omitempty"`
}

// CablingDevice equipment placed in a rack or a room.
type CablingDevice struct {
	ID        string  `json:"id,omitempty"`
	ProductID *string `json:"product_id,omitempty"`
	Name      string  `json:"name"`
	Type      *string `json:"type,omitempty"`
	Brand     *string `json:"brand,omitempty"`
	Model     *string `json:"model,omitempty"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes,omitempty"`
}

type CablingRack struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Location *string         `json:"location,omitempty"`
	Units    *int            `json:"units,omitempty"`
	Notes    *string         `json:"notes,omitempty"`
	Devices  []CablingDevice `json:"devices"`
	Images   []CablingImage  `json:"images"`
}

type CablingRoom struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Type    *string         `json:"type,omitempty"`
	Outlets int             `json:"outlets"`
	Notes   *string         `json:"notes,omitempty"`
	Devices []CablingDevice `json:"devices"`
	Images  []CablingImage  `json:"images"`
}

type CablingFloor struct {
	ID     string         `json:"id,omitempty"`
	Name   string         `json:"name"`
	Level  int            `json:"level"`
	Notes  *string        `json:"notes,omitempty"`
	Racks  []CablingRack  `json:"racks"`
	Rooms  []CablingRoom  `json:"rooms"`
	Images []CablingImage `json:"images"`
}

type CablingBuilding struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Code         *string        `json:"code,omitempty"`
	Address      *string        `json:"address,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	CentralRacks []CablingRack  `json:"central_racks"`
	Floors       []CablingFloor `json:"floors"`
	Images       []CablingImage `json:"images"`
}

// CablingTree the full hierarchy saved and loaded as one document.
type CablingTree struct {
	SurveyID  string            `json:"survey_id"`
	Buildings []CablingBuilding `json:"buildings"`
}

// Cabling node kinds, used as cabling_images.entity_type.
const (
	CablingEntityBuilding = "BUILDING"
	CablingEntityFloor    = "FLOOR"
	CablingEntityRack     = "RACK"
	CablingEntityRoom     = "ROOM"
)

// Validate checks names, quantities and image URLs across the tree.
func (t *CablingTree) Validate() error {
	fields := map[string]string{}
	for bi, b := range t.Buildings {
		bp := "buildings[" + strconv.Itoa(bi) + "]"
		requireName(fields, bp, b.Name)
		validateImages(fields, bp, b.Images)
		for ri, r := range b.CentralRacks {
			validateRack(fields, bp+".central_racks["+strconv.Itoa(ri)+"]", r)
		}
		for fi, f := range b.Floors {
			fp := bp + ".floors[" + strconv.Itoa(fi) + "]"
			requireName(fields, fp, f.Name)
			validateImages(fields, fp, f.Images)
			for ri, r := range f.Racks {
				validateRack(fields, fp+".racks["+strconv.Itoa(ri)+"]", r)
			}
			for ri, r := range f.Rooms {
				rp := fp + ".rooms[" + strconv.Itoa(ri) + "]"
				requireName(fields, rp, r.Name)
				if r.Outlets < 0 {
					fields[rp+".outlets"] = "must be >= 0"
				}
				validateImages(fields, rp, r.Images)
				validateDevices(fields, rp, r.Devices)
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Devices flattens every device in the tree, in document order.
func (t *CablingTree) Devices() []CablingDevice {
	var out []CablingDevice
	for _, b := range t.Buildings {
		for _, r := range b.CentralRacks {
			out = append(out, r.Devices...)
		}
		for _, f := range b.Floors {
			for _, r := range f.Racks {
				out = append(out, r.Devices...)
			}
			for _, r := range f.Rooms {
				out = append(out, r.Devices...)
			}
		}
	}
	return out
}

// Normalize replaces nil slices with empty ones so the tree encodes with [] everywhere.
func (t *CablingTree) Normalize() {
	if t.Buildings == nil {
		t.Buildings = []CablingBuilding{}
	}
	for bi := range t.Buildings {
		b := &t.Buildings[bi]
		b.Images = nonNilImages(b.Images)
		if b.CentralRacks == nil {
			b.CentralRacks = []CablingRack{}
		}
		if b.Floors == nil {
			b.Floors = []CablingFloor{}
		}
		for ri := range b.CentralRacks {
			normalizeRack(&b.CentralRacks[ri])
		}
		for fi := range b.Floors {
			f := &b.Floors[fi]
			f.Images = nonNilImages(f.Images)
			if f.Racks == nil {
				f.Racks = []CablingRack{}
			}
			if f.Rooms == nil {
				f.Rooms = []CablingRoom{}
			}
			for ri := range f.Racks {
				normalizeRack(&f.Racks[ri])
			}
			for ri := range f.Rooms {
				r := &f.Rooms[ri]
				r.Images = nonNilImages(r.Images)
				if r.Devices == nil {
					r.Devices = []CablingDevice{}
				}
			}
		}
	}
}

func normalizeRack(r *CablingRack) {
	r.Images = nonNilImages(r.Images)
	if r.Devices == nil {
		r.Devices = []CablingDevice{}
	}
}

func nonNilImages(in []CablingImage) []CablingImage {
	if in == nil {
		return []CablingImage{}
	}
	return in
}

func validateRack(fields map[string]string, path string, r CablingRack) {
	requireName(fields, path, r.Name)
	if r.Units != nil && *r.Units <= 0 {
		fields[path+".units"] = "must be > 0"
	}
	validateImages(fields, path, r.Images)
	validateDevices(fields, path, r.Devices)
}

func validateDevices(fields map[string]string, path string, devices []CablingDevice) {
	for di, d := range devices {
		dp := path + ".devices[" + strconv.Itoa(di) + "]"
		requireName(fields, dp, d.Name)
		if d.Quantity < 1 {
			fields[dp+".quantity"] = "must be >= 1"
		}
	}
}

func validateImages(fields map[string]string, path string, images []CablingImage) {
	for ii, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			fields[path+".images["+strconv.Itoa(ii)+"].url"] = "is required"
		}
	}
}

func requireName(fields map[string]string, path, name string) {
	if strings.TrimSpace(name) == "" {
		fields[path+".name"] = "is required"
	}
}
