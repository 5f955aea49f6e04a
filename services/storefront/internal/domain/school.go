package domain

type School struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Board        string `json:"board"`
	SessionStart string `json:"session_start"`
	SessionEnd   string `json:"session_end"`
	IsActive     bool   `json:"is_active"`
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderUnisex Gender = "Unisex"
)

// UniformSpec is a school's catalog entry, independent of who sells it.
type UniformSpec struct {
	ID           string         `json:"id"`
	ItemType     string         `json:"item_type"`
	Gender       Gender         `json:"gender"`
	Season       string         `json:"season"`
	FabricGSM    int            `json:"fabric_gsm"`
	Pantone      string         `json:"pantone"`
	Measurements map[string]any `json:"measurements"`
	Frozen       bool           `json:"frozen"`
	Version      int            `json:"version"`
	Listings     []Listing      `json:"listings,omitempty"`
}
