package models

// LineMeta is the catalog description of a bus line.
type LineMeta struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	NormalizedName string  `json:"-"`
	ColorHex       *string `json:"color_hex,omitempty"`
}
