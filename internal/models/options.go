package models

// ResizeSpec asks the transform stage to downsize and recompress an image.
// Quality is in the range (0, 1].
type ResizeSpec struct {
	MaxWidth  int     `json:"max_width"`
	MaxHeight int     `json:"max_height"`
	Quality   float64 `json:"quality"`
}

// Progress is reported after every job that finishes, successfully or not.
type Progress struct {
	Current   int
	Total     int
	SourceRef string
}
