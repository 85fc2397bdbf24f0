package models

// Canvas is a named container of widgets on the Canvus server.
// The server identifies canvases by opaque IDs; lookups from this service
// always go through the name.
type Canvas struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Point is a widget position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a widget's width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Note is a text widget on a canvas. The text field doubles as the carrier
// for instruction markers and their processing state.
type Note struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Text            string  `json:"text"`
	Depth           int     `json:"depth"`
	Location        Point   `json:"location"`
	Size            Size    `json:"size"`
	Scale           float64 `json:"scale"`
	BackgroundColor string  `json:"background_color"`
}

// NoteCreate is the payload for creating a new note.
type NoteCreate struct {
	Title           string  `json:"title"`
	Text            string  `json:"text"`
	Depth           int     `json:"depth"`
	Location        Point   `json:"location"`
	Size            Size    `json:"size"`
	Scale           float64 `json:"scale"`
	BackgroundColor string  `json:"background_color"`
}

// ImageCreate is the JSON metadata part of a multipart image upload.
type ImageCreate struct {
	Title    string  `json:"title"`
	Depth    int     `json:"depth"`
	Location Point   `json:"location"`
	Size     Size    `json:"size"`
	Scale    float64 `json:"scale"`
}
