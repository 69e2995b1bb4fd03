// Package artifact provides the definition and persistence of generated
// content artifacts.
package artifact

// Artifact represents a generated content artifact such as an image, video,
// audio clip or 3D model.
type Artifact struct {
	// Data contains the raw bytes (required).
	Data []byte `json:"data,omitempty"`
	// MimeType is the IANA standard MIME type of the data, when known.
	MimeType string `json:"mime_type,omitempty"`
	// Name is an optional display name of the artifact.
	Name string `json:"name,omitempty"`
}
