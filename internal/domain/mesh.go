package domain

// MeshTaskStatus enumerates the lifecycle states reported by the mesh
// conversion service.
type MeshTaskStatus string

const (
	MeshStatusPending    MeshTaskStatus = "PENDING"
	MeshStatusInProgress MeshTaskStatus = "IN_PROGRESS"
	MeshStatusSucceeded  MeshTaskStatus = "SUCCEEDED"
	MeshStatusFailed     MeshTaskStatus = "FAILED"
	MeshStatusCanceled   MeshTaskStatus = "CANCELED"
)

// Terminal reports whether the status can no longer change.
func (s MeshTaskStatus) Terminal() bool {
	switch s {
	case MeshStatusSucceeded, MeshStatusFailed, MeshStatusCanceled:
		return true
	}
	return false
}

// ModelURLs holds the download locations of a finished mesh in every format
// the service exports.
type ModelURLs struct {
	GLB  string `json:"glb,omitempty"`
	FBX  string `json:"fbx,omitempty"`
	OBJ  string `json:"obj,omitempty"`
	USDZ string `json:"usdz,omitempty"`
}

// TextureURLs holds the PBR texture maps attached to a textured mesh.
type TextureURLs struct {
	BaseColor string `json:"base_color,omitempty"`
	Metallic  string `json:"metallic,omitempty"`
	Normal    string `json:"normal,omitempty"`
	Roughness string `json:"roughness,omitempty"`
}

// MeshTask is the normalized view of one image-to-3D conversion job. A task
// is bound to exactly one input image at creation and is owned by the
// request that created it; it only changes through status polls.
type MeshTask struct {
	ID           string
	Status       MeshTaskStatus
	Progress     int
	ModelURLs    *ModelURLs
	ThumbnailURL string
	TextureURLs  []TextureURLs
	Error        string
}
