package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// GenerationRequest captures one user-initiated design request. It is
// immutable once handed to the pipeline.
type GenerationRequest struct {
	UserPrompt string
	Want3D     bool
}

// GeneratedImage holds the raw bytes of a model-produced image. Images are
// transient: they only live in memory and in the response payload, never on
// disk unless the design archive is enabled.
type GeneratedImage struct {
	Data        []byte
	MimeType    string
	Description string
}

// DataURI renders the image as a data URI suitable for the frontend.
func (g GeneratedImage) DataURI() string {
	mime := g.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(g.Data))
}

// ParseDataURI splits a data URI into raw bytes and mime type. A bare base64
// string (no data: prefix) is accepted and defaults to image/png.
func ParseDataURI(uri string) (GeneratedImage, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return GeneratedImage{}, fmt.Errorf("%w: image data is required", ErrInvalidInput)
	}
	mime := "image/png"
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		comma := strings.IndexByte(uri, ',')
		if comma < 0 {
			return GeneratedImage{}, fmt.Errorf("%w: malformed data uri", ErrInvalidInput)
		}
		header := uri[len("data:"):comma]
		payload = uri[comma+1:]
		if semi := strings.IndexByte(header, ';'); semi >= 0 {
			header = header[:semi]
		}
		if header != "" {
			mime = header
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return GeneratedImage{}, fmt.Errorf("%w: invalid base64 image payload", ErrInvalidInput)
	}
	return GeneratedImage{Data: data, MimeType: mime}, nil
}

// Styles is the closed vocabulary of lampshade surface styles the prompt
// builder may pick from.
var Styles = []string{
	"organic lattice",
	"geometric mesh",
	"nature-inspired pattern",
	"minimalist grid",
	"Art Deco inspired",
	"Japanese washi paper texture",
}

// Environments is the closed vocabulary of photo environments.
var Environments = []string{
	"oak side table",
	"marble console",
	"birch nightstand",
	"walnut desk",
	"white ceramic surface",
	"concrete plinth",
}
