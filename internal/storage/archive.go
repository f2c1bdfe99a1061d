package storage

import (
	"context"
	"strings"

	"lumafab/internal/domain"
)

// SaveDesignImage archives a generated lampshade image under the design's
// directory, named after the pipeline stage that produced it. It returns the
// storage key of the written file.
func (s *FileStore) SaveDesignImage(ctx context.Context, designID, stage string, img domain.GeneratedImage) (string, error) {
	key := designID + "/" + stage + extensionFor(img.MimeType)
	return s.Write(ctx, key, img.Data)
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
