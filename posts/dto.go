package posts

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PostInput is the editable part of a post, sent as multipart form fields on
// create and update.
type PostInput struct {
	Title   string `validate:"required,min=3"`
	Content string `validate:"required,min=10"`
}

// ImageFile is an optional image attachment for a post.
type ImageFile struct {
	// Name is the client-side file name, e.g. "cover.png".
	Name string
	// ContentType is the MIME type, e.g. "image/png".
	ContentType string
	// Data is the raw file content.
	Data []byte
}

// Upload constraints for post images.
const (
	// MaxImageSize is the largest accepted image, in bytes.
	MaxImageSize = 5 * 1024 * 1024 // 5 MiB
)

// allowedImageTypes are the accepted image MIME types.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// allowedImageExtensions are the accepted file extensions, checked when the
// content type is missing.
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Validate checks the attachment against the upload constraints. A nil
// receiver is valid: the image is optional.
func (f *ImageFile) Validate() error {
	if f == nil {
		return nil
	}
	if len(f.Data) == 0 {
		return fmt.Errorf("image file is empty")
	}
	if len(f.Data) > MaxImageSize {
		return fmt.Errorf("file size should be less than 5MB")
	}
	if f.ContentType != "" {
		if !allowedImageTypes[strings.ToLower(f.ContentType)] {
			return fmt.Errorf("please select a valid image file (JPEG, PNG, WebP)")
		}
		return nil
	}
	if !allowedImageExtensions[strings.ToLower(filepath.Ext(f.Name))] {
		return fmt.Errorf("please select a valid image file (JPEG, PNG, WebP)")
	}
	return nil
}
