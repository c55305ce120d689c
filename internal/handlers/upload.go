package handlers

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var errUnsupportedImage = errors.New("Unsupported image format. Only PNG, JPG, JPEG are allowed.")

// saveProductImage processes an optional "image" upload: decode, resize
// to 800px wide, re-encode as jpeg and store under uploadDir with a
// unique name. Returns "" with no error when no file was sent.
func saveProductImage(r *http.Request, uploadDir string) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	var img image.Image
	switch filepath.Ext(header.Filename) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	default:
		return "", errUnsupportedImage
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	// Max width 800px, preserve aspect ratio
	resized := resize.Resize(800, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	out, err := os.Create(filepath.Join(uploadDir, filename))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return "/static/uploads/" + filename, nil
}
