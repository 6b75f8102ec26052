package file

import (
	"image"
	"image/jpeg"
	"os"
	"strings"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// Thumbnails are square cover-fit crops, always encoded as JPEG.
const thumbnailSize = 200

func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// generateThumbnail decodes srcPath, center-crops it to a square, scales it
// to thumbnailSize and writes the result to dstPath. It returns the source
// image dimensions.
func generateThumbnail(srcPath, dstPath string) (width, height int, err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return 0, 0, err
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()

	// Centered square crop keeps the cover-fit aspect
	side := width
	if height < side {
		side = height
	}
	x0 := bounds.Min.X + (width-side)/2
	y0 := bounds.Min.Y + (height-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, thumbnailSize, thumbnailSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, xdraw.Src, nil)

	out, err := os.Create(dstPath)
	if err != nil {
		return 0, 0, err
	}
	defer out.Close()

	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: 80}); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}
