package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"isogrid/assets"

	"github.com/anthonynsimon/bild/transform"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// The tga package registers itself with image.RegisterFormat using an empty
// magic string, which matches every input. image.Decode is therefore not
// usable once it is linked in, and formats are sniffed here instead. TGA has
// no magic and is tried last.
type format struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}

var formats = []format{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"gif", "GIF8", gif.Decode},
	{"bmp", "BM", bmp.Decode},
	{"webp", "RIFF????WEBP", webp.Decode},
}

// ErrFormat is returned when the data is not in any supported format.
var ErrFormat = errors.New("texture: unknown image format")

func match(magic string, b []byte) bool {
	if len(b) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != b[i] {
			return false
		}
	}
	return true
}

func sniff(raw []byte) format {
	for _, f := range formats {
		if match(f.magic, raw) {
			return f
		}
	}
	return format{name: "tga", decode: tga.Decode}
}

// Decode reads a png, jpeg, gif, bmp, webp or tga image and returns it as
// straight-alpha NRGBA with the rows flipped so the first row in Pix is the
// bottom of the picture, which is what glTexImage2D expects.
func Decode(r io.Reader) (*image.NRGBA, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("texture: read: %w", err)
	}
	f := sniff(raw)
	img, err := f.decode(bytes.NewReader(raw))
	if err != nil {
		if f.name == "tga" {
			return nil, fmt.Errorf("texture: decode: %w: %v", ErrFormat, err)
		}
		return nil, fmt.Errorf("texture: decode %s: %w", f.name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("texture: %s image is empty", f.name)
	}
	return flipV(toNRGBA(img)), nil
}

// Load decodes the image at path. An empty path loads the embedded road tile.
func Load(path string) (*image.NRGBA, error) {
	if path == "" {
		return Decode(bytes.NewReader(assets.RoadTile))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return img, nil
}

// toNRGBA converts src to *image.NRGBA anchored at (0,0) with a tight stride.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == b.Dx()*4 {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// flipV mirrors the rows of img. FlipV only moves bytes, so the NRGBA pixels
// pass through the RGBA view untouched.
func flipV(img *image.NRGBA) *image.NRGBA {
	return (*image.NRGBA)(transform.FlipV((*image.RGBA)(img)))
}
