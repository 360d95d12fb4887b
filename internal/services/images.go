package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"neor/internal/models"
)

const (
	PfpWidth     = 128
	MiniPfpWidth = 32

	// MaxPfpBytes caps the size of an uploaded profile picture.
	MaxPfpBytes = 8 << 20
	// maxPfpPixels guards against decompression bombs.
	maxPfpPixels = 40_000_000
)

var ErrInvalidImage = errors.New("images: invalid image")

// FileStore reserves ids for stored files.
type FileStore interface {
	CreateFile(ctx context.Context, extension string) (*models.File, error)
	DeleteFile(ctx context.Context, id uint64) error
}

// ImageService resizes profile pictures and writes them under dir.
type ImageService struct {
	dir   string
	files FileStore
}

func NewImageService(dir string, files FileStore) *ImageService {
	return &ImageService{dir: dir, files: files}
}

func (s *ImageService) Dir() string { return s.dir }

// SaveProfilePicture decodes r (png, jpeg, gif or webp) and stores a full
// size and a mini PNG rendition.
func (s *ImageService) SaveProfilePicture(ctx context.Context, r io.Reader) (pfp, mini *models.File, err error) {
	src, err := decodeBounded(io.LimitReader(r, MaxPfpBytes+1))
	if err != nil {
		return nil, nil, err
	}

	pfp, err = s.store(ctx, resize(src, PfpWidth))
	if err != nil {
		return nil, nil, err
	}
	mini, err = s.store(ctx, resize(src, MiniPfpWidth))
	if err != nil {
		s.remove(ctx, pfp)
		return nil, nil, err
	}
	return pfp, mini, nil
}

func decodeBounded(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) > MaxPfpBytes || len(data) == 0 {
		return nil, ErrInvalidImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPfpPixels {
		return nil, ErrInvalidImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// resize scales src to width, keeping the aspect ratio.
func resize(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func (s *ImageService) store(ctx context.Context, img image.Image) (*models.File, error) {
	f, err := s.files.CreateFile(ctx, "png")
	if err != nil {
		return nil, err
	}
	if err := writePNG(filepath.Join(s.dir, f.Name()), img); err != nil {
		_ = s.files.DeleteFile(ctx, f.ID)
		return nil, err
	}
	return f, nil
}

func (s *ImageService) remove(ctx context.Context, f *models.File) {
	_ = os.Remove(filepath.Join(s.dir, f.Name()))
	_ = s.files.DeleteFile(ctx, f.ID)
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("images: create %s: %w", path, err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("images: encode %s: %w", path, err)
	}
	return out.Close()
}

// EnsurePlaceholders creates the files directory and the default and
// not-found pictures if they are missing.
func (s *ImageService) EnsurePlaceholders() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("images: %w", err)
	}

	placeholders := map[string]color.RGBA{
		"default.png":   {R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff},
		"not_found.png": {R: 0xf0, G: 0x80, B: 0x80, A: 0xff},
	}
	for name, c := range placeholders {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		img := image.NewRGBA(image.Rect(0, 0, PfpWidth, PfpWidth))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
		if err := writePNG(path, img); err != nil {
			return err
		}
	}
	return nil
}
