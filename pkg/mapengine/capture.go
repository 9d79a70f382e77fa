package mapengine

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func captureFileName(year int, timestamp time.Time) string {
	return fmt.Sprintf("imprints-%d-%s.png", year, timestamp.Format("20060102-150405"))
}

func (e *Engine) captureFrame(img *ebiten.Image, year int, timestamp time.Time) {
	if e.CaptureDir == "" {
		return
	}

	if err := os.MkdirAll(e.CaptureDir, 0o755); err != nil {
		log.Printf("Error creating capture directory: %v", err)
		return
	}

	path := filepath.Join(e.CaptureDir, captureFileName(year, timestamp))

	// Copy the pixels now; the screen is reused for the next frame.
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	img.ReadPixels(rgba.Pix)

	go func() {
		if err := writePNG(path, rgba); err != nil {
			log.Printf("Error writing capture: %v", err)
			return
		}
		log.Printf("Captured frame: %s", path)
	}()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
