package canvas

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularOnce sync.Once
	regularFont *truetype.Font
	regularErr  error
)

func loadRegular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = truetype.Parse(goregular.TTF)
		if regularErr != nil {
			regularErr = fmt.Errorf("failed to parse go regular font: %w", regularErr)
		}
	})
	return regularFont, regularErr
}

type faceCache struct {
	font  *truetype.Font
	faces map[float64]font.Face
}

func newFaceCache() (*faceCache, error) {
	f, err := loadRegular()
	if err != nil {
		return nil, err
	}
	return &faceCache{font: f, faces: make(map[float64]font.Face)}, nil
}

func (c *faceCache) face(size float64) font.Face {
	if face, ok := c.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(c.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	c.faces[size] = face
	return face
}
