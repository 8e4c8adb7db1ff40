// Package embedded содержит иконки трея. Иконки рисуются при запуске,
// бинарные ресурсы в репозитории не хранятся.
package embedded

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 64

var (
	// IconIdle - иконка в состоянии ожидания (серая).
	IconIdle = mustRender(color.RGBA{128, 128, 128, 255})
	// IconRecording - иконка во время записи (красная).
	IconRecording = mustRender(color.RGBA{220, 50, 50, 255})
)

// Render рисует микрофон: круг с ножкой, в PNG.
func Render(c color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	centerX, centerY := iconSize/2, iconSize/2-4
	const radius = 20

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := x-centerX, y-centerY
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}

	// Ножка
	for y := centerY + radius; y < min(centerY+radius+10, iconSize); y++ {
		for x := centerX - 3; x <= centerX+3; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mustRender(c color.RGBA) []byte {
	data, err := Render(c)
	if err != nil {
		panic(err)
	}
	return data
}
