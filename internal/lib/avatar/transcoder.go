// Package avatar нормализует загруженные изображения аватаров.
//
// Transcoder декодирует буфер с изображением (jpeg или png), приводит его
// к квадрату фиксированного размера с обрезкой по центру и кодирует в PNG.
package avatar

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// DefaultSize — сторона квадрата результирующего аватара в пикселях.
const DefaultSize = 250

// Transcoder приводит произвольное изображение к PNG фиксированного размера.
type Transcoder struct {
	size int // Сторона результирующего квадрата
}

// NewTranscoder создает Transcoder с указанной стороной квадрата.
// При size <= 0 используется DefaultSize.
func NewTranscoder(size int) *Transcoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Transcoder{size: size}
}

// Transcode декодирует данные изображения, масштабирует их с обрезкой
// по центру до квадрата size x size и возвращает PNG-байты.
//
// Ошибка декодирования означает, что загружен не поддерживаемый формат.
func (t *Transcoder) Transcode(data []byte) ([]byte, error) {
	const op = "avatar.Transcode"

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	thumb := imaging.Fill(img, t.size, t.size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
