package favicon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"
)

var (
	// ErrNotImage is returned when a fetched body is not a recognised image.
	ErrNotImage = errors.New("not an image")
	// ErrEmptyImage is returned when an image reports a zero dimension.
	ErrEmptyImage = errors.New("image has no dimensions")
)

// imageSize reports the pixel size of data. Raster formats go through the
// registered image decoders; ICO and SVG are handled by hand.
func imageSize(data []byte) (int, int, error) {
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return cfg.Width, cfg.Height, nil
	}
	if w, h, ok := icoSize(data); ok {
		return w, h, nil
	}
	if w, h, ok := svgSize(data); ok {
		return w, h, nil
	}
	return 0, 0, ErrNotImage
}

// icoSize reads the first directory entry of an ICO or CUR file.
func icoSize(data []byte) (int, int, bool) {
	if len(data) < 6+16 {
		return 0, 0, false
	}
	if binary.LittleEndian.Uint16(data[0:2]) != 0 {
		return 0, 0, false
	}
	kind := binary.LittleEndian.Uint16(data[2:4])
	if kind != 1 && kind != 2 {
		return 0, 0, false
	}
	if binary.LittleEndian.Uint16(data[4:6]) == 0 {
		return 0, 0, false
	}
	// A stored size of 0 means 256 pixels.
	w, h := int(data[6]), int(data[7])
	if w == 0 {
		w = 256
	}
	if h == 0 {
		h = 256
	}
	return w, h, true
}

// svgSize checks that the first element is <svg>. Missing or relative
// width and height fall back to the viewBox, then to a nominal 16px.
func svgSize(data []byte) (int, int, bool) {
	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return 0, 0, false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "svg" {
				return 0, 0, false
			}
			return svgDimensions(tok.Attr)
		}
	}
}

func svgDimensions(attrs []html.Attribute) (int, int, bool) {
	width, height := -1, -1
	var viewBox string
	for _, a := range attrs {
		switch strings.ToLower(a.Key) {
		case "width":
			width = svgLength(a.Val)
		case "height":
			height = svgLength(a.Val)
		case "viewbox":
			viewBox = a.Val
		}
	}

	if width < 0 || height < 0 {
		vw, vh := 16, 16
		if fields := strings.Fields(strings.ReplaceAll(viewBox, ",", " ")); len(fields) == 4 {
			if f, err := strconv.ParseFloat(fields[2], 64); err == nil {
				vw = int(f)
			}
			if f, err := strconv.ParseFloat(fields[3], 64); err == nil {
				vh = int(f)
			}
		}
		if width < 0 {
			width = vw
		}
		if height < 0 {
			height = vh
		}
	}
	return width, height, true
}

// svgLength parses an absolute length like "32" or "32px"; anything else
// returns -1 so the caller can fall back.
func svgLength(v string) int {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return -1
	}
	return int(f)
}
