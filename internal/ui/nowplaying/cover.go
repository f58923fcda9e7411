package nowplaying

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"

	"github.com/llehouerou/reyvr/internal/playlist"
)

// chunkSize is the largest payload per kitty graphics escape sequence.
const chunkSize = 4096

// kittyImage encodes th as a kitty graphics protocol sequence displayed
// over cols×rows cells. It returns "" when th is nil.
func kittyImage(th *playlist.Thumbnail, cols, rows int) string {
	if th == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, th.Image()); err != nil {
		return ""
	}
	data := base64.StdEncoding.EncodeToString(buf.Bytes())

	var sb strings.Builder
	for i := 0; i < len(data); i += chunkSize {
		end := min(i+chunkSize, len(data))
		more := 0
		if end < len(data) {
			more = 1
		}
		if i == 0 {
			// a=T transmit and display, f=100 PNG
			fmt.Fprintf(&sb, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, data[i:end])
		} else {
			fmt.Fprintf(&sb, "\x1b_Gm=%d;%s\x1b\\", more, data[i:end])
		}
	}
	return sb.String()
}
