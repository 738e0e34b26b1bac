package surface

import (
	"bytes"
	"fmt"
	"image/png"
)

// ExportError reports that the surface could not be encoded.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export surface: %v", e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Export encodes the pixels currently on the surface as PNG.
func (e *Engine) Export() ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, e.img); err != nil {
		return nil, &ExportError{Err: err}
	}
	return buf.Bytes(), nil
}
