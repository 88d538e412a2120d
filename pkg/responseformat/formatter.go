package responseformat

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Formatter encodes command results as JSON or MessagePack
type Formatter struct {
	Indent bool
}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{Indent: true}
}

// Write encodes data to w. JSON is the default format; MessagePack is used
// when format is "msgpack".
func (f *Formatter) Write(w io.Writer, format string, data any) error {
	switch format {
	case "", "json":
		return f.writeJSON(w, data)
	case "msgpack":
		return f.writeMsgPack(w, data)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
