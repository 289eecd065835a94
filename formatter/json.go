package formatter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/driftlog/driftlog/core"
)

// JSONFormatter renders one JSON document per record: message, name,
// datetime, elapsed, level, exception, extra, and whatever optional
// caller/process fields are present.
type JSONFormatter struct {
	indent   string
	sortKeys bool
}

// JSONConfig configures a JSONFormatter.
type JSONConfig struct {
	// Indent enables pretty-printing with the given indent string;
	// empty produces one-line documents.
	Indent string
	// SortKeys is accepted for API symmetry; encoding/json already
	// emits map keys in sorted order.
	SortKeys bool
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(cfg JSONConfig) *JSONFormatter {
	return &JSONFormatter{indent: cfg.Indent, sortKeys: cfg.SortKeys}
}

func (f *JSONFormatter) Format(r *core.Record) ([]byte, error) {
	doc := map[string]any{
		"message":  r.RenderMessage(),
		"name":     r.Name,
		"datetime": r.Time.Format(time.RFC3339Nano),
		"level": map[string]any{
			"name": r.Level.Name,
			"no":   r.Level.No,
		},
		"elapsed": map[string]any{
			"repr":    r.Elapsed.String(),
			"seconds": r.Elapsed.Seconds(),
		},
		"extra": sanitizeMap(r.Extra),
	}

	if r.Exception != nil {
		doc["exception"] = map[string]any{
			"type":  fmt.Sprintf("%T", r.Exception.Value),
			"value": fmt.Sprint(r.Exception.Value),
			"stack": len(r.Exception.Stack) > 0,
		}
	}
	if r.Function != "" {
		doc["function"] = r.Function
	}
	if r.File != "" {
		doc["file_name"] = r.File
	}
	if r.Path != "" {
		doc["file_path"] = r.Path
	}
	if r.Module != "" {
		doc["module"] = r.Module
	}
	if r.Line != 0 {
		doc["line"] = r.Line
	}
	if r.ProcessID != 0 {
		doc["process_id"] = r.ProcessID
	}
	if r.ProcessName != "" {
		doc["process_name"] = r.ProcessName
	}

	if f.indent != "" {
		return json.MarshalIndent(doc, "", f.indent)
	}
	return json.Marshal(doc)
}

// sanitizeMap resolves lazy values and stringifies anything
// encoding/json cannot marshal, so a single odd value never poisons
// the whole document.
func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = sanitizeValue(core.ResolveValue(v))
	}
	return out
}

func sanitizeValue(v any) any {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, time.Time, time.Duration:
		return v
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}
