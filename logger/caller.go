package logger

import (
	"runtime"
	"strings"
)

// callerName derives a dot-separated channel name from the call site,
// e.g. "mypkg.handleRequest". skip counts frames above this function.
// Failure to identify the caller yields an empty name, never an error.
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	name := fn.Name() // "github.com/acme/app/web.(*Server).handle"
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")
	return name
}
