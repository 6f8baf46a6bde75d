package logging

import (
	"os"
)

// debugEnabled controls whether or not Debug-level output is forced on
// regardless of a logger's configured level. It is set automatically based
// on the SUBSTRATE_DEBUG environment variable.
var debugEnabled bool

func init() {
	debugEnabled = os.Getenv("SUBSTRATE_DEBUG") == "1"
}
