package version

import (
	"runtime"
	"time"
)

// SchemaVersion is the version written into export documents.
// Its major component gates imports.
const SchemaVersion = "1.0.0"

var (
	Version   = "1.0.0"                         // set with -ldflags at release time
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()
)
