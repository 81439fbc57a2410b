// Package appfs embeds the static assets shipped with the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql templates modules.yaml
var FS embed.FS
