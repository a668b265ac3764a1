package presentation

import "embed"

//go:embed locales/*.toml
var LocaleFiles embed.FS
