// Package assets embeds the pre-recorded default responses: one wav clip and
// one Rhubarb lip-sync json per canned utterance.
package assets

import "embed"

//go:embed audios/*.wav audios/*.json
var Audios embed.FS
