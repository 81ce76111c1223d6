package entities

// MouthShape is a Rhubarb Lip Sync mouth shape
type MouthShape string

const (
	ShapeA MouthShape = "A" // closed lips: P, B, M
	ShapeB MouthShape = "B" // slightly open, clenched teeth: most consonants
	ShapeC MouthShape = "C" // open: EH, AE
	ShapeD MouthShape = "D" // wide open: AA
	ShapeE MouthShape = "E" // slightly rounded: AO, ER
	ShapeF MouthShape = "F" // puckered: UW, OW, W
	ShapeG MouthShape = "G" // upper teeth on lower lip: F, V
	ShapeH MouthShape = "H" // tongue raised: long L
	ShapeX MouthShape = "X" // idle
)

// MouthCue is one mouth shape held over a time range, in seconds
type MouthCue struct {
	Start float64    `json:"start"`
	End   float64    `json:"end"`
	Value MouthShape `json:"value"`
}

// LipSyncMetadata mirrors the metadata block written by Rhubarb
type LipSyncMetadata struct {
	SoundFile string  `json:"soundFile"`
	Duration  float64 `json:"duration"`
}

// LipSync is a viseme timing track aligned to one audio clip
type LipSync struct {
	Metadata  LipSyncMetadata `json:"metadata"`
	MouthCues []MouthCue      `json:"mouthCues"`
}

// Empty reports whether the track has no cues
func (l LipSync) Empty() bool {
	return len(l.MouthCues) == 0
}
