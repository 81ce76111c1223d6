package audio

import "fmt"

// Format is an output container/codec ffmpeg can produce
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
	FormatOgg  Format = "ogg"
	FormatWAV  Format = "wav"
)

// ParseFormat validates a configured format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatMP3, FormatFLAC, FormatOgg, FormatWAV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported audio format: %s", name)
	}
}

// MIMEType returns the content type of the encoded audio
func (f Format) MIMEType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	case FormatFLAC:
		return "audio/flac"
	case FormatOgg:
		return "audio/ogg"
	case FormatWAV:
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// codecArgs selects the encoder and muxer
func (f Format) codecArgs() []string {
	switch f {
	case FormatFLAC:
		return []string{"-codec:a", "flac", "-f", "flac"}
	case FormatOgg:
		return []string{"-codec:a", "libopus", "-b:a", "48k", "-f", "ogg"}
	case FormatWAV:
		return []string{"-codec:a", "pcm_s16le", "-f", "wav"}
	default:
		return []string{"-codec:a", "libmp3lame", "-q:a", "4", "-f", "mp3"}
	}
}
