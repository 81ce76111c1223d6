// Package lipsync derives Rhubarb-style mouth cue tracks for synthesized
// speech.
package lipsync

import (
	"math"
	"strings"

	"github.com/satriahrh/arunika/avatar/domain/entities"
)

// digraphs are checked before single letters
var digraphShapes = map[string]entities.MouthShape{
	"th": entities.ShapeB,
	"ch": entities.ShapeB,
	"sh": entities.ShapeB,
	"ph": entities.ShapeG,
	"oo": entities.ShapeF,
	"ee": entities.ShapeB,
	"ou": entities.ShapeF,
	"ll": entities.ShapeH,
}

var letterShapes = map[rune]entities.MouthShape{
	// closed lips
	'p': entities.ShapeA, 'b': entities.ShapeA, 'm': entities.ShapeA,
	// clenched teeth
	'c': entities.ShapeB, 'd': entities.ShapeB, 'g': entities.ShapeB,
	'j': entities.ShapeB, 'k': entities.ShapeB, 'n': entities.ShapeB,
	'q': entities.ShapeB, 's': entities.ShapeB, 't': entities.ShapeB,
	'x': entities.ShapeB, 'y': entities.ShapeB, 'z': entities.ShapeB,
	'i': entities.ShapeB,
	// open
	'e': entities.ShapeC,
	// wide open
	'a': entities.ShapeD, 'h': entities.ShapeD,
	// slightly rounded
	'o': entities.ShapeE, 'r': entities.ShapeE,
	// puckered
	'u': entities.ShapeF, 'w': entities.ShapeF,
	// teeth on lip
	'f': entities.ShapeG, 'v': entities.ShapeG,
	// tongue raised
	'l': entities.ShapeH,
}

// shapeAt returns the shape for the character at i and how many characters
// it covers. Anything unknown (spaces, punctuation, digits) is silence.
func shapeAt(chars []string, i int) (entities.MouthShape, int) {
	cur := strings.ToLower(chars[i])
	if i+1 < len(chars) {
		if shape, ok := digraphShapes[cur+strings.ToLower(chars[i+1])]; ok {
			return shape, 2
		}
	}

	r := []rune(cur)
	if len(r) != 1 {
		return entities.ShapeX, 1
	}
	if shape, ok := letterShapes[r[0]]; ok {
		return shape, 1
	}
	return entities.ShapeX, 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// cueBuilder appends cues keeping them ordered, non-overlapping and merged
type cueBuilder struct {
	cues []entities.MouthCue
}

func (b *cueBuilder) add(start, end float64, shape entities.MouthShape) {
	start, end = round2(start), round2(end)

	if n := len(b.cues); n > 0 {
		last := &b.cues[n-1]
		if start < last.End {
			start = last.End
		}
		if start > last.End {
			// fill the gap so the track is contiguous
			if last.Value == entities.ShapeX || shape == entities.ShapeX {
				b.extendOrAppend(last.End, start, entities.ShapeX)
			} else {
				b.cues[len(b.cues)-1].End = start
			}
		}
	} else if start > 0 {
		b.cues = append(b.cues, entities.MouthCue{Start: 0, End: start, Value: entities.ShapeX})
	}

	if end <= start {
		return
	}
	b.extendOrAppend(start, end, shape)
}

func (b *cueBuilder) extendOrAppend(start, end float64, shape entities.MouthShape) {
	if n := len(b.cues); n > 0 && b.cues[n-1].Value == shape {
		b.cues[n-1].End = end
		return
	}
	b.cues = append(b.cues, entities.MouthCue{Start: start, End: end, Value: shape})
}

// finish closes the track with silence up to duration
func (b *cueBuilder) finish(duration float64) []entities.MouthCue {
	if n := len(b.cues); n > 0 && b.cues[n-1].End < round2(duration) {
		b.add(b.cues[n-1].End, duration, entities.ShapeX)
	}
	return b.cues
}
