// Package wavcodec decodes client-supplied RIFF/WAVE payloads into raw PCM
// samples plus format metadata.
//
// Payloads arrive as base64 strings over the HTTP API. Decoding is a pure
// transformation in two steps:
//
//   - [DecodeBase64] turns the base64 string into raw container bytes.
//   - [Decode] validates the container tags at their fixed offsets and parses
//     the sub-chunks into a [Payload].
//
// All malformed input (bad base64, a truncated header, wrong container tags,
// or unparseable sub-chunks) fails with an error matching [ErrInvalidAudio].
package wavcodec

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/go-audio/wav"
)

// ErrInvalidAudio is returned when a payload is not a decodable RIFF/WAVE
// container. Match with [errors.Is].
var ErrInvalidAudio = errors.New("invalid audio data")

// headerSize is the byte length of a canonical RIFF/WAVE header. Anything
// shorter cannot carry the container tags, let alone samples.
const headerSize = 44

// Payload is decoded audio ready for a recognition request: contiguous
// little-endian PCM samples with the container bytes stripped.
//
// A Payload is constructed per request and discarded after the recognition
// call; it is never shared or cached.
type Payload struct {
	// PCM holds the interleaved samples, little-endian, SampleWidth bytes each.
	PCM []byte

	// SampleRate is the container's declared sample rate in Hz. It is passed
	// through as-is; callers that declare a different rate to the recognition
	// service do so knowingly.
	SampleRate int

	// SampleWidth is the number of bytes per sample (bit depth / 8).
	SampleWidth int

	// Channels is the number of interleaved channels.
	Channels int
}

// Duration returns the playback length of the payload. Returns 0 when the
// format metadata is incomplete.
func (p Payload) Duration() time.Duration {
	if p.SampleRate <= 0 || p.SampleWidth <= 0 || p.Channels <= 0 {
		return 0
	}
	frames := len(p.PCM) / (p.SampleWidth * p.Channels)
	return time.Duration(frames) * time.Second / time.Duration(p.SampleRate)
}

// DecodeBase64 decodes a base64-encoded RIFF/WAVE payload. It is the
// entry point for audio arriving over the HTTP API.
func DecodeBase64(s string) (Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Payload{}, fmt.Errorf("wavcodec: base64 decode: %v: %w", err, ErrInvalidAudio)
	}
	return Decode(raw)
}

// Decode validates b as a RIFF/WAVE container and extracts its PCM samples
// and format metadata.
//
// The container tags are checked first at their fixed offsets (bytes 0-3
// must be "RIFF", bytes 8-11 must be "WAVE") so that obviously foreign
// payloads are rejected before any sub-chunk parsing happens.
func Decode(b []byte) (Payload, error) {
	if len(b) < headerSize {
		return Payload{}, fmt.Errorf("wavcodec: %d bytes is shorter than a wave header: %w", len(b), ErrInvalidAudio)
	}
	if string(b[0:4]) != "RIFF" {
		return Payload{}, fmt.Errorf("wavcodec: missing RIFF tag: %w", ErrInvalidAudio)
	}
	if string(b[8:12]) != "WAVE" {
		return Payload{}, fmt.Errorf("wavcodec: missing WAVE tag: %w", ErrInvalidAudio)
	}

	dec := wav.NewDecoder(bytes.NewReader(b))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Payload{}, fmt.Errorf("wavcodec: parse chunks: %v: %w", err, ErrInvalidAudio)
	}
	if buf == nil || buf.Format == nil {
		return Payload{}, fmt.Errorf("wavcodec: no format chunk: %w", ErrInvalidAudio)
	}

	width := int(dec.BitDepth) / 8
	if width < 1 || width > 4 {
		return Payload{}, fmt.Errorf("wavcodec: unsupported bit depth %d: %w", dec.BitDepth, ErrInvalidAudio)
	}

	pcm, err := samplesToBytes(buf.Data, width)
	if err != nil {
		return Payload{}, fmt.Errorf("wavcodec: %v: %w", err, ErrInvalidAudio)
	}

	return Payload{
		PCM:         pcm,
		SampleRate:  buf.Format.SampleRate,
		SampleWidth: width,
		Channels:    buf.Format.NumChannels,
	}, nil
}

// samplesToBytes packs decoded samples back into little-endian PCM at the
// container's source width, reproducing the byte stream the data chunk held.
func samplesToBytes(data []int, width int) ([]byte, error) {
	out := make([]byte, len(data)*width)
	for i, s := range data {
		switch width {
		case 1:
			out[i] = byte(s)
		case 2:
			binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
		case 3:
			u := uint32(int32(s))
			out[i*3] = byte(u)
			out[i*3+1] = byte(u >> 8)
			out[i*3+2] = byte(u >> 16)
		case 4:
			binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(s)))
		default:
			return nil, fmt.Errorf("unsupported sample width %d", width)
		}
	}
	return out, nil
}
