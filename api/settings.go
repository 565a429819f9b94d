// File: api/settings.go
// Author: momentics <momentics@gmail.com>
//
// Codec, profile, preset and tuning enumerations consulted by the session
// builder. The mapping to vendor GUIDs is the driver collaborator's job.

package api

// Codec selects the compression standard.
type Codec int

const (
	CodecH264 Codec = iota
	CodecHevc
)

func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "h264"
	case CodecHevc:
		return "hevc"
	default:
		return "unknown"
	}
}

// CodecProfile selects a profile within a codec. ProfileAutoselect lets
// the driver pick.
type CodecProfile int

const (
	ProfileAutoselect CodecProfile = iota
	ProfileH264Baseline
	ProfileH264Main
	ProfileH264High
	ProfileH264High444
	ProfileHevcMain
	ProfileHevcMain10
	ProfileHevcFrext
)

// EncodePreset trades encode speed against quality. P1 is fastest, P7 is
// highest quality.
type EncodePreset int

const (
	PresetP1 EncodePreset = iota + 1
	PresetP2
	PresetP3
	PresetP4
	PresetP5
	PresetP6
	PresetP7
)

// TuningInfo biases the preset toward a usage scenario.
type TuningInfo int

const (
	TuningUndefined TuningInfo = iota
	TuningHighQuality
	TuningLowLatency
	TuningUltraLowLatency
	TuningLossless
)

// BufferFormat describes the pixel layout of input textures.
type BufferFormat int

const (
	FormatNV12 BufferFormat = iota
	FormatYV12
	FormatARGB
	FormatABGR
	FormatYUV444
)
