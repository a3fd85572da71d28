package domain

import "strings"

// Capability names a kind of work a provider may be routed to.
type Capability string

const (
	CapabilityTextGenerate       Capability = "text.generate"
	CapabilityEmbeddings         Capability = "embeddings"
	CapabilityModerations        Capability = "moderations"
	CapabilityImageGenerate      Capability = "image.generate"
	CapabilityImageEdit          Capability = "image.edit"
	CapabilityAudioSpeech        Capability = "audio.speech"
	CapabilityAudioTranscription Capability = "audio.transcription"
	CapabilityAudioTranslations  Capability = "audio.translations"
	CapabilityOCR                Capability = "ocr"
	CapabilityMusicGenerate      Capability = "music.generate"
	CapabilityVideoGenerate      Capability = "video.generate"
)

var capabilityAliases = map[string]Capability{
	"text.embed":         CapabilityEmbeddings,
	"moderation":         CapabilityModerations,
	"moderations.create": CapabilityModerations,
	"image.generations":  CapabilityImageGenerate,
	"images.generate":    CapabilityImageGenerate,
	"images.generations": CapabilityImageGenerate,
	"images.edits":       CapabilityImageEdit,
	"image.edits":        CapabilityImageEdit,
	"audio.generate":     CapabilityAudioSpeech,
	"audio.transcribe":   CapabilityAudioTranscription,
	"audio.translation":  CapabilityAudioTranslations,
	"audio.translate":    CapabilityAudioTranslations,
	"video.generation":   CapabilityVideoGenerate,
	"video.generations":  CapabilityVideoGenerate,
}

// NormalizeCapability resolves endpoint-style aliases such as
// "images.generations" to their canonical capability.
func NormalizeCapability(s string) Capability {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := capabilityAliases[s]; ok {
		return c
	}
	return Capability(s)
}

// AdapterBackedCapabilities lists the non-text capabilities whose
// availability is decided by capability resolution.
func AdapterBackedCapabilities() []Capability {
	return []Capability{
		CapabilityImageGenerate,
		CapabilityImageEdit,
		CapabilityAudioSpeech,
		CapabilityAudioTranscription,
		CapabilityAudioTranslations,
		CapabilityOCR,
		CapabilityMusicGenerate,
		CapabilityVideoGenerate,
	}
}

// IsAdapterBacked reports whether c is one of AdapterBackedCapabilities.
func (c Capability) IsAdapterBacked() bool {
	for _, known := range AdapterBackedCapabilities() {
		if c == known {
			return true
		}
	}
	return false
}
