package speech

import "strings"

// DefaultLang is the language robot replies are spoken in.
const DefaultLang = "pt-BR"

// DefaultPreferredVoices lists voices to try first, in priority order.
var DefaultPreferredVoices = []string{
	"Microsoft Daniel - Portuguese (Brazil)",
	"Microsoft Maria - Portuguese (Brazil)",
	"Google português do Brasil",
	"Microsoft Helena - Portuguese (Brazil)",
	"Microsoft Zira - English (United States)",
}

// SelectVoice picks the voice for lang.
//
// The first preferred name that an available voice carries wins. Otherwise any
// voice whose language tag contains the primary subtag of lang is used, then
// the first voice. It returns nil when voices is empty.
func SelectVoice(voices []Voice, preferred []string, lang string) *Voice {
	if len(voices) == 0 {
		return nil
	}
	for _, name := range preferred {
		for i := range voices {
			if voices[i].Name == name {
				return &voices[i]
			}
		}
	}
	if tag := primaryTag(lang); tag != "" {
		for i := range voices {
			if strings.Contains(strings.ToLower(voices[i].Lang), tag) {
				return &voices[i]
			}
		}
	}
	return &voices[0]
}

// primaryTag returns "pt" for "pt-BR" or "pt_BR".
func primaryTag(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang
}
