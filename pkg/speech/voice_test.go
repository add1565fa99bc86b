package speech

import "testing"

func TestSelectVoice(t *testing.T) {
	daniel := Voice{Name: "Microsoft Daniel - Portuguese (Brazil)", Lang: "pt-BR"}
	maria := Voice{Name: "Microsoft Maria - Portuguese (Brazil)", Lang: "pt-BR"}
	luciana := Voice{Name: "Luciana", Lang: "pt-BR"}
	joana := Voice{Name: "Joana", Lang: "pt_PT"}
	alex := Voice{Name: "Alex", Lang: "en-US"}

	tests := []struct {
		name   string
		voices []Voice
		lang   string
		want   string
	}{
		{"priority order wins over list order", []Voice{alex, maria, daniel}, "pt-BR", daniel.Name},
		{"locale fallback", []Voice{alex, luciana}, "pt-BR", luciana.Name},
		{"underscore tags match", []Voice{alex, joana}, "pt-BR", joana.Name},
		{"first voice fallback", []Voice{alex}, "pt-BR", alex.Name},
		{"no voices", nil, "pt-BR", ""},
		{"empty lang falls back to first", []Voice{luciana, alex}, "", luciana.Name},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectVoice(tt.voices, DefaultPreferredVoices, tt.lang)
			if tt.want == "" {
				if got != nil {
					t.Errorf("SelectVoice() = %v, want nil", got.Name)
				}
				return
			}
			if got == nil || got.Name != tt.want {
				t.Errorf("SelectVoice() = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestEngineErrorIsInterrupted(t *testing.T) {
	for _, code := range []string{CodeInterrupted, CodeCanceled} {
		if !(&EngineError{Code: code}).IsInterrupted() {
			t.Errorf("%s should be an interruption", code)
		}
	}
	if (&EngineError{Code: CodeFailed}).IsInterrupted() {
		t.Error("synthesis-failed is not an interruption")
	}
}
