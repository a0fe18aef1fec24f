package intent

import "testing"

func TestDetectLang(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "en"},
		{"I am looking for a house in Sydney", "en"},
		{"මට කොළඹ නිවසක් අවශ්‍යයි", "si"},
		{"எனக்கு கொழும்பில் ஒரு வீடு வேண்டும்", "ta"},
	}
	for _, c := range cases {
		if got := DetectLang(c.in); got != c.want {
			t.Errorf("DetectLang(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeLang(t *testing.T) {
	for in, want := range map[string]string{"si": "si", "TA-lk": "ta", " en ": "en"} {
		if got, ok := NormalizeLang(in); !ok || got != want {
			t.Errorf("NormalizeLang(%q) = %q,%v", in, got, ok)
		}
	}
	if _, ok := NormalizeLang("fr"); ok {
		t.Errorf("fr should not be supported")
	}
}
