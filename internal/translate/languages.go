package translate

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Language is one of the languages offered as a command choice. Discord caps
// choices at 25, which is why the list stops there.
type Language struct {
	Name   string
	Code   string // ISO 639-1, upper case
	Lingua lingua.Language

	deeplTarget string
	azure       string
}

// DeepLSource is the code DeepL accepts as source_lang.
func (l Language) DeepLSource() string { return l.Code }

// DeepLTarget is the code DeepL accepts as target_lang.
func (l Language) DeepLTarget() string {
	if l.deeplTarget != "" {
		return l.deeplTarget
	}
	return l.Code
}

// Azure is the Translator v3 language tag.
func (l Language) Azure() string {
	if l.azure != "" {
		return l.azure
	}
	return strings.ToLower(l.Code)
}

var English = Language{Name: "English", Code: "EN", Lingua: lingua.English, deeplTarget: "EN-US"}

var Languages = []Language{
	{Name: "Bulgarian", Code: "BG", Lingua: lingua.Bulgarian},
	{Name: "Czech", Code: "CS", Lingua: lingua.Czech},
	{Name: "Danish", Code: "DA", Lingua: lingua.Danish},
	{Name: "German", Code: "DE", Lingua: lingua.German},
	{Name: "Greek", Code: "EL", Lingua: lingua.Greek},
	English,
	{Name: "Spanish", Code: "ES", Lingua: lingua.Spanish},
	{Name: "Estonian", Code: "ET", Lingua: lingua.Estonian},
	{Name: "Finnish", Code: "FI", Lingua: lingua.Finnish},
	{Name: "French", Code: "FR", Lingua: lingua.French},
	{Name: "Hungarian", Code: "HU", Lingua: lingua.Hungarian},
	{Name: "Indonesian", Code: "ID", Lingua: lingua.Indonesian},
	{Name: "Italian", Code: "IT", Lingua: lingua.Italian},
	{Name: "Japanese", Code: "JA", Lingua: lingua.Japanese},
	{Name: "Lithuanian", Code: "LT", Lingua: lingua.Lithuanian},
	{Name: "Latvian", Code: "LV", Lingua: lingua.Latvian},
	{Name: "Dutch", Code: "NL", Lingua: lingua.Dutch},
	{Name: "Polish", Code: "PL", Lingua: lingua.Polish},
	{Name: "Portuguese", Code: "PT", Lingua: lingua.Portuguese, deeplTarget: "PT-PT"},
	{Name: "Romanian", Code: "RO", Lingua: lingua.Romanian},
	{Name: "Russian", Code: "RU", Lingua: lingua.Russian},
	{Name: "Slovak", Code: "SK", Lingua: lingua.Slovak},
	{Name: "Slovene", Code: "SL", Lingua: lingua.Slovene},
	{Name: "Swedish", Code: "SV", Lingua: lingua.Swedish},
	{Name: "Chinese", Code: "ZH", Lingua: lingua.Chinese, azure: "zh-Hans"},
}

// Lookup finds a language by display name or ISO code, ignoring case.
// Provider codes with a region suffix ("EN-GB", "zh-Hans") match their base language.
func Lookup(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if base, _, found := strings.Cut(s, "-"); found {
		s = base
	}
	for _, l := range Languages {
		if strings.EqualFold(l.Name, s) || strings.EqualFold(l.Code, s) {
			return l, true
		}
	}
	return Language{}, false
}

func fromLingua(ll lingua.Language) (Language, bool) {
	for _, l := range Languages {
		if l.Lingua == ll {
			return l, true
		}
	}
	return Language{}, false
}

func linguaLanguages() []lingua.Language {
	out := make([]lingua.Language, len(Languages))
	for i, l := range Languages {
		out[i] = l.Lingua
	}
	return out
}
