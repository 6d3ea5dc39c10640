package domain

import (
	"fmt"
	"strings"
)

// Platform は投稿先のSNSを表す定数です
type Platform int

const (
	PlatformInstagram Platform = iota
	PlatformFacebook
	PlatformPinterest
	PlatformX
	PlatformTikTok
)

// Tone は投稿文の語り口（トーン）を表す定数です
type Tone int

const (
	ToneArtistic Tone = iota
	ToneProfessional
	ToneEnthusiastic
	ToneMinimalist
	ToneStoryteller
)

// DefaultTone は、初期選択されるトーンです
const DefaultTone = ToneArtistic

// optionData はPlatform, Toneのキーと表示ラベルを保持します
type optionData struct {
	Value   string
	Label   string
	Aliases []string
}

// platforms は各Platformのデータを定義します（表示順）
var platforms = []optionData{
	{"instagram", "Instagram", []string{"ig", "insta"}},
	{"facebook", "Facebook", []string{"fb"}},
	{"pinterest", "Pinterest", nil},
	{"x", "Twitter/X", []string{"twitter"}},
	{"tiktok", "TikTok", nil},
}

// tones は各Toneのデータを定義します
var tones = []optionData{
	{"artistic", "Artistic & Dreamy", []string{"dreamy"}},
	{"professional", "Professional & Clean", []string{"clean"}},
	{"enthusiastic", "Enthusiastic & Fun", []string{"fun"}},
	{"minimalist", "Minimalist & Chic", []string{"chic"}},
	{"storyteller", "Storyteller & Detailed", []string{"detailed"}},
}

// IsValid は、Platformが定義済みの値かどうかを判定します
func (p Platform) IsValid() bool {
	return int(p) >= 0 && int(p) < len(platforms)
}

// Value はPlatformの識別キーを返します
func (p Platform) Value() string {
	if p.IsValid() {
		return platforms[p].Value
	}
	return ""
}

// String はPlatformの表示ラベルを返します。プロンプトにもこのラベルがそのまま入ります
func (p Platform) String() string {
	if p.IsValid() {
		return platforms[p].Label
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

// MarshalText はPlatformを表示ラベルとしてエンコードします
func (p Platform) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlatform, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText はキー・ラベル・別名のいずれかからPlatformを復元します
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatform(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// IsValid は、Toneが定義済みの値かどうかを判定します
func (t Tone) IsValid() bool {
	return int(t) >= 0 && int(t) < len(tones)
}

// Value はToneの識別キーを返します
func (t Tone) Value() string {
	if t.IsValid() {
		return tones[t].Value
	}
	return ""
}

// String はToneの表示ラベルを返します
func (t Tone) String() string {
	if t.IsValid() {
		return tones[t].Label
	}
	return fmt.Sprintf("Tone(%d)", int(t))
}

// MarshalText はToneを表示ラベルとしてエンコードします
func (t Tone) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTone, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText はキー・ラベル・別名のいずれかからToneを復元します
func (t *Tone) UnmarshalText(text []byte) error {
	parsed, err := ParseTone(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParsePlatform は、文字列をPlatformに変換します（大文字小文字は区別しません）
func ParsePlatform(s string) (Platform, error) {
	idx := lookupOption(platforms, s)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
	}
	return Platform(idx), nil
}

// ParsePlatforms は、カンマ区切りや複数指定の文字列をPlatformの一覧に変換します。
// 重複は除去され、結果は表示順に並びます
func ParsePlatforms(values ...string) ([]Platform, error) {
	seen := make(map[Platform]bool)
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			p, err := ParsePlatform(token)
			if err != nil {
				return nil, err
			}
			seen[p] = true
		}
	}

	var result []Platform
	for _, p := range AllPlatforms() {
		if seen[p] {
			result = append(result, p)
		}
	}
	return result, nil
}

// ParseTone は、文字列をToneに変換します（大文字小文字は区別しません）
func ParseTone(s string) (Tone, error) {
	idx := lookupOption(tones, s)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTone, s)
	}
	return Tone(idx), nil
}

func lookupOption(options []optionData, s string) int {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return -1
	}
	for i, opt := range options {
		if key == opt.Value || key == strings.ToLower(opt.Label) {
			return i
		}
		for _, alias := range opt.Aliases {
			if key == alias {
				return i
			}
		}
	}
	return -1
}

// AllPlatforms はすべてのPlatformを表示順で返します
func AllPlatforms() []Platform {
	return []Platform{
		PlatformInstagram,
		PlatformFacebook,
		PlatformPinterest,
		PlatformX,
		PlatformTikTok,
	}
}

// AllTones はすべてのToneを返します
func AllTones() []Tone {
	return []Tone{
		ToneArtistic,
		ToneProfessional,
		ToneEnthusiastic,
		ToneMinimalist,
		ToneStoryteller,
	}
}
