package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPlatform_String(t *testing.T) {
	expected := map[Platform]string{
		PlatformInstagram: "Instagram",
		PlatformFacebook:  "Facebook",
		PlatformPinterest: "Pinterest",
		PlatformX:         "Twitter/X",
		PlatformTikTok:    "TikTok",
	}

	for platform, label := range expected {
		if platform.String() != label {
			t.Errorf("期待されるラベル: %s, 実際: %s", label, platform.String())
		}
	}

	if len(AllPlatforms()) != 5 {
		t.Errorf("プラットフォームは5種類である必要があります。実際: %d", len(AllPlatforms()))
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input    string
		expected Platform
	}{
		{"Instagram", PlatformInstagram},
		{"instagram", PlatformInstagram},
		{" IG ", PlatformInstagram},
		{"facebook", PlatformFacebook},
		{"Pinterest", PlatformPinterest},
		{"Twitter/X", PlatformX},
		{"x", PlatformX},
		{"twitter", PlatformX},
		{"TikTok", PlatformTikTok},
	}

	for _, tt := range tests {
		got, err := ParsePlatform(tt.input)
		if err != nil {
			t.Errorf("%q の変換でエラーが発生しました: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%q: 期待される値: %v, 実際: %v", tt.input, tt.expected, got)
		}
	}

	for _, invalid := range []string{"", "myspace", "linkedin"} {
		if _, err := ParsePlatform(invalid); !errors.Is(err, ErrInvalidPlatform) {
			t.Errorf("%q は ErrInvalidPlatform になる必要があります: %v", invalid, err)
		}
	}
}

func TestParsePlatforms_DeduplicatesAndOrders(t *testing.T) {
	got, err := ParsePlatforms("pinterest, instagram", "Pinterest", "")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	if len(got) != 2 || got[0] != PlatformInstagram || got[1] != PlatformPinterest {
		t.Errorf("表示順・重複なしで返る必要があります: %v", got)
	}

	if _, err := ParsePlatforms("instagram,unknown"); !errors.Is(err, ErrInvalidPlatform) {
		t.Errorf("未知のプラットフォームはエラーになる必要があります: %v", err)
	}
}

func TestParseTone(t *testing.T) {
	tests := []struct {
		input    string
		expected Tone
	}{
		{"Artistic & Dreamy", ToneArtistic},
		{"artistic", ToneArtistic},
		{"professional", ToneProfessional},
		{"Enthusiastic & Fun", ToneEnthusiastic},
		{"chic", ToneMinimalist},
		{"storyteller", ToneStoryteller},
	}

	for _, tt := range tests {
		got, err := ParseTone(tt.input)
		if err != nil {
			t.Errorf("%q の変換でエラーが発生しました: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%q: 期待される値: %v, 実際: %v", tt.input, tt.expected, got)
		}
	}

	if _, err := ParseTone("grumpy"); !errors.Is(err, ErrInvalidTone) {
		t.Errorf("未知のトーンは ErrInvalidTone になる必要があります: %v", err)
	}
}

func TestTone_IsValid(t *testing.T) {
	for _, tone := range AllTones() {
		if !tone.IsValid() {
			t.Errorf("%v は有効である必要があります", tone)
		}
	}
	if Tone(99).IsValid() || Tone(-1).IsValid() {
		t.Error("範囲外のトーンは無効である必要があります")
	}
	if Platform(5).IsValid() {
		t.Error("範囲外のプラットフォームは無効である必要があります")
	}
}

func TestGenerationConfig_JSON(t *testing.T) {
	config := GenerationConfig{
		Platforms: []Platform{PlatformInstagram, PlatformX},
		Tone:      ToneMinimalist,
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(config); err != nil {
		t.Fatalf("JSONエンコードに失敗: %v", err)
	}

	expected := `{"platforms":["Instagram","Twitter/X"],"tone":"Minimalist & Chic"}`
	if got := strings.TrimSpace(buf.String()); got != expected {
		t.Errorf("期待されるJSON: %s, 実際: %s", expected, got)
	}

	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("JSONエンコードに失敗: %v", err)
	}
	var roundTrip GenerationConfig
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("JSONデコードに失敗: %v", err)
	}
	if len(roundTrip.Platforms) != 2 || roundTrip.Platforms[1] != PlatformX || roundTrip.Tone != ToneMinimalist {
		t.Errorf("エンコード結果を復元できません: %+v", roundTrip)
	}

	var decoded GenerationConfig
	if err := json.Unmarshal([]byte(`{"platforms":["tiktok","Facebook"],"tone":"fun"}`), &decoded); err != nil {
		t.Fatalf("JSONデコードに失敗: %v", err)
	}
	if len(decoded.Platforms) != 2 || decoded.Platforms[0] != PlatformTikTok || decoded.Tone != ToneEnthusiastic {
		t.Errorf("デコード結果が正しくありません: %+v", decoded)
	}
}
