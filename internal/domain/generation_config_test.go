package domain

import (
	"errors"
	"testing"
)

func TestDefaultGenerationConfig(t *testing.T) {
	config := DefaultGenerationConfig()

	if !config.HasPlatform(PlatformInstagram) || !config.HasPlatform(PlatformPinterest) {
		t.Error("初期状態では Instagram と Pinterest が選択されている必要があります")
	}
	if len(config.Platforms) != 2 {
		t.Errorf("期待される選択数: 2, 実際: %d", len(config.Platforms))
	}
	if config.Tone != ToneArtistic {
		t.Errorf("期待されるトーン: %v, 実際: %v", ToneArtistic, config.Tone)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("初期状態は有効である必要があります: %v", err)
	}
}

func TestGenerationConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		config   GenerationConfig
		expected error
	}{
		{"空のプラットフォーム", GenerationConfig{Tone: ToneArtistic}, ErrNoPlatforms},
		{"未定義のプラットフォーム", GenerationConfig{Platforms: []Platform{Platform(42)}, Tone: ToneArtistic}, ErrInvalidPlatform},
		{"未定義のトーン", GenerationConfig{Platforms: []Platform{PlatformTikTok}, Tone: Tone(-1)}, ErrInvalidTone},
		{"有効", GenerationConfig{Platforms: []Platform{PlatformTikTok}, Tone: ToneStoryteller}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expected == nil {
				if err != nil {
					t.Errorf("予期しないエラー: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("期待されるエラー: %v, 実際: %v", tt.expected, err)
			}
		})
	}
}

func TestGenerationConfig_WithPlatformToggled(t *testing.T) {
	config := DefaultGenerationConfig()

	added := config.WithPlatformToggled(PlatformFacebook)
	if len(added.Platforms) != 3 || added.Platforms[1] != PlatformFacebook {
		t.Errorf("Facebook が表示順の位置に追加される必要があります: %v", added.Platforms)
	}
	if config.HasPlatform(PlatformFacebook) {
		t.Error("元の選択内容が変更されてはいけません")
	}

	removed := added.WithPlatformToggled(PlatformInstagram).WithPlatformToggled(PlatformPinterest).WithPlatformToggled(PlatformFacebook)
	if len(removed.Platforms) != 0 {
		t.Errorf("すべて外すと空になる必要があります: %v", removed.Platforms)
	}
	if !errors.Is(removed.Validate(), ErrNoPlatforms) {
		t.Error("空の選択は無効である必要があります")
	}
}

func TestGenerationConfig_PlatformLabels(t *testing.T) {
	config := GenerationConfig{Platforms: []Platform{PlatformX, PlatformTikTok}}
	labels := config.PlatformLabels()

	if len(labels) != 2 || labels[0] != "Twitter/X" || labels[1] != "TikTok" {
		t.Errorf("ラベルが正しくありません: %v", labels)
	}
}
