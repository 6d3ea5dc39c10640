package domain

import (
	"strings"
	"testing"
)

func validResult() *AnalysisResult {
	return &AnalysisResult{
		VisualDescription:    "A round wooden box with pastel roses.",
		CraftsmanshipDetails: "Napkin technique with a crackle finish.",
		Posts: []GeneratedPost{
			{Platform: "Instagram", Content: "Roses forever.", Hashtags: []string{"#decoupage"}},
		},
	}
}

func TestAnalysisResult_Validate(t *testing.T) {
	if err := validResult().Validate(); err != nil {
		t.Errorf("有効な結果でエラーが発生しました: %v", err)
	}

	empty := validResult()
	empty.Posts = []GeneratedPost{}
	if err := empty.Validate(); err != nil {
		t.Errorf("投稿が0件でも有効である必要があります: %v", err)
	}

	blank := validResult()
	blank.VisualDescription = ""
	blank.CraftsmanshipDetails = ""
	blank.Posts[0].Platform = ""
	blank.Posts[0].Content = ""
	if err := blank.Validate(); err != nil {
		t.Errorf("空文字列のフィールドは有効である必要があります: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *AnalysisResult)
		field  string
	}{
		{"posts なし", func(r *AnalysisResult) { r.Posts = nil }, "posts"},
		{"hashtags なし", func(r *AnalysisResult) { r.Posts[0].Hashtags = nil }, "hashtags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validResult()
			tt.mutate(result)
			err := result.Validate()
			if err == nil {
				t.Fatal("エラーが返される必要があります")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("エラーメッセージに %s が含まれていません: %v", tt.field, err)
			}
		})
	}

	var nilResult *AnalysisResult
	if nilResult.Validate() == nil {
		t.Error("nil の結果は無効である必要があります")
	}
}

func TestAnalysisResult_HashtagWarnings(t *testing.T) {
	result := validResult()
	warnings := result.HashtagWarnings()
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "Instagram") {
		t.Errorf("ハッシュタグ1個の投稿は警告される必要があります: %v", warnings)
	}

	tags := make([]string, 12)
	for i := range tags {
		tags[i] = "#tag"
	}
	result.Posts[0].Hashtags = tags
	if len(result.HashtagWarnings()) != 0 {
		t.Error("推奨範囲内のハッシュタグ数では警告されてはいけません")
	}
}

func TestGeneratedPost_FormattedHashtags(t *testing.T) {
	post := GeneratedPost{Hashtags: []string{"decoupage", "#handmade", " ##vintage style ", "", "#"}}
	tags := post.FormattedHashtags()

	expected := []string{"#decoupage", "#handmade", "#vintagestyle"}
	if len(tags) != len(expected) {
		t.Fatalf("期待される件数: %d, 実際: %d (%v)", len(expected), len(tags), tags)
	}
	for i := range expected {
		if tags[i] != expected[i] {
			t.Errorf("期待される値: %s, 実際: %s", expected[i], tags[i])
		}
	}
}

func TestGeneratedPost_CopyText(t *testing.T) {
	post := GeneratedPost{Content: "New tray!", Hashtags: []string{"decoupage", "craft"}}
	if got := post.CopyText(); got != "New tray!\n\n#decoupage #craft" {
		t.Errorf("コピー用テキストが正しくありません: %q", got)
	}

	post.Hashtags = nil
	if got := post.CopyText(); got != "New tray!" {
		t.Errorf("ハッシュタグがない場合は本文のみになる必要があります: %q", got)
	}
}

func TestGeneratedPost_MatchedPlatform(t *testing.T) {
	if p, ok := (GeneratedPost{Platform: "Twitter/X"}).MatchedPlatform(); !ok || p != PlatformX {
		t.Errorf("Twitter/X は PlatformX に対応付けられる必要があります: %v %v", p, ok)
	}
	if _, ok := (GeneratedPost{Platform: "Threads"}).MatchedPlatform(); ok {
		t.Error("未知のプラットフォーム名は対応付けられてはいけません")
	}
}
