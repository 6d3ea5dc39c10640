package domain

import (
	"errors"
	"fmt"
	"strings"
)

// 推奨されるハッシュタグ数の範囲です。プロンプト上の目安であり、検証には使いません
const (
	RecommendedMinHashtags = 10
	RecommendedMaxHashtags = 15
)

// AnalysisResult は、1回の生成呼び出しで得られる結果全体です
type AnalysisResult struct {
	VisualDescription    string          `json:"visualDescription"`
	CraftsmanshipDetails string          `json:"craftsmanshipDetails"`
	Posts                []GeneratedPost `json:"posts"`
}

// GeneratedPost は、1つのプラットフォーム向けの投稿文とハッシュタグです
type GeneratedPost struct {
	Platform string   `json:"platform"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// Validate は、結果の構造を検証します。
// 空文字列は有効な値として扱い、投稿の件数やハッシュタグの数も検証対象外です
func (r *AnalysisResult) Validate() error {
	if r == nil {
		return errors.New("結果がありません")
	}
	if r.Posts == nil {
		return errors.New("posts がありません")
	}
	for i, post := range r.Posts {
		if err := post.Validate(); err != nil {
			return fmt.Errorf("posts[%d]: %w", i, err)
		}
	}
	return nil
}

// HashtagWarnings は、推奨範囲外のハッシュタグ数になっている投稿を列挙します（ログ用）
func (r *AnalysisResult) HashtagWarnings() []string {
	if r == nil {
		return nil
	}
	var warnings []string
	for _, post := range r.Posts {
		n := len(post.Hashtags)
		if n < RecommendedMinHashtags || n > RecommendedMaxHashtags {
			warnings = append(warnings, fmt.Sprintf("%s: %d個", post.Platform, n))
		}
	}
	return warnings
}

// Validate は、投稿のハッシュタグ一覧が存在するかを検証します
func (p GeneratedPost) Validate() error {
	if p.Hashtags == nil {
		return errors.New("hashtags がありません")
	}
	return nil
}

// MatchedPlatform は、モデルが返したプラットフォーム名を既知のPlatformに対応付けます
func (p GeneratedPost) MatchedPlatform() (Platform, bool) {
	platform, err := ParsePlatform(p.Platform)
	if err != nil {
		return 0, false
	}
	return platform, true
}

// FormattedHashtags は、先頭に # を付けて空要素を除いたハッシュタグを返します
func (p GeneratedPost) FormattedHashtags() []string {
	tags := make([]string, 0, len(p.Hashtags))
	for _, tag := range p.Hashtags {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimLeft(tag, "#")
		if tag == "" {
			continue
		}
		tags = append(tags, "#"+strings.ReplaceAll(tag, " ", ""))
	}
	return tags
}

// CopyText は、本文とハッシュタグを連結したコピー用テキストを返します
func (p GeneratedPost) CopyText() string {
	tags := p.FormattedHashtags()
	if len(tags) == 0 {
		return p.Content
	}
	return p.Content + "\n\n" + strings.Join(tags, " ")
}
