package domain

import "fmt"

// GenerationConfig は、投稿先のプラットフォームとトーンの選択内容を表す値オブジェクトです
type GenerationConfig struct {
	Platforms []Platform `json:"platforms"`
	Tone      Tone       `json:"tone"`
}

// DefaultGenerationConfig は、初期状態の選択内容（Instagram, Pinterest / Artistic & Dreamy）を返します
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Platforms: []Platform{PlatformInstagram, PlatformPinterest},
		Tone:      DefaultTone,
	}
}

// Validate は、選択内容が生成リクエストとして有効かどうかを検証します
func (c GenerationConfig) Validate() error {
	if len(c.Platforms) == 0 {
		return ErrNoPlatforms
	}
	for _, p := range c.Platforms {
		if !p.IsValid() {
			return fmt.Errorf("%w: %d", ErrInvalidPlatform, int(p))
		}
	}
	if !c.Tone.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidTone, int(c.Tone))
	}
	return nil
}

// HasPlatform は、指定したプラットフォームが選択されているかどうかを判定します
func (c GenerationConfig) HasPlatform(platform Platform) bool {
	for _, p := range c.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// WithPlatformToggled は、指定したプラットフォームの選択を反転したコピーを返します
func (c GenerationConfig) WithPlatformToggled(platform Platform) GenerationConfig {
	toggled := !c.HasPlatform(platform)

	var next []Platform
	for _, p := range AllPlatforms() {
		selected := c.HasPlatform(p)
		if p == platform {
			selected = toggled
		}
		if selected {
			next = append(next, p)
		}
	}

	return GenerationConfig{Platforms: next, Tone: c.Tone}
}

// WithTone は、トーンを差し替えたコピーを返します
func (c GenerationConfig) WithTone(tone Tone) GenerationConfig {
	return GenerationConfig{Platforms: c.clonePlatforms(), Tone: tone}
}

// PlatformLabels は、選択されているプラットフォームの表示ラベルを返します
func (c GenerationConfig) PlatformLabels() []string {
	labels := make([]string, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		labels = append(labels, p.String())
	}
	return labels
}

func (c GenerationConfig) clonePlatforms() []Platform {
	if c.Platforms == nil {
		return nil
	}
	cloned := make([]Platform, len(c.Platforms))
	copy(cloned, c.Platforms)
	return cloned
}
