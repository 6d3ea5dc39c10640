package domain

import (
	"bytes"
	"errors"
	"testing"
)

func testImage() ImagePayload {
	return ImagePayload{Data: []byte("jpeg"), MIMEType: "image/jpeg", Filename: "vase.jpg"}
}

func TestStudioState_NoImageIsInert(t *testing.T) {
	state := NewStudioState()

	for _, p := range AllPlatforms() {
		if !state.Config().HasPlatform(p) {
			_ = state.TogglePlatform(p)
		}
	}
	for _, tone := range AllTones() {
		_ = state.SetTone(tone)
		if state.CanGenerate() {
			t.Errorf("画像が未選択の場合は生成できてはいけません (tone=%v)", tone)
		}
	}

	if _, err := state.StartGeneration(); !errors.Is(err, ErrNoImage) {
		t.Errorf("期待されるエラー: %v, 実際: %v", ErrNoImage, err)
	}
	if state.IsGenerating() {
		t.Error("生成が開始されてはいけません")
	}
}

func TestStudioState_NoPlatformsIsInert(t *testing.T) {
	state := NewStudioState()
	if err := state.SelectImage(testImage()); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	_ = state.TogglePlatform(PlatformInstagram)
	_ = state.TogglePlatform(PlatformPinterest)

	if state.CanGenerate() {
		t.Error("プラットフォームが未選択の場合は生成できてはいけません")
	}
	if _, err := state.StartGeneration(); !errors.Is(err, ErrNoPlatforms) {
		t.Errorf("期待されるエラー: %v, 実際: %v", ErrNoPlatforms, err)
	}
}

func TestStudioState_SingleInFlight(t *testing.T) {
	state := NewStudioState()
	_ = state.SelectImage(testImage())

	ticket, err := state.StartGeneration()
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if state.CanGenerate() {
		t.Error("生成中は再度生成できてはいけません")
	}

	// 連打しても2件目は開始されない
	for i := 0; i < 5; i++ {
		if _, err := state.StartGeneration(); !errors.Is(err, ErrGenerationInProgress) {
			t.Errorf("期待されるエラー: %v, 実際: %v", ErrGenerationInProgress, err)
		}
	}

	result := &AnalysisResult{VisualDescription: "v", CraftsmanshipDetails: "c", Posts: []GeneratedPost{}}
	if err := state.ReceiveResult(ticket, result); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if state.IsGenerating() || state.Result() != result {
		t.Error("結果を受け取った後は生成中が解除され、結果が保持される必要があります")
	}
	if !state.CanGenerate() {
		t.Error("結果を受け取った後は再度生成できる必要があります")
	}

	if err := state.ReceiveResult(ticket, result); !errors.Is(err, ErrNoGenerationInFlight) {
		t.Errorf("同じ控えで2回受け取ることはできません: %v", err)
	}
}

func TestStudioState_TicketSnapshot(t *testing.T) {
	state := NewStudioState()
	_ = state.SelectImage(testImage())

	ticket, _ := state.StartGeneration()
	_ = state.TogglePlatform(PlatformTikTok)
	_ = state.SetTone(ToneProfessional)

	if ticket.Config.HasPlatform(PlatformTikTok) || ticket.Config.Tone != ToneArtistic {
		t.Error("控えの選択内容は開始時点のものである必要があります")
	}
	if ticket.Image.Filename != "vase.jpg" {
		t.Errorf("控えに画像が含まれていません: %+v", ticket.Image)
	}
}

func TestStudioState_ErrorDiscardsPreviousResult(t *testing.T) {
	state := NewStudioState()
	_ = state.SelectImage(testImage())

	first, _ := state.StartGeneration()
	_ = state.ReceiveResult(first, &AnalysisResult{VisualDescription: "v", CraftsmanshipDetails: "c", Posts: []GeneratedPost{}})

	second, err := state.StartGeneration()
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if state.Result() != nil {
		t.Error("新しい生成を開始したら以前の結果は破棄される必要があります")
	}

	failure := NewGenerationError(GenerationErrorEmptyReply, nil)
	if err := state.ReceiveError(second, failure); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if state.Result() != nil || !errors.Is(state.Err(), ErrGenerationFailed) {
		t.Error("失敗時は結果がなく、エラーが保持される必要があります")
	}
}

func TestStudioState_SelectImage(t *testing.T) {
	state := NewStudioState()
	_ = state.SelectImage(testImage())

	tooLarge := ImagePayload{Data: bytes.Repeat([]byte{1}, MaxImageSize+1), MIMEType: "image/jpeg", Filename: "huge.jpg"}
	if err := state.SelectImage(tooLarge); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("期待されるエラー: %v, 実際: %v", ErrImageTooLarge, err)
	}

	image, ok := state.Image()
	if !ok || image.Filename != "vase.jpg" {
		t.Error("拒否された場合は以前の選択が残る必要があります")
	}
	if !errors.Is(state.Err(), ErrImageTooLarge) {
		t.Error("拒否の理由がエラーとして保持される必要があります")
	}

	if err := state.SelectImage(testImage()); err != nil || state.Err() != nil {
		t.Error("選択し直すとエラーは消える必要があります")
	}

	state.ClearImage()
	if _, ok := state.Image(); ok {
		t.Error("選択解除後は画像がない必要があります")
	}
	if state.CanGenerate() {
		t.Error("選択解除後は生成できてはいけません")
	}
}

func TestStudioState_SetPlatforms(t *testing.T) {
	state := NewStudioState()

	if err := state.SetPlatforms([]Platform{PlatformTikTok, PlatformFacebook, PlatformTikTok}); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	platforms := state.Config().Platforms
	if len(platforms) != 2 || platforms[0] != PlatformFacebook || platforms[1] != PlatformTikTok {
		t.Errorf("表示順・重複なしで設定される必要があります: %v", platforms)
	}

	if err := state.SetPlatforms([]Platform{Platform(9)}); !errors.Is(err, ErrInvalidPlatform) {
		t.Errorf("未定義のプラットフォームはエラーになる必要があります: %v", err)
	}
	if err := state.SetTone(Tone(9)); !errors.Is(err, ErrInvalidTone) {
		t.Errorf("未定義のトーンはエラーになる必要があります: %v", err)
	}
}
