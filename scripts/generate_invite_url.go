package main

import (
	"fmt"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
)

// スタジオBotが必要とする権限
var requiredPermissions = []struct {
	name  string
	value int64
}{
	{"View Channels", discordgo.PermissionViewChannel},
	{"Send Messages", discordgo.PermissionSendMessages},
	{"Embed Links", discordgo.PermissionEmbedLinks},
	{"Attach Files", discordgo.PermissionAttachFiles},
	{"Read Message History", discordgo.PermissionReadMessageHistory},
}

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("警告: .envファイルの読み込みに失敗しました: %v", err)
	}

	botToken := os.Getenv("DISCORD_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN が設定されていません")
	}

	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		log.Fatalf("Discordセッションの作成に失敗: %v", err)
	}
	defer session.Close()

	user, err := session.User("@me")
	if err != nil {
		log.Fatalf("Bot情報の取得に失敗: %v", err)
	}

	var permissions int64
	for _, p := range requiredPermissions {
		permissions |= p.value
	}

	fmt.Printf("Bot: %s (ID: %s)\n\n", user.Username, user.ID)

	// スラッシュコマンドを使うため applications.commands スコープも付与する
	inviteURL := fmt.Sprintf(
		"https://discord.com/api/oauth2/authorize?client_id=%s&permissions=%d&scope=bot%%20applications.commands",
		user.ID, permissions,
	)
	fmt.Printf("招待URL:\n  %s\n\n", inviteURL)

	fmt.Println("必要な権限:")
	for _, p := range requiredPermissions {
		fmt.Printf("  - %s (%d)\n", p.name, p.value)
	}
	fmt.Printf("  合計: %d\n\n", permissions)

	fmt.Println("使い方:")
	fmt.Println("  /decoupage image:<写真> で投稿文を生成します")
	fmt.Println("  /platform と /tone で投稿先とトーンを切り替えます")
	fmt.Println("  /image で写真だけを選択し、/clear で選択を解除します")
	fmt.Printf("  @%s に写真を添付してメンションしても生成できます\n", user.Username)
}
