package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/mindbff/backend/internal/config"
	"github.com/zhouzirui/mindbff/backend/internal/model/keys"
	"github.com/zhouzirui/mindbff/backend/internal/model/persona"
	"github.com/zhouzirui/mindbff/backend/internal/service/chat"
	"github.com/zhouzirui/mindbff/backend/internal/service/journal"
	"github.com/zhouzirui/mindbff/backend/internal/service/voice"
	"github.com/zhouzirui/mindbff/backend/internal/store/keystore"
)

// audioChunkSize 是每次发送的 PCM 字节数。
const audioChunkSize = 8 * 1024

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	mode := flag.String("mode", "", "测试模式: chat、journal 或 voice")
	text := flag.String("text", "", "chat/journal 模式的输入文本")
	audioPath := flag.String("audio", "", "voice 模式下发送的 16kHz PCM 音频文件 (可选)")
	listen := flag.Duration("listen", 15*time.Second, "voice 模式下保持会话的时长")
	chatKey := flag.String("chat-key", "", "OpenAI key，留空则读取 OPENAI_API_KEY 或本地保存的 key")
	voiceKey := flag.String("voice-key", "", "ElevenLabs key，留空则读取 ELEVENLABS_API_KEY 或本地保存的 key")
	timeout := flag.Duration("timeout", 45*time.Second, "请求超时时间")

	flag.Parse()

	if *mode != "chat" && *mode != "journal" && *mode != "voice" {
		flag.Usage()
		log.Fatal("请通过 -mode=chat、-mode=journal 或 -mode=voice 指定测试模式")
	}

	pair := resolveKeys(cfg, *chatKey, *voiceKey)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "chat":
		runChat(ctx, cfg, pair.ChatKey, *text)
	case "journal":
		runJournal(ctx, cfg, pair.ChatKey, *text)
	case "voice":
		runVoice(ctx, cfg, pair.VoiceKey, *audioPath, *listen)
	}
}

// resolveKeys 按 flag、环境变量、本地存储的顺序取 key。
func resolveKeys(cfg *config.Config, chatFlag, voiceFlag string) keys.Pair {
	var stored keys.Pair
	if ks, err := keystore.Open(cfg.Storage.DataDir); err == nil {
		stored = ks.Load()
	} else {
		log.Printf("[WARN] 无法打开本地 key 存储: %v", err)
	}
	return keys.Pair{
		ChatKey:  firstNonEmpty(chatFlag, os.Getenv("OPENAI_API_KEY"), stored.ChatKey),
		VoiceKey: firstNonEmpty(voiceFlag, os.Getenv("ELEVENLABS_API_KEY"), stored.VoiceKey),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func runChat(ctx context.Context, cfg *config.Config, chatKey, text string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("chat 模式需要通过 -text 提供消息")
	}

	completer, err := cfg.Chat.NewCompleter()
	if err != nil {
		log.Fatalf("初始化 chat provider 失败: %v", err)
	}
	svc := chat.NewService(completer, persona.NewMemoryStore(persona.Seed()))

	info, err := svc.CreateSession(ctx)
	if err != nil {
		log.Fatalf("创建会话失败: %v", err)
	}

	log.Printf("开始进行 chat 测试: provider=%s session=%s", cfg.Chat.Provider, info.ID)
	start := time.Now()
	reply, err := svc.Send(ctx, info.ID, chatKey, text)
	if err != nil {
		log.Fatalf("chat 调用失败: %v", err)
	}
	log.Printf("chat 回复 (%s): %s", time.Since(start).Round(time.Millisecond), reply.Content)
}

func runJournal(ctx context.Context, cfg *config.Config, chatKey, text string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("journal 模式需要通过 -text 提供日记内容")
	}

	completer, err := cfg.Chat.NewCompleter()
	if err != nil {
		log.Fatalf("初始化 chat provider 失败: %v", err)
	}
	analyzer := journal.NewAnalyzer(completer, persona.NewMemoryStore(persona.Seed()), nil)

	log.Printf("开始进行 journal 测试: provider=%s", cfg.Chat.Provider)
	summary, err := analyzer.Analyze(ctx, text, chatKey)
	if err != nil {
		log.Fatalf("journal 分析失败: %v", err)
	}
	log.Printf("journal 分析结果: %s", summary)
}

func runVoice(ctx context.Context, cfg *config.Config, voiceKey, audioPath string, listen time.Duration) {
	session := voice.NewSession(
		voice.NewWebsocketDialer(cfg.Voice.BaseURL, cfg.Voice.HandshakeTimeout),
		voice.StaticMicrophone{Granted: cfg.Voice.MicrophoneGranted},
		cfg.Voice.AgentID,
	)
	defer session.Close()

	unsubscribe := session.Subscribe(func(snap voice.Snapshot) {
		line := fmt.Sprintf("[voice] %s", snap.Label)
		if snap.LastMessage != "" {
			line += fmt.Sprintf(" last=%q", snap.LastMessage)
		}
		if snap.Error != "" {
			line += " error=" + snap.Error
		}
		log.Print(line)
	})
	defer unsubscribe()

	log.Printf("开始进行 voice 测试: agent=%s url=%s", cfg.Voice.AgentID, cfg.Voice.BaseURL)
	if err := session.Toggle(ctx, voiceKey); err != nil {
		log.Fatalf("连接 voice agent 失败: %v", err)
	}

	if audioPath != "" {
		audio, err := os.ReadFile(audioPath)
		if err != nil {
			log.Fatalf("读取音频文件失败: %v", err)
		}
		for start := 0; start < len(audio); start += audioChunkSize {
			end := min(start+audioChunkSize, len(audio))
			if err := session.SendAudio(audio[start:end]); err != nil {
				log.Fatalf("发送音频失败: %v", err)
			}
		}
		log.Printf("已发送 %d 字节音频", len(audio))
	}

	time.Sleep(listen)
	if session.State() != voice.StateIdle {
		if err := session.Toggle(context.Background(), voiceKey); err != nil {
			log.Printf("[WARN] 结束会话失败: %v", err)
		}
	}
	log.Printf("voice 测试结束")
}
