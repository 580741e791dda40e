package main

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"

	"github.com/pivolan/ecommerce_analyzer/config"
	"github.com/pivolan/ecommerce_analyzer/ingest"
	"github.com/pivolan/ecommerce_analyzer/pipeline"
	"github.com/pivolan/ecommerce_analyzer/report"
	"github.com/pivolan/ecommerce_analyzer/session"
)

// botAPI is the part of tgbotapi.BotAPI the handlers use.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// App связывает бота, веб-загрузку и сессии пользователей
type App struct {
	cfg      *config.Config
	bot      botAPI
	logger   *zap.Logger
	client   *http.Client
	sessions *session.Registry
	links    *session.Links
	remote   ingest.Source
}

const welcomeText = `Halo! 👋

Saya membantu menganalisis data penjualan e-commerce dari file CSV.

Cara memakai:
1. Kirim file CSV langsung ke chat
2. Atau /remote untuk memuat dataset bawaan
3. Atau kirim pesan apa saja untuk mendapatkan link upload via web

Perintah:
/overview /info /monthly /weekday
/status /shipping /payment /city /province /category
/discount /weight /region /ongkir /retur /describe
/page N /export /history /reset`

func (a *App) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	switch {
	case message.Document != nil:
		a.handleDocument(ctx, message)
	case message.IsCommand():
		a.handleCommand(ctx, message)
	case message.Text != "":
		a.handleText(message)
	}
}

func (a *App) handleText(message *tgbotapi.Message) {
	a.sendText(message.Chat.ID, "Buka link ini untuk meng-upload file: "+a.uploadURL(a.links.Issue(message.Chat.ID)))
}

func (a *App) uploadURL(token string) string {
	base := a.cfg.PublicURL
	if base == "" {
		base = "http://localhost" + a.cfg.HTTPAddr
	}
	return strings.TrimRight(base, "/") + "/?id=" + token
}

func (a *App) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	doc := message.Document

	fileURL, err := a.bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		a.logger.Warn("telegram file url", zap.Error(err))
		a.sendText(chatID, "Gagal mengambil file. Jika file terlalu besar, upload lewat link ini: "+a.uploadURL(a.links.Issue(chatID)))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		a.sendText(chatID, "❌ "+err.Error())
		return
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn("download document", zap.String("file", doc.FileName), zap.Error(err))
		a.sendText(chatID, "❌ Gagal mengunduh file dari Telegram")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.sendText(chatID, fmt.Sprintf("❌ Gagal mengunduh file dari Telegram (%d)", resp.StatusCode))
		return
	}

	a.sendText(chatID, "⏳ Memproses "+doc.FileName+"...")
	a.load(ctx, chatID, ingest.UploadSource{FileName: doc.FileName, Reader: resp.Body})
}

// load runs src into the chat's store and reports the outcome to the chat.
func (a *App) load(ctx context.Context, chatID int64, src ingest.Source) (*session.Snapshot, error) {
	store := a.sessions.Get(sessionKey(chatID))
	snap, err := store.Load(ctx, src)
	if err != nil {
		a.sendText(chatID, pipeline.UserMessage(err))
		return nil, err
	}
	a.sendText(chatID, fmt.Sprintf("✅ %s\n%s: %s baris", snap.Verdict.Message, snap.FileName, report.FormatNumber(float64(snap.Frame.NumRows()))))
	a.sendTable(chatID, report.OverviewTable(snap.Metrics))
	return snap, nil
}

func (a *App) sendText(chatID int64, text string) {
	if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		a.logger.Warn("telegram send", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// sendTable sends a pre-rendered text table in monospace.
func (a *App) sendTable(chatID int64, table string) {
	msg := tgbotapi.NewMessage(chatID, "<pre>\n"+html.EscapeString(table)+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := a.bot.Send(msg); err != nil {
		a.logger.Warn("telegram send", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (a *App) sendFile(chatID int64, name, caption string, data []byte) {
	doc := tgbotapi.NewDocumentUpload(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := a.bot.Send(doc); err != nil {
		a.logger.Warn("telegram send file", zap.Int64("chat", chatID), zap.String("file", name), zap.Error(err))
	}
}
