package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/pivolan/ecommerce_analyzer/report"
	"github.com/pivolan/ecommerce_analyzer/schema"
	"github.com/pivolan/ecommerce_analyzer/session"
)

const (
	topGroups   = 20
	topReturns  = 10
	pageSize    = 10
	historySize = 10
)

// pageColumns are shown by /page; the full frame does not fit a chat message.
var pageColumns = []string{
	schema.OrderID, schema.OrderTimestamp, schema.TotalQty, schema.TotalPayment, schema.City, schema.OrderStatus,
}

type groupCommand struct {
	column string
	title  string
}

var groupCommands = map[string]groupCommand{
	"status":   {schema.OrderStatus, "Status Pesanan"},
	"shipping": {schema.ShippingOption, "Opsi Pengiriman"},
	"payment":  {schema.PaymentMethod, "Metode Pembayaran"},
	"city":     {schema.City, "Kota"},
	"province": {schema.Province, "Provinsi"},
	"category": {schema.ProductCategories, "Kategori Produk"},
}

func (a *App) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	// Команды, которым не нужны загруженные данные
	switch command {
	case "start", "help":
		a.sendText(chatID, welcomeText)
		return
	case "remote":
		if a.remote == nil {
			a.sendText(chatID, "❌ Dataset bawaan tidak dikonfigurasi")
			return
		}
		a.sendText(chatID, "⏳ Memuat "+a.remote.Describe()+"...")
		_, _ = a.load(ctx, chatID, a.remote)
		return
	case "reset":
		a.sessions.Get(sessionKey(chatID)).Reset()
		a.sendText(chatID, "🗑 Data dihapus. Kirim file CSV baru atau gunakan /remote")
		return
	case "history":
		a.handleHistory(ctx, chatID)
		return
	}

	snap, ok := a.sessions.Get(sessionKey(chatID)).Current()
	if !ok {
		a.sendText(chatID, "Belum ada data. Kirim file CSV atau gunakan /remote")
		return
	}
	f := snap.Frame

	if g, ok := groupCommands[command]; ok {
		a.sendTable(chatID, report.GroupTable(g.title, g.title, report.Top(report.GroupBy(f, g.column), topGroups)))
		return
	}

	switch command {
	case "overview":
		a.sendTable(chatID, report.OverviewTable(snap.Metrics))
	case "info":
		a.sendTable(chatID, report.InfoTable(f, *snap.Report))
	case "monthly":
		a.sendTable(chatID, report.GroupTable("Tren Bulanan", "Bulan", report.Monthly(f)))
	case "yearly":
		a.sendTable(chatID, report.GroupTable("Tren Tahunan", "Tahun", report.Yearly(f)))
	case "weekday":
		a.sendTable(chatID, report.GroupTable("Hari", "Hari", report.Weekday(f)))
	case "discount":
		a.sendTable(chatID, report.BucketTable("Diskon", report.DiscountBuckets(f)))
	case "weight":
		a.sendTable(chatID, report.BucketTable("Berat", report.WeightBuckets(f)))
	case "region":
		a.sendTable(chatID, report.RegionTable(report.Regions(f)))
	case "ongkir":
		a.sendTable(chatID, report.ShippingTable(report.ShippingCosts(f)))
	case "retur":
		a.sendTable(chatID, report.ReturnTable(report.Returns(f, topReturns)))
	case "describe":
		stats := report.Describe(f, args)
		if len(stats) == 0 {
			a.sendText(chatID, "Tidak ada kolom numerik: "+strings.Join(args, ", "))
			return
		}
		a.sendTable(chatID, report.DescribeTable(stats))
	case "page":
		a.handlePage(chatID, snap, args)
	case "export":
		data, err := report.ExportCSV(f, nil)
		if err != nil {
			a.logger.Error("export", zap.Error(err))
			a.sendText(chatID, "❌ "+err.Error())
			return
		}
		name := "export_" + time.Now().Format("20060102-150405") + ".csv"
		a.sendFile(chatID, name, fmt.Sprintf("%d baris", f.NumRows()), data)
	default:
		a.sendText(chatID, "Perintah tidak dikenal. Gunakan /start untuk daftar perintah")
	}
}

func (a *App) handlePage(chatID int64, snap *session.Snapshot, args []string) {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			a.sendText(chatID, "Format: /page N")
			return
		}
		page = n
	}

	var columns []string
	for _, c := range pageColumns {
		if snap.Frame.HasColumn(c) {
			columns = append(columns, c)
		}
	}
	view, err := report.Page(snap.Frame, columns, page, pageSize)
	if err != nil {
		a.sendText(chatID, "❌ "+err.Error())
		return
	}
	a.sendTable(chatID, report.PageTable(view))
}

func (a *App) handleHistory(ctx context.Context, chatID int64) {
	records, err := a.sessions.Get(sessionKey(chatID)).History(ctx, historySize)
	if err != nil {
		a.logger.Error("history", zap.Error(err))
		a.sendText(chatID, "❌ Riwayat tidak tersedia")
		return
	}
	if len(records) == 0 {
		a.sendText(chatID, "Riwayat kosong")
		return
	}

	t := table.NewWriter()
	t.SetTitle("Riwayat")
	t.AppendHeader(table.Row{"Waktu", "File", "Encoding", "Baris", "Status"})
	for _, r := range records {
		status := "OK"
		if !r.Valid {
			status = "Gagal"
		}
		t.AppendRow(table.Row{r.CreatedAt.Format("2006-01-02 15:04"), r.FileName, r.Strategy, r.Rows, status})
	}
	t.SetStyle(table.StyleDefault)
	a.sendTable(chatID, t.Render())
}
