package main

import (
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pivolan/ecommerce_analyzer/ingest"
	"github.com/pivolan/ecommerce_analyzer/pipeline"
)

var uploadForm = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Upload CSV</title></head>
<body>
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="hidden" name="uuid" value="{{.}}">
<input type="file" name="file" accept=".csv">
<button type="submit">Upload</button>
</form>
</body>
</html>
`))

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", a.handleIndex)
	mux.HandleFunc("/upload", a.handleUpload)
	return mux
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := uploadForm.Execute(w, r.URL.Query().Get("id")); err != nil {
		http.Error(w, "Error rendering upload form", http.StatusInternalServerError)
	}
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error uploading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	token := r.FormValue("uuid")
	if token == "" {
		http.Error(w, "Error getting uuid", http.StatusBadRequest)
		return
	}
	chatID, ok := a.links.Resolve(token)
	if !ok {
		http.Error(w, "Link tidak dikenal atau sudah kedaluwarsa", http.StatusNotFound)
		return
	}

	name := filepath.Base(header.Filename)
	dir := filepath.Join(a.cfg.UploadDir, token)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.logger.Error("upload dir", zap.Error(err))
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}
	filePath := filepath.Join(dir, name)
	if err := saveUpload(filePath, file); err != nil {
		a.logger.Error("save upload", zap.String("path", filePath), zap.Error(err))
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}

	saved, err := os.Open(filePath)
	if err != nil {
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}
	defer saved.Close()

	a.sendText(chatID, "📥 File "+name+" diterima, memproses...")
	snap, err := a.load(r.Context(), chatID, ingest.UploadSource{FileName: name, Reader: saved})
	if err != nil {
		http.Error(w, pipeline.UserMessage(err), http.StatusUnprocessableEntity)
		return
	}
	io.WriteString(w, snap.Verdict.Message+"\n")
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
