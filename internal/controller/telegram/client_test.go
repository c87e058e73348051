package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"audio_bot/entity"
)

const testToken = "123:secret"

type apiCall struct {
	method string
	params map[string]string
	file   []byte
}

type fakeBotAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeBotAPI) record(c apiCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBotAPI) last(method string) (apiCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return f.calls[i], true
		}
	}
	return apiCall{}, false
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/file/bot"+testToken+"/voice/file_1.oga" {
		w.Write([]byte("OggS-bytes"))
		return
	}
	if strings.HasPrefix(r.URL.Path, "/file/") {
		http.NotFound(w, r)
		return
	}

	method := strings.TrimPrefix(r.URL.Path, "/bot"+testToken+"/")
	call := apiCall{method: method, params: map[string]string{}}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for k, v := range r.MultipartForm.Value {
			call.params[k] = v[0]
		}
		if fh, ok := r.MultipartForm.File["audio"]; ok {
			file, _ := fh[0].Open()
			call.file, _ = io.ReadAll(file)
			call.params["filename"] = fh[0].Filename
			file.Close()
		}
	} else {
		r.ParseForm()
		for k, v := range r.PostForm {
			call.params[k] = v[0]
		}
	}
	f.record(call)

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Audio","username":"audio_bot"}}`)
	case "getFile":
		if call.params["file_id"] == "missing" {
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: invalid file_id"}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"file_id":"abc","file_unique_id":"u","file_size":10,"file_path":"voice/file_1.oga"}}`)
	case "sendMessage", "sendAudio":
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":42,"type":"private"}}}`)
	case "getUpdates":
		if call.params["offset"] == "" {
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":1,"message":{"message_id":5,"date":0,"chat":{"id":42,"type":"private"},"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}]}`)
			return
		}
		time.Sleep(10 * time.Millisecond)
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	case "deleteMessage":
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	default:
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeBotAPI) {
	t.Helper()
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewClientWithEndpoints(testToken, srv.URL+"/bot%s/%s", srv.URL+"/file/bot%s/%s", srv.Client(), false)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c, api
}

func TestClientUsername(t *testing.T) {
	c, _ := newTestClient(t)
	if c.Username() != "audio_bot" {
		t.Errorf("expected audio_bot, got %q", c.Username())
	}
}

func TestClientReplyText(t *testing.T) {
	c, api := newTestClient(t)

	id, err := c.ReplyText(context.Background(), 42, 7, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 77 {
		t.Errorf("expected message id 77, got %d", id)
	}

	call, ok := api.last("sendMessage")
	if !ok {
		t.Fatal("sendMessage not called")
	}
	if call.params["chat_id"] != "42" || call.params["text"] != "hello" || call.params["reply_to_message_id"] != "7" {
		t.Errorf("unexpected params %v", call.params)
	}
}

func TestClientSendAudio(t *testing.T) {
	c, api := newTestClient(t)

	if err := c.SendAudio(context.Background(), 42, 0, "audio.mp3", []byte("ID3-data"), "done"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call, ok := api.last("sendAudio")
	if !ok {
		t.Fatal("sendAudio not called")
	}
	if call.params["chat_id"] != "42" || call.params["caption"] != "done" || call.params["filename"] != "audio.mp3" {
		t.Errorf("unexpected params %v", call.params)
	}
	if string(call.file) != "ID3-data" {
		t.Errorf("unexpected upload body %q", call.file)
	}
}

func TestClientDeleteMessage(t *testing.T) {
	c, api := newTestClient(t)

	if err := c.DeleteMessage(context.Background(), 42, 77); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call, ok := api.last("deleteMessage")
	if !ok || call.params["message_id"] != "77" || call.params["chat_id"] != "42" {
		t.Errorf("unexpected deleteMessage call %+v", call)
	}
}

func TestClientDownload(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	path, err := c.GetFilePath(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "voice/file_1.oga" {
		t.Fatalf("unexpected path %q", path)
	}

	body, err := c.DownloadFile(ctx, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "OggS-bytes" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestClientDownloadErrors(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.GetFilePath(ctx, "missing"); err == nil {
		t.Error("expected getFile error")
	}

	_, err := c.DownloadFile(ctx, "voice/gone.oga")
	if err == nil {
		t.Fatal("expected download error")
	}
	if strings.Contains(err.Error(), testToken) {
		t.Errorf("error leaks the token: %v", err)
	}
}

type signalHandler struct {
	recordingHandler
	started chan entity.IncomingAudioEvent
}

func (h *signalHandler) OnStart(_ context.Context, ev entity.IncomingAudioEvent) error {
	h.started <- ev
	return nil
}

func TestPollerDeliversUpdates(t *testing.T) {
	c, _ := newTestClient(t)
	h := &signalHandler{started: make(chan entity.IncomingAudioEvent, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- NewPoller(c, NewRouter(h, nopLogger{}), 0, nopLogger{}).Run(ctx)
	}()

	select {
	case ev := <-h.started:
		if ev.ChatID != 42 || ev.MessageID != 5 {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("start command was not delivered")
	}

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}
