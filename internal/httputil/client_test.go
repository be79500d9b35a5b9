package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestClient(srv *httptest.Server, cfg Config) *Client {
	return NewClient(cfg).WithHTTPClient(srv.Client())
}

func TestDocumentSendsConfiguredHeaders(t *testing.T) {
	var gotUA, gotExtra, gotReferer string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Site")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1 class="name">العاصفة</h1></body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{UserAgent: "test-agent", Headers: map[string]string{"X-Site": "asia2tv"}})
	doc, err := c.Document(context.Background(), srv.URL+"/serie/tempest/", map[string]string{"Referer": "https://asia2tv.com/"})
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	if got := doc.Find("h1.name").Text(); got != "العاصفة" {
		t.Errorf("title = %q, want العاصفة", got)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", gotUA)
	}
	if gotExtra != "asia2tv" {
		t.Errorf("X-Site = %q, want asia2tv", gotExtra)
	}
	if gotReferer != "https://asia2tv.com/" {
		t.Errorf("Referer = %q, want https://asia2tv.com/", gotReferer)
	}
	if doc.Url == nil || doc.Url.Path != "/serie/tempest/" {
		t.Errorf("doc.Url = %v, want final request URL", doc.Url)
	}
}

func TestDocumentDecodesDeclaredCharset(t *testing.T) {
	// "مرحبا" in windows-1256.
	body := []byte{'<', 'p', '>', 0xE3, 0xD1, 0xCD, 0xC8, 0xC7, '<', '/', 'p', '>'}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1256")
		w.Write(body)
	}))
	defer srv.Close()

	doc, err := newTestClient(srv, Config{}).Document(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	if got := doc.Find("p").Text(); got != "مرحبا" {
		t.Errorf("text = %q, want مرحبا", got)
	}
}

func TestStatusErrorIsFetchFailed(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, Config{}).Text(context.Background(), srv.URL, nil)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("error = %v, want ErrFetchFailed", err)
	}

	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusBadGateway {
		t.Errorf("FetchError status = %+v, want 502", fe)
	}
}

func TestInsecureURLRejected(t *testing.T) {
	_, err := NewClient(Config{}).Text(context.Background(), "http://asia2tv.com/", nil)
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed for plain HTTP", err)
	}
}

func TestPostForm(t *testing.T) {
	var gotAction, gotServer, gotType, gotXHR string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotAction = r.PostForm.Get("action")
		gotServer = r.PostForm.Get("server")
		gotType = r.Header.Get("Content-Type")
		gotXHR = r.Header.Get("X-Requested-With")
		w.Write([]byte(`{"success":true,"data":"ok"}`))
	}))
	defer srv.Close()

	form := url.Values{"action": {"get_player_content"}, "server": {"17"}}
	body, err := newTestClient(srv, Config{}).PostForm(context.Background(), srv.URL+"/wp-admin/admin-ajax.php", nil, form)
	if err != nil {
		t.Fatalf("PostForm() error: %v", err)
	}
	if body != `{"success":true,"data":"ok"}` {
		t.Errorf("body = %q", body)
	}
	if gotAction != "get_player_content" || gotServer != "17" {
		t.Errorf("form = action:%q server:%q", gotAction, gotServer)
	}
	if gotType != "application/x-www-form-urlencoded; charset=UTF-8" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotXHR != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", gotXHR)
	}
}
