package facebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestResolvePageToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/accounts" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("access_token"); got != "user-token" {
			t.Errorf("access_token = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [
			{"id": "other", "access_token": "nope"},
			{"id": "page123", "access_token": "page-token"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "page123", "user-token")
	c.ResolvePageToken(context.Background())
	if c.token != "page-token" {
		t.Errorf("token = %q, want page-token", c.token)
	}
}

func TestResolvePageTokenKeepsTokenOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "page123", "already-page-token")
	c.ResolvePageToken(context.Background())
	if c.token != "already-page-token" {
		t.Errorf("token = %q, want unchanged", c.token)
	}
}

func TestPostImagesAttachesUploads(t *testing.T) {
	var uploads int32
	mux := http.NewServeMux()
	mux.HandleFunc("/page123/photos", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("published"); got != "false" {
			t.Errorf("published = %q, want false", got)
		}
		if _, _, err := r.FormFile("source"); err != nil {
			t.Errorf("source file: %v", err)
		}
		n := atomic.AddInt32(&uploads, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "photo-` + string(rune('0'+n)) + `"}`))
	})
	mux.HandleFunc("/page123/feed", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("message"); got != "caption text" {
			t.Errorf("message = %q", got)
		}
		var attached []map[string]string
		if err := json.Unmarshal([]byte(r.FormValue("attached_media")), &attached); err != nil {
			t.Fatalf("attached_media: %v", err)
		}
		if len(attached) != 2 {
			t.Errorf("attached = %v, want 2 entries", attached)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "post-1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "page123", "page-token")
	err := c.PostImages(context.Background(), "caption text", [][]byte{[]byte("a"), []byte("b")})
	if err != nil {
		t.Fatalf("PostImages: %v", err)
	}
	if atomic.LoadInt32(&uploads) != 2 {
		t.Errorf("uploads = %d, want 2", uploads)
	}
}

func TestPostImagesUnconfigured(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "", "")
	if err := c.PostImages(context.Background(), "x", [][]byte{[]byte("a")}); err == nil {
		t.Fatal("expected error without page id and token")
	}
}

func TestPostImagesFallsBackToSinglePhoto(t *testing.T) {
	var singlePosted bool
	mux := http.NewServeMux()
	mux.HandleFunc("/page123/photos", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		w.Header().Set("Content-Type", "application/json")
		if r.FormValue("published") == "false" {
			_, _ = w.Write([]byte(`{"id": "photo-1"}`))
			return
		}
		singlePosted = true
		_, _ = w.Write([]byte(`{"id": "post-1"}`))
	})
	mux.HandleFunc("/page123/feed", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "boom"}}`, http.StatusBadRequest)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "page123", "page-token")
	if err := c.PostImages(context.Background(), "caption", [][]byte{[]byte("a")}); err != nil {
		t.Fatalf("PostImages: %v", err)
	}
	if !singlePosted {
		t.Error("fallback single photo post never happened")
	}
}
