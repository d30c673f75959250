package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/csg33k/code-portal/internal/adapters/backend"
	"github.com/csg33k/code-portal/internal/domain"
)

func newClient(t *testing.T, mux *http.ServeMux) (*backend.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := backend.New(srv.URL+"/", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadScheme(t *testing.T) {
	if _, err := backend.New("ftp://example.com", 0); err == nil {
		t.Fatal("want error for ftp scheme")
	}
}

func TestSubmit_SendsMultipartFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/submit", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "main.py" || string(data) != "print('hi')" {
			t.Errorf("unexpected file %q with %q", header.Filename, data)
		}
		if got := r.FormValue("project_name"); got != "Demo" {
			t.Errorf("project_name: want Demo, got %q", got)
		}
		writeJSON(w, map[string]any{"success": true, "message": "ok"})
	})
	c, _ := newClient(t, mux)

	err := c.Submit(context.Background(), domain.Upload{
		Filename:    "main.py",
		Content:     strings.NewReader("print('hi')"),
		ProjectName: "Demo",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmit_ApplicationFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/submit", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "message": "unsupported file type"})
	})
	c, _ := newClient(t, mux)

	err := c.Submit(context.Background(), domain.Upload{Filename: "x.exe", Content: strings.NewReader("x"), ProjectName: "p"})
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *domain.APIError, got %v", err)
	}
	if apiErr.Message != "unsupported file type" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestListSubmissions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/submissions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"submissions":[
			{"id":3,"username":"admin","project_name":"A","filename":"a.py","submission_time":"2024-05-01 10:00:00","file_size":1536},
			{"id":1,"username":"user1","project_name":"B","filename":"b.c","submission_time":"2024-04-01 09:00:00","file_size":0}]}`)
	})
	c, _ := newClient(t, mux)

	subs, err := c.ListSubmissions(context.Background())
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(subs) != 2 || subs[0].ID != 3 || subs[1].ID != 1 {
		t.Fatalf("want ids [3 1] in backend order, got %+v", subs)
	}
	if subs[0].ProjectName != "A" || subs[0].FileSize != 1536 {
		t.Errorf("decoded fields wrong: %+v", subs[0])
	}
}

func TestListSubmissions_MissingArrayIsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/submissions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true})
	})
	c, _ := newClient(t, mux)

	subs, err := c.ListSubmissions(context.Background())
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if subs == nil || len(subs) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", subs)
	}
}

func TestListSubmissions_MalformedIsTransportError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/submissions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	})
	c, _ := newClient(t, mux)

	_, err := c.ListSubmissions(context.Background())
	if err == nil {
		t.Fatal("want error")
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("malformed body must not be an application error: %v", err)
	}
}

func TestDownload_StreamsAttachment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/download/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7" {
			t.Errorf("id: got %q", r.PathValue("id"))
		}
		w.Header().Set("Content-Type", "text/x-python")
		w.Header().Set("Content-Disposition", `attachment; filename="solver.py"`)
		io.WriteString(w, "def solve(): pass\n")
	})
	c, _ := newClient(t, mux)

	dl, err := c.Download(context.Background(), 7)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer dl.Body.Close()
	data, _ := io.ReadAll(dl.Body)
	if dl.Filename != "solver.py" || string(data) != "def solve(): pass\n" {
		t.Errorf("got %q / %q", dl.Filename, data)
	}
}

func TestDownload_JSONReplyIsApplicationError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/download/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "message": "no permission"})
	})
	c, _ := newClient(t, mux)

	_, err := c.Download(context.Background(), 1)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "no permission" {
		t.Fatalf("want APIError(no permission), got %v", err)
	}
}

func TestDownload_JSONAttachmentIsStreamed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/download/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="config.json"`)
		io.WriteString(w, `{"name":"demo","version":1}`)
	})
	c, _ := newClient(t, mux)

	dl, err := c.Download(context.Background(), 4)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer dl.Body.Close()
	if dl.Filename != "config.json" {
		t.Errorf("filename: got %q", dl.Filename)
	}
	body, err := io.ReadAll(dl.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != `{"name":"demo","version":1}` {
		t.Errorf("body: got %q", body)
	}
}

func TestDownload_FallbackFilename(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/download/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		io.WriteString(w, "x")
	})
	c, _ := newClient(t, mux)

	dl, err := c.Download(context.Background(), 12)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	dl.Body.Close()
	if dl.Filename != "submission-12" {
		t.Errorf("filename: got %q", dl.Filename)
	}
}

func TestLoginThenLogout_SessionCookieAndRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("username") != "admin" || r.FormValue("password") != "admin123" {
			writeJSON(w, map[string]any{"success": false, "message": "bad credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		writeJSON(w, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /api/submissions", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err != nil {
			writeJSON(w, map[string]any{"success": false, "message": "please log in"})
			return
		}
		writeJSON(w, map[string]any{"success": true, "submissions": []any{}})
	})
	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<form>login</form>")
	})
	c, srv := newClient(t, mux)
	ctx := context.Background()

	if err := c.Login(ctx, "admin", "wrong"); err == nil {
		t.Fatal("want error for wrong password")
	}
	if err := c.Login(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.ListSubmissions(ctx); err != nil {
		t.Fatalf("list with session: %v", err)
	}

	target, err := c.Logout(ctx)
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if target != srv.URL+"/login" {
		t.Errorf("redirect target: want %s/login, got %q", srv.URL, target)
	}
	if _, err := c.ListSubmissions(ctx); err == nil {
		t.Error("session cookie should be gone after logout")
	}
}

func TestLogout_NoRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "bye")
	})
	c, _ := newClient(t, mux)

	target, err := c.Logout(context.Background())
	if err != nil || target != "" {
		t.Fatalf("want no redirect, got %q, %v", target, err)
	}
}

func TestEditorURL(t *testing.T) {
	c, err := backend.New("https://portal.example.com/base/", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.EditorURL(42, domain.ModeEdit); got != "https://portal.example.com/base/editor/42?mode=edit" {
		t.Errorf("EditorURL: got %q", got)
	}
	if got := c.EditorURL(1, domain.ModeView); got != "https://portal.example.com/base/editor/1?mode=view" {
		t.Errorf("EditorURL: got %q", got)
	}
}
