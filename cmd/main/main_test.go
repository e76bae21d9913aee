package main

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mholen/gather/pkg/store"
)

// newTestServer creates a fully wired Server over temp directories and a
// temp database, with fast bcrypt and an effectively disabled rate limit.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	cm, err := NewConfigManager(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("NewConfigManager() error = %v", err)
	}

	config := cm.Get()
	config.Server.DataDir = dir
	config.Server.DatabasePath = filepath.Join(dir, "test.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	config.Server.UploadsDir = filepath.Join(dir, "uploads")
	config.Auth.BcryptCost = bcrypt.MinCost
	config.RateLimit.RequestsPerSecond = 10000
	config.RateLimit.Burst = 10000
	if err := cm.Update(config); err != nil {
		t.Fatalf("failed to update test config: %v", err)
	}
	if err := ensureDirs(config.Server); err != nil {
		t.Fatalf("failed to create test dirs: %v", err)
	}

	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cm.SetLogger(logger)

	server, err := NewServer(cm, logger, db)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return server
}

// newTestClient starts an httptest server around the full handler stack and
// returns a cookie-keeping client pointed at it.
func newTestClient(t *testing.T, s *Server) (*http.Client, string) {
	t.Helper()

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}, ts.URL
}

func get(t *testing.T, client *http.Client, url string) string {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

// postForm submits a urlencoded form and returns the final page body after
// redirects.
func postForm(t *testing.T, client *http.Client, url string, form url.Values) string {
	t.Helper()

	resp, err := client.PostForm(url, form)
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

// postMultipart submits a multipart form, optionally attaching fileContent
// under the "image" field, and returns the final page body.
func postMultipart(t *testing.T, client *http.Client, url string, fields map[string]string, fileName string, fileContent []byte) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write(fileContent); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	resp, err := client.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

// registerAndLogin creates an account through the register form and logs it
// in, leaving the session cookie in the client's jar.
func registerAndLogin(t *testing.T, client *http.Client, baseURL, username string) {
	t.Helper()

	body := postForm(t, client, baseURL+"/", url.Values{
		"form":             {"register"},
		"first_name":       {"Test"},
		"last_name":        {"User"},
		"username":         {username},
		"password":         {"correct horse"},
		"confirm_password": {"correct horse"},
	})
	if !strings.Contains(body, "User successfully created!") {
		t.Fatalf("registration of %q did not flash success, body:\n%s", username, body)
	}

	body = postForm(t, client, baseURL+"/", url.Values{
		"form":     {"login"},
		"username": {username},
		"password": {"correct horse"},
	})
	if !strings.Contains(body, "You have been logged in!") {
		t.Fatalf("login of %q did not flash success, body:\n%s", username, body)
	}
}
