package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"notebook/internal/document"
	"notebook/internal/stubserver"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func writeDoc(t *testing.T, name, content string) document.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	doc, err := document.Open(path)
	require.NoError(t, err)
	return doc
}

func newServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.CloseClientConnections()
		srv.Close()
	})
	return srv
}

func newClient(srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: &http.Transport{DisableKeepAlives: true}})}, opts...)
	return NewClient(srv.URL+"/", opts...)
}

func TestUploadDocument_SendsMultipart(t *testing.T) {
	doc := writeDoc(t, "handbook.pdf", "%PDF-1.4 body")

	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, UploadPath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "handbook.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 body", string(data))
		assert.Equal(t, " sk-raw ", r.FormValue("api_key"))

		w.WriteHeader(http.StatusCreated)
	}))

	err := newClient(srv).UploadDocument(context.Background(), doc, " sk-raw ")
	assert.NoError(t, err)
}

func TestUploadDocument_NonSuccessStatus(t *testing.T) {
	doc := writeDoc(t, "notes.txt", "text")
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid API key"}`))
	}))

	err := newClient(srv).UploadDocument(context.Background(), doc, "sk")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "upload_pdf returned status 401: Invalid API key", err.Error())
}

func TestUploadDocument_MissingFile(t *testing.T) {
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	}))
	doc := document.Document{Path: filepath.Join(t.TempDir(), "gone.pdf"), Name: "gone.pdf", Kind: document.KindPDF}

	err := newClient(srv).UploadDocument(context.Background(), doc, "sk")
	assert.Error(t, err)
}

func TestUploadDocument_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	doc := writeDoc(t, "a.md", "# a")
	err := NewClient(url).UploadDocument(context.Background(), doc, "sk")
	assert.Error(t, err)
}

func TestChat_Success(t *testing.T) {
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ChatPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ChatRequest{UserMessage: "hello", APIKey: "sk-test"}, req)

		_ = json.NewEncoder(w).Encode(ChatResponse{Answer: "hi there\nsecond line"})
	}))

	answer, err := newClient(srv).Chat(context.Background(), "hello", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "hi there\nsecond line", answer)
}

func TestChat_ServerError(t *testing.T) {
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaboom", http.StatusInternalServerError)
	}))

	_, err := newClient(srv).Chat(context.Background(), "hello", "sk")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "pdf_chat returned status 500: kaboom", se.Error())
}

func TestChat_MalformedBody(t *testing.T) {
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))

	_, err := newClient(srv).Chat(context.Background(), "hello", "sk")
	assert.Error(t, err)
}

func TestChat_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	start := time.Now()
	_, err := newClient(srv, WithTimeout(50*time.Millisecond)).Chat(context.Background(), "slow", "sk")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, stubserver.New().Handler())

	status, err := newClient(srv).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status)
}

func TestClient_AgainstStub(t *testing.T) {
	stub := stubserver.New()
	srv := newServer(t, stub.Handler())
	c := newClient(srv)
	doc := writeDoc(t, "policy.txt", "Vacation: 25 days")

	_, err := c.Chat(context.Background(), "before upload", "sk-1")
	require.Error(t, err, "stub requires a document first")

	require.NoError(t, c.UploadDocument(context.Background(), doc, "sk-1"))

	answer, err := c.Chat(context.Background(), "How much vacation?", "sk-1")
	require.NoError(t, err)
	u, _ := stub.Upload("sk-1")
	assert.Equal(t, stubserver.Answer(u, "How much vacation?"), answer)
}

func TestExtractDetail(t *testing.T) {
	assert.Equal(t, "", extractDetail("  "))
	assert.Equal(t, "x", extractDetail(`{"detail":"x"}`))
	assert.Equal(t, "y", extractDetail(`{"error":"y"}`))
	assert.Equal(t, "", extractDetail(`{"other":1}`))
	assert.Equal(t, "plain", extractDetail("plain\n"))
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	assert.Equal(t, "http://h:1", NewClient("http://h:1///").BaseURL())
}
