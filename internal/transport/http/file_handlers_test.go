package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func registerMember(t *testing.T, server *http.Server, groupID, userID string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/groups/"+groupID+"/user", nil)
	req.Header.Set("Authorization", userID)
	resp := httptest.NewRecorder()
	server.Handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("register member: expected status 204, got %d: %s", resp.Code, resp.Body.String())
	}
}

func uploadMultipart(t *testing.T, server *http.Server, groupID, userID, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/groups/"+groupID+"/files", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", userID)
	resp := httptest.NewRecorder()
	server.Handler.ServeHTTP(resp, req)
	return resp
}

func listFiles(t *testing.T, server *http.Server, groupID, userID string) (*httptest.ResponseRecorder, []FileResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/groups/"+groupID+"/files", nil)
	req.Header.Set("Authorization", userID)
	resp := httptest.NewRecorder()
	server.Handler.ServeHTTP(resp, req)

	var metas []FileResponse
	if resp.Code == http.StatusOK {
		if err := json.Unmarshal(resp.Body.Bytes(), &metas); err != nil {
			t.Fatalf("unmarshal file list: %v", err)
		}
	}
	return resp, metas
}

func TestRoutesRequireAuthorizationHeader(t *testing.T) {
	server := createTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/groups/g1/files", nil)
	resp := httptest.NewRecorder()
	server.Handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.Code)
	}
}

func TestNonMemberGetsForbidden(t *testing.T) {
	server := createTestServer(t)

	// No one is registered in g1: list, upload and download must all 403.
	resp, _ := listFiles(t, server, "g1", "stranger")
	if resp.Code != http.StatusForbidden {
		t.Errorf("list: expected status 403, got %d", resp.Code)
	}

	resp = uploadMultipart(t, server, "g1", "stranger", "a.txt", []byte("x"))
	if resp.Code != http.StatusForbidden {
		t.Errorf("upload: expected status 403, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/groups/g1/files/some-id", nil)
	req.Header.Set("Authorization", "stranger")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("download: expected status 403, got %d", rec.Code)
	}
}

func TestUploadThenList(t *testing.T) {
	server := createTestServer(t)
	registerMember(t, server, "g1", "user-1")

	resp := uploadMultipart(t, server, "g1", "user-1", "first.txt", []byte("one"))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("upload: expected status 204, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = uploadMultipart(t, server, "g1", "user-1", "a.png", []byte("two"))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("upload: expected status 204, got %d: %s", resp.Code, resp.Body.String())
	}

	listResp, metas := listFiles(t, server, "g1", "user-1")
	if listResp.Code != http.StatusOK {
		t.Fatalf("list: expected status 200, got %d", listResp.Code)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 files, got %d", len(metas))
	}
	// Newest upload first.
	if metas[0].Name != "a.png" {
		t.Errorf("expected 'a.png' first, got %q", metas[0].Name)
	}
	if metas[0].ID == "" {
		t.Error("expected non-empty file id")
	}
	if metas[1].Name != "first.txt" {
		t.Errorf("expected 'first.txt' second, got %q", metas[1].Name)
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	server := createTestServer(t)
	registerMember(t, server, "g1", "user-1")

	content := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff}
	resp := uploadMultipart(t, server, "g1", "user-1", "pic.png", content)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("upload: expected status 204, got %d", resp.Code)
	}

	_, metas := listFiles(t, server, "g1", "user-1")
	if len(metas) != 1 {
		t.Fatalf("expected 1 file, got %d", len(metas))
	}

	req := httptest.NewRequest(http.MethodGet, "/groups/g1/files/"+metas[0].ID, nil)
	req.Header.Set("Authorization", "user-1")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("download: expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Errorf("downloaded bytes differ from uploaded bytes")
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=pic.png" {
		t.Errorf("unexpected Content-Disposition: %q", got)
	}
}

func TestDownloadUnknownFile(t *testing.T) {
	server := createTestServer(t)
	registerMember(t, server, "g1", "user-1")

	req := httptest.NewRequest(http.MethodGet, "/groups/g1/files/unknown-id", nil)
	req.Header.Set("Authorization", "user-1")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestUploadImageBase64(t *testing.T) {
	server := createTestServer(t)
	registerMember(t, server, "g1", "user-1")

	raw := []byte("camera-frame")
	body, err := json.Marshal(ImageUploadRequest{
		Image:    base64.StdEncoding.EncodeToString(raw),
		FileName: "capture.png",
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/groups/g1/files", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "user-1")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rec.Code, rec.Body.String())
	}

	_, metas := listFiles(t, server, "g1", "user-1")
	if len(metas) != 1 || metas[0].Name != "capture.png" {
		t.Fatalf("expected one file named capture.png, got %+v", metas)
	}

	req = httptest.NewRequest(http.MethodGet, "/groups/g1/files/"+metas[0].ID, nil)
	req.Header.Set("Authorization", "user-1")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	if !bytes.Equal(rec.Body.Bytes(), raw) {
		t.Errorf("decoded image bytes differ from original")
	}
}

func TestUploadWithoutContent(t *testing.T) {
	server := createTestServer(t)
	registerMember(t, server, "g1", "user-1")

	// Neither a multipart file nor image+fileName.
	req := httptest.NewRequest(http.MethodPost, "/groups/g1/files", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "user-1")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterMemberIdempotent(t *testing.T) {
	server := createTestServer(t)

	registerMember(t, server, "g1", "user-1")
	registerMember(t, server, "g1", "user-1")

	resp, _ := listFiles(t, server, "g1", "user-1")
	if resp.Code != http.StatusOK {
		t.Errorf("expected status 200 after registration, got %d", resp.Code)
	}
}
