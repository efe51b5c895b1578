// Package files talks to the file exchange backend and projects the
// shared file list into the client state store. Identity and group
// membership come from the state snapshot; every request carries the
// calling user id in the Authorization header.
package files

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/client/state"
)

var (
	// ErrNoSession means the snapshot holds no user or group id yet.
	ErrNoSession = errors.New("files: no session identity or group")
	// ErrForbidden maps the backend's membership rejection.
	ErrForbidden = errors.New("files: not a member of the group")
	// ErrNotFound maps the backend's unknown-file response.
	ErrNotFound = errors.New("files: file not found")
)

// Client is the HTTP client side of the file exchange.
type Client struct {
	baseURL string
	http    *http.Client
	store   *state.Store
	log     *zerolog.Logger

	mu         sync.Mutex
	registered bool
}

// New creates a file exchange client against the given backend base URL.
func New(baseURL string, httpClient *http.Client, store *state.Store, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		store:   store,
		log:     logger,
	}
}

type tokenResponse struct {
	Value struct {
		Token     string `json:"token"`
		ExpiresOn string `json:"expiresOn"`
		User      struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"value"`
}

type fileResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UploadDateTime string `json:"uploadDateTime"`
}

// FetchToken requests a fresh calling identity from the backend and
// records it in state.
func (c *Client) FetchToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/userToken", nil)
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch user token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	c.log.Debug().Str("user_id", body.Value.User.ID).Msg("backend identity issued")
	c.store.Dispatch(state.IdentitySet{UserID: body.Value.User.ID})
	return nil
}

// Register announces the current user as a group member. It runs at
// most once per client; later calls are no-ops.
func (c *Client) Register(ctx context.Context) error {
	c.mu.Lock()
	if c.registered {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	groupID, userID, err := c.session()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.groupURL(groupID, "user"), nil)
	if err != nil {
		return fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Authorization", userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("register member: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	c.mu.Lock()
	c.registered = true
	c.mu.Unlock()
	c.log.Info().Str("group_id", groupID).Msg("registered as group member")
	return nil
}

// Refresh pulls the group's file list into state. Files whose name
// carries an image extension are downloaded right away so previews can
// render without a separate request.
func (c *Client) Refresh(ctx context.Context) error {
	groupID, userID, err := c.session()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.groupURL(groupID, "files"), nil)
	if err != nil {
		return fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Authorization", userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var list []fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("decode file list: %w", err)
	}

	metas := make([]state.FileMetadata, 0, len(list))
	for _, f := range list {
		uploaded, perr := time.Parse(time.RFC3339, f.UploadDateTime)
		if perr != nil {
			c.log.Warn().Err(perr).Str("file_id", f.ID).Msg("unparseable upload timestamp")
		}
		metas = append(metas, state.FileMetadata{ID: f.ID, Name: f.Name, UploadDateTime: uploaded})
	}
	c.store.Dispatch(state.FilesListed{Files: metas})

	for _, meta := range metas {
		if !isImageName(meta.Name) {
			continue
		}
		if rec, ok := c.store.Snapshot().FileByID(meta.ID); ok && rec.Phase() != state.FilePhaseListed {
			continue
		}
		if err := c.Download(ctx, meta.ID); err != nil {
			c.log.Warn().Err(err).Str("file_id", meta.ID).Msg("eager image download failed")
		}
	}
	return nil
}

// Download fetches a file's bytes and attaches them to its state
// record. Once started the transfer runs to completion even when the
// caller's context is cancelled.
func (c *Client) Download(ctx context.Context, fileID string) error {
	groupID, userID, err := c.session()
	if err != nil {
		return err
	}

	c.store.Dispatch(state.FileDownloadStarted{ID: fileID})

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet,
		c.groupURL(groupID, "files", fileID), nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Authorization", userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read file content: %w", err)
	}

	c.store.Dispatch(state.FileContentResolved{ID: fileID, Content: content})
	return nil
}

// Upload sends a file as multipart form data.
func (c *Client) Upload(ctx context.Context, name string, content []byte) error {
	groupID, userID, err := c.session()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.groupURL(groupID, "files"), &buf)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", userID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}
	c.log.Info().Str("group_id", groupID).Str("name", name).Msg("file uploaded")
	return nil
}

// UploadImage sends a base64 encoded image as a JSON upload.
func (c *Client) UploadImage(ctx context.Context, name, imageBase64 string) error {
	groupID, userID, err := c.session()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"image":    imageBase64,
		"fileName": name,
	})
	if err != nil {
		return fmt.Errorf("encode image payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.groupURL(groupID, "files"),
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build image upload request: %w", err)
	}
	req.Header.Set("Authorization", userID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}
	c.log.Info().Str("group_id", groupID).Str("name", name).Msg("image uploaded")
	return nil
}

func (c *Client) session() (groupID, userID string, err error) {
	snap := c.store.Snapshot()
	if snap.GroupID == "" || snap.UserID == "" {
		c.log.Warn().Str("group_id", snap.GroupID).Str("user_id", snap.UserID).
			Msg("file request without session context")
		return "", "", ErrNoSession
	}
	return snap.GroupID, snap.UserID, nil
}

func (c *Client) groupURL(groupID string, parts ...string) string {
	return c.baseURL + "/groups/" + groupID + "/" + strings.Join(parts, "/")
}

func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("files: backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func isImageName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}
