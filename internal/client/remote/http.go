package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
)

// HTTPClient implements Client against the action endpoint. Timeouts are the
// caller's responsibility (per-operation context deadlines); the embedded
// http.Client carries no global timeout of its own.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

// apiResponse is the envelope the action API wraps mutation results in.
type apiResponse struct {
	Success    bool               `json:"success"`
	Error      string             `json:"error,omitempty"`
	User       *models.Account    `json:"user,omitempty"`
	Attachment *models.Attachment `json:"attachment,omitempty"`
}

func (c *HTTPClient) actionURL(action string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("action", action)
	return c.baseURL + "?" + query.Encode()
}

// do issues the request and decodes the JSON response into out (if non-nil).
// Transport errors, non-JSON replies, and server-side failures all collapse
// into common.ErrUnavailable; client-addressable statuses keep their own
// sentinel so the gateway does not treat them as connectivity loss.
func (c *HTTPClient) do(ctx context.Context, method, rawURL string, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", common.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrUnauthenticated
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.TrimSpace(string(raw)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: http %d", common.ErrUnavailable, resp.StatusCode)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return fmt.Errorf("%w: unexpected content type %q", common.ErrUnavailable, resp.Header.Get("Content-Type"))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", common.ErrUnavailable, err)
	}
	return nil
}

func (c *HTTPClient) getJSON(ctx context.Context, action string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.actionURL(action, query), "", nil, out)
}

func (c *HTTPClient) postJSON(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, c.actionURL(action, nil), "application/json", bytes.NewReader(body), out)
}

// postEnvelope posts and checks the {success, error} envelope, mapping a
// declined request to onFailure.
func (c *HTTPClient) postEnvelope(ctx context.Context, action string, payload any, onFailure error) error {
	var resp apiResponse
	if err := c.postJSON(ctx, action, payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != "" {
			return fmt.Errorf("%w: %s", onFailure, resp.Error)
		}
		return onFailure
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var users []models.Account
	return c.getJSON(ctx, "users", nil, &users)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.Account, error) {
	var resp apiResponse
	err := c.postJSON(ctx, "login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return models.Account{}, err
	}
	if !resp.Success || resp.User == nil {
		return models.Account{}, common.ErrUnauthenticated
	}
	return *resp.User, nil
}

func (c *HTTPClient) FetchFolder(ctx context.Context, accountID string, kind models.FolderKind) ([]models.Message, error) {
	query := url.Values{}
	query.Set("type", string(kind))
	query.Set("userId", accountID)

	var msgs []models.Message
	if err := c.getJSON(ctx, "messages", query, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *HTTPClient) Send(ctx context.Context, m models.Message) error {
	return c.postEnvelope(ctx, "messages", m, common.ErrValidation)
}

func (c *HTTPClient) MarkRead(ctx context.Context, messageID, accountID string) error {
	return c.postEnvelope(ctx, "mark_read", map[string]string{
		"messageId": messageID,
		"userId":    accountID,
	}, common.ErrNotFound)
}

func (c *HTTPClient) MarkAllRead(ctx context.Context, accountID string) error {
	return c.postEnvelope(ctx, "mark_all_read", map[string]string{
		"userId": accountID,
	}, common.ErrNotFound)
}

func (c *HTTPClient) ToggleArchive(ctx context.Context, messageID, accountID string, archived bool) error {
	return c.postEnvelope(ctx, "archive_message", map[string]any{
		"messageId":  messageID,
		"userId":     accountID,
		"isArchived": archived,
	}, common.ErrNotFound)
}

func (c *HTTPClient) Acknowledge(ctx context.Context, memoID, accountID string) error {
	return c.postEnvelope(ctx, "acknowledge", map[string]string{
		"memoId": memoID,
		"userId": accountID,
	}, common.ErrNotFound)
}

func (c *HTTPClient) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.getJSON(ctx, "users", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, a models.Account) error {
	return c.postEnvelope(ctx, "users", a, common.ErrValidation)
}

func (c *HTTPClient) UpdateAccount(ctx context.Context, a models.Account, actorID string) error {
	payload := struct {
		models.Account
		AdminID string `json:"adminId"`
	}{Account: a, AdminID: actorID}
	return c.postEnvelope(ctx, "update_user", payload, common.ErrNotFound)
}

func (c *HTTPClient) UpdateAvatar(ctx context.Context, accountID, avatarURL string) error {
	return c.postEnvelope(ctx, "update_profile", map[string]string{
		"userId": accountID,
		"avatar": avatarURL,
	}, common.ErrNotFound)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	return c.postEnvelope(ctx, "change_password", map[string]string{
		"userId":      accountID,
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}, common.ErrUnauthenticated)
}

func (c *HTTPClient) AdminResetPassword(ctx context.Context, targetID, newPassword, actorID string) error {
	return c.postEnvelope(ctx, "admin_reset_password", map[string]string{
		"targetUserId": targetID,
		"newPassword":  newPassword,
		"adminId":      actorID,
	}, common.ErrNotFound)
}

func (c *HTTPClient) UploadAttachment(ctx context.Context, filename string, data []byte) (models.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return models.Attachment{}, err
	}
	if _, err := part.Write(data); err != nil {
		return models.Attachment{}, err
	}
	if err := mw.Close(); err != nil {
		return models.Attachment{}, err
	}

	var resp apiResponse
	if err := c.do(ctx, http.MethodPost, c.actionURL("upload", nil), mw.FormDataContentType(), &buf, &resp); err != nil {
		return models.Attachment{}, err
	}
	if !resp.Success || resp.Attachment == nil {
		return models.Attachment{}, fmt.Errorf("%w: upload rejected: %s", common.ErrValidation, resp.Error)
	}
	return *resp.Attachment, nil
}

func (c *HTTPClient) FetchStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.getJSON(ctx, "stats", nil, &stats); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
