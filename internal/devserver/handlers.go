package devserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/client/upload"
)

// envelope is the response wrapper for mutating actions.
type envelope struct {
	Success    bool               `json:"success"`
	Error      string             `json:"error,omitempty"`
	User       *models.Account    `json:"user,omitempty"`
	Attachment *models.Attachment `json:"attachment,omitempty"`
}

func ok() envelope                 { return envelope{Success: true} }
func declined(msg string) envelope { return envelope{Success: false, Error: msg} }

// handleAction dispatches on the ?action= query parameter, the single entry
// point the production endpoint exposes.
func (s *Server) handleAction(c echo.Context) error {
	switch c.QueryParam("action") {
	case "login":
		return s.login(c)
	case "users":
		if c.Request().Method == http.MethodPost {
			return s.createUser(c)
		}
		return c.JSON(http.StatusOK, s.state.listAccounts())
	case "messages":
		if c.Request().Method == http.MethodPost {
			return s.send(c)
		}
		return s.messages(c)
	case "mark_read":
		return s.markRead(c)
	case "mark_all_read":
		return s.markAllRead(c)
	case "archive_message":
		return s.archive(c)
	case "acknowledge":
		return s.acknowledge(c)
	case "update_user":
		return s.updateUser(c)
	case "update_profile":
		return s.updateProfile(c)
	case "change_password":
		return s.changePassword(c)
	case "admin_reset_password":
		return s.resetPassword(c)
	case "upload":
		return s.upload(c)
	case "stats":
		return c.JSON(http.StatusOK, s.state.stats())
	default:
		return c.JSON(http.StatusNotFound, declined("unknown action"))
	}
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}

	account, found := s.state.login(req.Username, req.Password)
	if !found {
		return c.JSON(http.StatusOK, declined("invalid credentials"))
	}
	return c.JSON(http.StatusOK, envelope{Success: true, User: &account})
}

func (s *Server) messages(c echo.Context) error {
	kind := models.FolderKind(c.QueryParam("type"))
	userID := c.QueryParam("userId")
	if _, found := s.state.getAccount(userID); !found {
		return c.JSON(http.StatusNotFound, declined("unknown user"))
	}
	return c.JSON(http.StatusOK, s.state.folder(userID, kind))
}

func (s *Server) send(c echo.Context) error {
	var m models.Message
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if len(m.RecipientIDs) == 0 || m.Subject == "" {
		return c.JSON(http.StatusOK, declined("recipients and subject are required"))
	}
	s.state.send(m)
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) markRead(c echo.Context) error {
	var req struct {
		MessageID string `json:"messageId"`
		UserID    string `json:"userId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if !s.state.markRead(req.MessageID, req.UserID) {
		return c.JSON(http.StatusOK, declined("message not found"))
	}
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) markAllRead(c echo.Context) error {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if !s.state.markAllRead(req.UserID) {
		return c.JSON(http.StatusOK, declined("unknown user"))
	}
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) archive(c echo.Context) error {
	var req struct {
		MessageID  string `json:"messageId"`
		UserID     string `json:"userId"`
		IsArchived bool   `json:"isArchived"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if !s.state.setArchived(req.MessageID, req.UserID, req.IsArchived) {
		return c.JSON(http.StatusOK, declined("message not found"))
	}
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) acknowledge(c echo.Context) error {
	var req struct {
		MemoID string `json:"memoId"`
		UserID string `json:"userId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if !s.state.acknowledge(req.MemoID, req.UserID) {
		return c.JSON(http.StatusOK, declined("memo not found"))
	}
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) createUser(c echo.Context) error {
	var a models.Account
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if a.Name == "" || a.Username == "" {
		return c.JSON(http.StatusOK, declined("name and username are required"))
	}
	created, accepted := s.state.createAccount(a)
	if !accepted {
		return c.JSON(http.StatusOK, declined("username is taken"))
	}
	return c.JSON(http.StatusOK, envelope{Success: true, User: &created})
}

func (s *Server) updateUser(c echo.Context) error {
	var req struct {
		models.Account
		AdminID string `json:"adminId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	admin, found := s.state.getAccount(req.AdminID)
	if !found || !admin.IsAdmin() {
		return c.JSON(http.StatusOK, declined("not authorized"))
	}
	if !s.state.updateAccount(req.Account) {
		return c.JSON(http.StatusOK, declined("user not found"))
	}
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) updateProfile(c echo.Context) error {
	var req struct {
		UserID string `json:"userId"`
		Avatar string `json:"avatar"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if !s.state.updateAvatar(req.UserID, req.Avatar) {
		return c.JSON(http.StatusOK, declined("user not found"))
	}
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) changePassword(c echo.Context) error {
	var req struct {
		UserID      string `json:"userId"`
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if !s.state.changePassword(req.UserID, req.OldPassword, req.NewPassword) {
		return c.JSON(http.StatusOK, declined("current password is incorrect"))
	}
	return c.JSON(http.StatusOK, ok())
}

func (s *Server) resetPassword(c echo.Context) error {
	var req struct {
		TargetUserID string `json:"targetUserId"`
		NewPassword  string `json:"newPassword"`
		AdminID      string `json:"adminId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, declined("malformed request"))
	}
	if !s.state.resetPassword(req.TargetUserID, req.NewPassword, req.AdminID) {
		return c.JSON(http.StatusOK, declined("not authorized"))
	}
	return c.JSON(http.StatusOK, ok())
}

// upload enforces the same size and type limits the client checks, so a
// bypassing caller gets the same answer.
func (s *Server) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, declined("missing file"))
	}
	if fh.Size > upload.MaxSize {
		return c.JSON(http.StatusRequestEntityTooLarge, declined("file exceeds the size limit"))
	}
	coarse := models.ClassifyFile(fh.Filename)
	if !upload.Allowed(coarse) {
		return c.JSON(http.StatusOK, declined("file type is not allowed"))
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, declined("cannot read upload"))
	}
	defer src.Close()

	stored := uuid.NewString() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(s.uploadDir, stored))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, declined("cannot store upload"))
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, declined("cannot store upload"))
	}

	attachment := models.Attachment{
		ID:   uuid.NewString(),
		Name: fh.Filename,
		Size: models.SizeLabel(fh.Size),
		Type: coarse,
		URL:  s.conf.PublicBaseURL + "/" + stored,
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Attachment: &attachment})
}
