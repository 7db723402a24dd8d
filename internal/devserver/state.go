// Package devserver is a self-contained, in-memory implementation of the
// intramail action API. It exists for local development and integration
// testing of the client: same wire contract as the production endpoint, no
// external dependencies beyond a directory for uploaded files.
package devserver

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
)

type storedAccount struct {
	account  models.Account
	password string
}

type storedMessage struct {
	payload      models.Message
	readBy       []string
	archivedBy   []string
	acknowledged []string
}

// State is the in-memory dataset behind the handlers. Everything is lost on
// restart, which is the point: every run starts from the same fixture the
// client's mirror seeds from.
type State struct {
	mu       sync.Mutex
	accounts map[string]*storedAccount
	messages []*storedMessage
}

func NewState() *State {
	s := &State{accounts: map[string]*storedAccount{}}

	for _, a := range []models.Account{
		{ID: "admin_shammah", Name: "Shammah Sawa", Username: "shammah",
			Email: "shammah@fmchong.local", Role: models.RoleSuperAdmin,
			Department: models.DeptICT, IsOnline: true},
		{ID: "u1", Name: "Dr. Ibrahim Musa", Username: "cmd",
			Email: "cmd@fmchong.local", Role: models.RoleManagement,
			Department: models.DeptManagement, IsOnline: true},
		{ID: "u2", Name: "Sarah Okon", Username: "sarah",
			Email: "sarah@fmchong.local", Role: models.RoleNurse,
			Department: models.DeptNursing},
	} {
		s.accounts[a.ID] = &storedAccount{account: a, password: common.DefaultPassword}
	}

	now := time.Now()
	s.messages = append(s.messages,
		&storedMessage{payload: models.Message{
			ID: "m1", SenderID: "u1", RecipientIDs: []string{"admin_shammah"},
			RecipientDetails: []models.RecipientStatus{{UserID: "admin_shammah", Name: "Shammah Sawa"}},
			Subject:          "Welcome to Intramail",
			Body:             "Welcome to the new offline-first local messaging system.",
			Priority:         models.PriorityNormal, CreatedAt: now,
			ThreadID: "t1", Kind: models.KindEmail,
		}},
		&storedMessage{payload: models.Message{
			ID: "memo1", SenderID: "u1", RecipientIDs: []string{models.BroadcastAllStaff},
			Subject:  "CIRCULAR: System Maintenance",
			Body:     "The servers will undergo maintenance this weekend.",
			Priority: models.PriorityUrgent, CreatedAt: now,
			ThreadID: "t_memo1", Kind: models.KindMemo,
			RequiresAcknowledgement: true,
		}},
	)
	return s
}

func (s *State) login(username, password string) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sa := range s.accounts {
		if strings.EqualFold(sa.account.Username, username) && sa.password == password {
			return sa.account, true
		}
	}
	return models.Account{}, false
}

func (s *State) listAccounts() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAccountsLocked()
}

func (s *State) getAccount(id string) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sa, ok := s.accounts[id]
	if !ok {
		return models.Account{}, false
	}
	return sa.account, true
}

// view projects a stored message for one account, mirroring what the
// production endpoint returns per user.
func (m *storedMessage) view(accountID string) models.Message {
	out := m.payload
	out.IsRead = slices.Contains(m.readBy, accountID)
	out.IsArchived = slices.Contains(m.archivedBy, accountID)
	if out.Kind == models.KindMemo {
		out.AcknowledgedBy = append([]string(nil), m.acknowledged...)
	}
	for i := range out.RecipientDetails {
		out.RecipientDetails[i].IsRead = slices.Contains(m.readBy, out.RecipientDetails[i].UserID)
	}
	return out
}

func (s *State) folder(accountID string, kind models.FolderKind) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil
	}
	dept := account.account.Department

	result := []models.Message{}
	for _, m := range s.messages {
		archived := slices.Contains(m.archivedBy, accountID)
		switch {
		case kind == models.FolderMemo:
			if m.payload.Kind != models.KindMemo {
				continue
			}
		case m.payload.Kind != models.KindEmail:
			continue
		case kind == models.FolderInbox:
			if !m.payload.AddressedTo(accountID, dept) || archived {
				continue
			}
		case kind == models.FolderSent:
			if m.payload.SenderID != accountID {
				continue
			}
		case kind == models.FolderArchive:
			if !m.payload.AddressedTo(accountID, dept) || !archived {
				continue
			}
		}
		result = append(result, m.view(accountID))
	}
	slices.SortStableFunc(result, func(a, b models.Message) int {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if b.CreatedAt.After(a.CreatedAt) {
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result
}

func (s *State) send(m models.Message) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.ThreadID == "" {
		m.ThreadID = m.ID
	}
	m.AcknowledgedBy = nil
	s.messages = append(s.messages, &storedMessage{payload: m})
	return m
}

func (s *State) find(id string) *storedMessage {
	for _, m := range s.messages {
		if m.payload.ID == id {
			return m
		}
	}
	return nil
}

func (s *State) markRead(messageID, accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(messageID)
	if m == nil {
		return false
	}
	if !slices.Contains(m.readBy, accountID) {
		m.readBy = append(m.readBy, accountID)
	}
	return true
}

func (s *State) markAllRead(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return false
	}
	for _, m := range s.messages {
		if m.payload.Kind != models.KindEmail {
			continue
		}
		if !m.payload.AddressedTo(accountID, account.account.Department) {
			continue
		}
		if !slices.Contains(m.readBy, accountID) {
			m.readBy = append(m.readBy, accountID)
		}
	}
	return true
}

func (s *State) setArchived(messageID, accountID string, archived bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(messageID)
	if m == nil {
		return false
	}
	i := slices.Index(m.archivedBy, accountID)
	switch {
	case archived && i < 0:
		m.archivedBy = append(m.archivedBy, accountID)
	case !archived && i >= 0:
		m.archivedBy = slices.Delete(m.archivedBy, i, i+1)
	}
	return true
}

func (s *State) acknowledge(memoID, accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(memoID)
	if m == nil || m.payload.Kind != models.KindMemo {
		return false
	}
	if !slices.Contains(m.acknowledged, accountID) {
		m.acknowledged = append(m.acknowledged, accountID)
	}
	return true
}

func (s *State) createAccount(a models.Account) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sa := range s.accounts {
		if strings.EqualFold(sa.account.Username, a.Username) {
			return models.Account{}, false
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.accounts[a.ID] = &storedAccount{account: a, password: common.DefaultPassword}
	return a, true
}

func (s *State) updateAccount(a models.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sa, ok := s.accounts[a.ID]
	if !ok {
		return false
	}
	sa.account = a
	return true
}

func (s *State) updateAvatar(accountID, avatar string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sa, ok := s.accounts[accountID]
	if !ok {
		return false
	}
	sa.account.Avatar = avatar
	return true
}

func (s *State) changePassword(accountID, oldPassword, newPassword string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sa, ok := s.accounts[accountID]
	if !ok || sa.password != oldPassword {
		return false
	}
	sa.password = newPassword
	return true
}

func (s *State) resetPassword(targetID, newPassword, adminID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.accounts[adminID]
	if !ok || !admin.account.IsAdmin() {
		return false
	}
	target, ok := s.accounts[targetID]
	if !ok {
		return false
	}
	target.password = newPassword
	return true
}

func (s *State) stats() models.DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	byRole := map[string]int{}
	order := []string{}
	for _, a := range s.listAccountsLocked() {
		if byRole[string(a.Role)] == 0 {
			order = append(order, string(a.Role))
		}
		byRole[string(a.Role)]++
	}
	dist := make([]models.RoleCount, 0, len(order))
	for _, role := range order {
		dist = append(dist, models.RoleCount{Name: role, Value: byRole[role]})
	}

	var messages, memos int
	for _, m := range s.messages {
		if m.payload.Kind == models.KindMemo {
			memos++
		} else {
			messages++
		}
	}

	return models.DashboardStats{
		ActiveUsers:       len(s.accounts),
		TotalMessages:     messages,
		TotalMemos:        memos,
		SystemHealth:      "Operational",
		RolesDistribution: dist,
	}
}

func (s *State) listAccountsLocked() []models.Account {
	result := make([]models.Account, 0, len(s.accounts))
	for _, sa := range s.accounts {
		result = append(result, sa.account)
	}
	slices.SortFunc(result, func(a, b models.Account) int {
		return strings.Compare(a.ID, b.ID)
	})
	return result
}
