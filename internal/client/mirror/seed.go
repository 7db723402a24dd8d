package mirror

import (
	"context"
	"time"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
	"github.com/fmchong/intramail/internal/cryptox"
)

// seedAccounts is the fixed directory installed on first run so the client
// is usable before it has ever seen the remote service.
func seedAccounts() []models.Account {
	return []models.Account{
		{
			ID:         "admin_shammah",
			Name:       "Shammah Sawa",
			Username:   "shammah",
			Email:      "shammah@fmchong.local",
			Role:       models.RoleSuperAdmin,
			Department: models.DeptICT,
			Avatar:     "https://ui-avatars.com/api/?name=Shammah+Sawa&background=059669&color=fff",
			IsOnline:   true,
		},
		{
			ID:         "u1",
			Name:       "Dr. Ibrahim Musa",
			Username:   "cmd",
			Email:      "cmd@fmchong.local",
			Role:       models.RoleManagement,
			Department: models.DeptManagement,
			Avatar:     "https://ui-avatars.com/api/?name=Ibrahim+Musa&background=random",
			IsOnline:   true,
		},
		{
			ID:         "u2",
			Name:       "Sarah Okon",
			Username:   "sarah",
			Email:      "sarah@fmchong.local",
			Role:       models.RoleNurse,
			Department: models.DeptNursing,
			Avatar:     "https://ui-avatars.com/api/?name=Sarah+Okon&background=random",
		},
	}
}

// seed installs the first-run state when the directory is empty: the fixed
// account set with the default credential, one welcome message, and one
// maintenance memo.
func (s *Store) seed(ctx context.Context) error {
	accounts, err := s.Accounts.List(ctx, true)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}

	seeded := seedAccounts()
	creds := make(map[string]Credential, len(seeded))
	for _, a := range seeded {
		salt, verifier := cryptox.HashCredential(common.DefaultPassword)
		creds[a.ID] = Credential{Salt: salt, Verifier: verifier}
	}
	if err := s.SaveDirectory(ctx, seeded, creds); err != nil {
		return err
	}

	now := time.Now()
	welcome := models.Message{
		ID:           "m1",
		SenderID:     "u1",
		RecipientIDs: []string{"admin_shammah"},
		RecipientDetails: []models.RecipientStatus{
			{UserID: "admin_shammah", Name: "Shammah Sawa"},
		},
		Subject:   "Welcome to Intramail",
		Body:      "Welcome to the new offline-first local messaging system.",
		Priority:  models.PriorityNormal,
		CreatedAt: now,
		ThreadID:  "t1",
		Kind:      models.KindEmail,
	}
	if err := s.Messages.Insert(ctx, welcome); err != nil {
		return err
	}

	memo := models.Message{
		ID:                      "memo1",
		SenderID:                "u1",
		RecipientIDs:            []string{models.BroadcastAllStaff},
		Subject:                 "CIRCULAR: System Maintenance",
		Body:                    "The servers will undergo maintenance this weekend.",
		Priority:                models.PriorityUrgent,
		CreatedAt:               now,
		ThreadID:                "t_memo1",
		Kind:                    models.KindMemo,
		RequiresAcknowledgement: true,
	}
	if err := s.Messages.Insert(ctx, memo); err != nil {
		return err
	}

	s.log.Info(ctx, "mirror seeded", "accounts", len(seeded))
	return nil
}
