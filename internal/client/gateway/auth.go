package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fmchong/intramail/internal/client/mirror"
	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
	"github.com/fmchong/intramail/internal/cryptox"
)

const minPasswordLen = 8

func newID() string { return uuid.NewString() }

func hashCredential(password string) mirror.Credential {
	salt, verifier := cryptox.HashCredential(password)
	return mirror.Credential{Salt: salt, Verifier: verifier}
}

// Login authenticates the user and binds the session account. When the
// remote answers it is the authority, and the verified credential is cached
// in the mirror so the same user can log in later while offline. A
// credential rejection never falls back to the mirror.
func (g *Gateway) Login(ctx context.Context, username, password string) (models.Account, error) {
	if username == "" || password == "" {
		return models.Account{}, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	var account models.Account
	err := g.tryRemote(ctx, writeTimeout, func(rctx context.Context) error {
		var err error
		account, err = g.remote.Login(rctx, username, password)
		return err
	})
	switch {
	case err == nil:
		if err := g.mirror.SaveAccount(ctx, account, hashCredential(password)); err != nil {
			return models.Account{}, err
		}
		g.bindSession(account)
		g.audit(ctx, account.ID, models.AuditLogin, "login via remote", "remote")
		return account, nil

	case errors.Is(err, common.ErrUnavailable):
		return g.loginLocal(ctx, username, password)

	default:
		g.audit(ctx, username, models.AuditLoginFailed, "remote rejected credentials", "remote")
		return models.Account{}, err
	}
}

// loginLocal is the mirror-only fallback path.
func (g *Gateway) loginLocal(ctx context.Context, username, password string) (models.Account, error) {
	account, err := g.mirror.Accounts.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return models.Account{}, common.ErrUnauthenticated
	}
	if err != nil {
		return models.Account{}, err
	}

	cred, err := g.mirror.Credential(ctx, account.ID)
	if errors.Is(err, common.ErrNotFound) {
		return models.Account{}, common.ErrUnauthenticated
	}
	if err != nil {
		return models.Account{}, err
	}

	if !cryptox.VerifyCredential(password, cred.Salt, cred.Verifier) {
		g.audit(ctx, account.ID, models.AuditLoginFailed, "mirror rejected credentials", "local")
		return models.Account{}, common.ErrUnauthenticated
	}

	g.bindSession(account)
	g.audit(ctx, account.ID, models.AuditLogin, "login via mirror", "local")
	return account, nil
}

// UsingDefaultPassword reports whether the session account still carries the
// well-known default credential, so the UI can nag about changing it.
func (g *Gateway) UsingDefaultPassword(ctx context.Context) bool {
	account, err := g.CurrentAccount()
	if err != nil {
		return false
	}
	cred, err := g.mirror.Credential(ctx, account.ID)
	if err != nil {
		return false
	}
	return cryptox.VerifyCredential(common.DefaultPassword, cred.Salt, cred.Verifier)
}

// ChangePassword rotates the session account's credential. When connected
// the remote and the mirror's credential map are updated together; offline
// only the mirror changes and the remote is left to its own secret.
func (g *Gateway) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	account, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: new password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}

	err = g.tryRemote(ctx, writeTimeout, func(rctx context.Context) error {
		return g.remote.ChangePassword(rctx, account.ID, oldPassword, newPassword)
	})
	switch {
	case err == nil:
		// remote accepted; keep the offline credential in step

	case errors.Is(err, common.ErrUnavailable):
		cred, err := g.mirror.Credential(ctx, account.ID)
		if err != nil {
			return common.ErrUnauthenticated
		}
		if !cryptox.VerifyCredential(oldPassword, cred.Salt, cred.Verifier) {
			return common.ErrUnauthenticated
		}

	default:
		return err
	}

	if err := g.mirror.SaveAccount(ctx, account, hashCredential(newPassword)); err != nil {
		return err
	}
	g.audit(ctx, account.ID, models.AuditPasswordReset, "password changed by owner", originLabel(g.Connected()))
	return nil
}

// AdminResetPassword sets a new credential for another account. Restricted
// to administrative roles.
func (g *Gateway) AdminResetPassword(ctx context.Context, targetID, newPassword string) error {
	actor, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return common.ErrUnauthenticated
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: new password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}

	target, err := g.mirror.Accounts.Get(ctx, targetID)
	if err != nil {
		return err
	}

	err = g.tryRemote(ctx, writeTimeout, func(rctx context.Context) error {
		return g.remote.AdminResetPassword(rctx, targetID, newPassword, actor.ID)
	})
	if err != nil && !errors.Is(err, common.ErrUnavailable) {
		return err
	}

	if err := g.mirror.SaveAccount(ctx, target, hashCredential(newPassword)); err != nil {
		return err
	}
	g.audit(ctx, actor.ID, models.AuditPasswordReset,
		fmt.Sprintf("password reset for %s", targetID), originLabel(g.Connected()))
	return nil
}

func originLabel(connected bool) string {
	if connected {
		return "remote"
	}
	return "local"
}
