package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
)

// ListAccounts returns the staff directory. A reachable remote is
// authoritative and its answer replaces the mirrored directory wholesale;
// stored credentials survive the replacement untouched.
func (g *Gateway) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if _, err := g.CurrentAccount(); err != nil {
		return nil, err
	}

	var accounts []models.Account
	err := g.tryRemote(ctx, readTimeout, func(rctx context.Context) error {
		var err error
		accounts, err = g.remote.ListAccounts(rctx)
		return err
	})
	switch {
	case err == nil:
		if err := g.mirror.SaveDirectory(ctx, accounts, nil); err != nil {
			g.log.Warn(ctx, "mirror directory save failed", "err", err)
		}
		return accounts, nil

	case errors.Is(err, common.ErrUnavailable):
		return g.mirror.Accounts.List(ctx, false)

	default:
		return nil, err
	}
}

func validateAccount(a models.Account) error {
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("%w: name and username are required", common.ErrValidation)
	}
	if a.Role == "" || a.Department == "" {
		return fmt.Errorf("%w: role and department are required", common.ErrValidation)
	}
	return nil
}

// CreateAccount adds a staff account with the well-known default credential.
// Administrators only; usernames are unique case-insensitively.
func (g *Gateway) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	actor, err := g.CurrentAccount()
	if err != nil {
		return models.Account{}, err
	}
	if !actor.IsAdmin() {
		return models.Account{}, common.ErrUnauthenticated
	}
	if err := validateAccount(a); err != nil {
		return models.Account{}, err
	}
	if _, err := g.mirror.Accounts.GetByUsername(ctx, a.Username); err == nil {
		return models.Account{}, fmt.Errorf("%w: username %q is taken", common.ErrValidation, a.Username)
	} else if !errors.Is(err, common.ErrNotFound) {
		return models.Account{}, err
	}

	if a.ID == "" {
		a.ID = newID()
	}

	err = g.tryRemote(ctx, writeTimeout, func(rctx context.Context) error {
		return g.remote.CreateAccount(rctx, a)
	})
	if err != nil && !errors.Is(err, common.ErrUnavailable) {
		return models.Account{}, err
	}

	if err := g.mirror.SaveAccount(ctx, a, hashCredential(common.DefaultPassword)); err != nil {
		return models.Account{}, err
	}
	g.audit(ctx, actor.ID, models.AuditAccountCreate,
		fmt.Sprintf("created account %s (%s)", a.Username, a.Role), originLabel(g.Connected()))
	return a, nil
}

// UpdateAccount modifies a directory entry. Administrators only; a role
// change leaves an audit trace.
func (g *Gateway) UpdateAccount(ctx context.Context, a models.Account) error {
	actor, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return common.ErrUnauthenticated
	}
	if err := validateAccount(a); err != nil {
		return err
	}

	prev, err := g.mirror.Accounts.Get(ctx, a.ID)
	if err != nil {
		return err
	}

	err = g.tryRemote(ctx, writeTimeout, func(rctx context.Context) error {
		return g.remote.UpdateAccount(rctx, a, actor.ID)
	})
	if err != nil && !errors.Is(err, common.ErrUnavailable) {
		return err
	}

	if err := g.mirror.Accounts.Upsert(ctx, a); err != nil {
		return err
	}
	if prev.Role != a.Role {
		g.audit(ctx, actor.ID, models.AuditRoleChange,
			fmt.Sprintf("%s: %s -> %s", a.Username, prev.Role, a.Role), originLabel(g.Connected()))
	}
	return nil
}

// UpdateAvatar sets the session account's avatar URL on both legs.
func (g *Gateway) UpdateAvatar(ctx context.Context, avatarURL string) error {
	account, err := g.CurrentAccount()
	if err != nil {
		return err
	}

	err = g.tryRemote(ctx, writeTimeout, func(rctx context.Context) error {
		return g.remote.UpdateAvatar(rctx, account.ID, avatarURL)
	})
	if err != nil && !errors.Is(err, common.ErrUnavailable) {
		return err
	}

	account.Avatar = avatarURL
	if err := g.mirror.Accounts.Upsert(ctx, account); err != nil {
		return err
	}
	g.bindSession(account)
	return nil
}

// RemoveAccount soft-removes an account from the mirrored directory. The
// record stays on disk so existing messages keep resolving their sender;
// the next directory pull restores the entry if the remote still lists it.
func (g *Gateway) RemoveAccount(ctx context.Context, accountID string) error {
	actor, err := g.CurrentAccount()
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return common.ErrUnauthenticated
	}
	if accountID == actor.ID {
		return fmt.Errorf("%w: cannot remove the signed-in account", common.ErrValidation)
	}
	return g.mirror.Accounts.SoftRemove(ctx, accountID)
}
