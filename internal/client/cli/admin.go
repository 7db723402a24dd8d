package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fmchong/intramail/internal/client/models"
)

// Users lists the staff directory.
func (a *App) Users(ctx context.Context) error {
	accounts, err := a.gw.ListAccounts(ctx)
	if err != nil {
		printlnFn("Directory fetch failed:", err)
		return err
	}
	for _, acc := range accounts {
		printlnFn(fmt.Sprintf("%-14s %-24s %-22s %s", acc.ID, acc.Name, acc.Role, acc.Department))
	}
	return nil
}

// AddUser creates a staff account with the default password. Administrators
// only; the gateway enforces the role check.
func (a *App) AddUser(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Full name", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Role", os.Stdout)
	if err != nil {
		return err
	}
	department, err := getSimpleText(a.reader, "Department", os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.gw.CreateAccount(ctx, models.Account{
		Name:       name,
		Username:   username,
		Email:      email,
		Role:       models.Role(role),
		Department: models.Department(department),
	})
	if err != nil {
		printlnFn("Create failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Created %s (%s); they sign in with the default password.", created.Username, created.ID))
	return nil
}

// Stats prints the dashboard aggregates.
func (a *App) Stats(ctx context.Context) error {
	stats, err := a.gw.FetchStats(ctx)
	if err != nil {
		printlnFn("Stats fetch failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Active users: %d | Messages: %d | Memos: %d | Health: %s",
		stats.ActiveUsers, stats.TotalMessages, stats.TotalMemos, stats.SystemHealth))
	for _, rc := range stats.RolesDistribution {
		printlnFn(fmt.Sprintf("  %-24s %d", rc.Name, rc.Value))
	}
	return nil
}

// Audit prints the locally recorded security log, newest first.
func (a *App) Audit(ctx context.Context) error {
	trail, err := a.gw.AuditTrail(ctx)
	if err != nil {
		printlnFn("Audit fetch failed:", err)
		return err
	}
	for _, e := range trail {
		printlnFn(fmt.Sprintf("%s %-14s %-14s %s",
			e.Timestamp.Format("2006-01-02 15:04"), e.Action, e.AccountID, e.Details))
	}
	return nil
}
