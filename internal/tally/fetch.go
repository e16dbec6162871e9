package tally

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/tallymis/internal/audit"
	"github.com/cleared-dev/tallymis/internal/log"
	"github.com/cleared-dev/tallymis/internal/model"
)

// Companies lists the companies open in the bookkeeping system, sorted.
func (c *Client) Companies(ctx context.Context) ([]string, error) {
	data, err := c.post(ctx, "companies", companiesRequest)
	if err != nil {
		return nil, err
	}
	return parseCompanies(data)
}

// DayBook fetches every voucher dated from..to inclusive.
func (c *Client) DayBook(ctx context.Context, company string, from, to time.Time) ([]model.Voucher, []audit.Issue, error) {
	data, err := c.post(ctx, "day book", dayBookRequest(company, from, to))
	if err != nil {
		return nil, nil, err
	}
	return parseDayBook(data)
}

// Ledgers fetches the ledger masters with their raw opening balances.
func (c *Client) Ledgers(ctx context.Context, company string) ([]model.RawLedger, error) {
	data, err := c.post(ctx, "ledgers", ledgersRequest(company))
	if err != nil {
		return nil, err
	}
	return parseLedgers(data)
}

// Groups fetches the group masters.
func (c *Client) Groups(ctx context.Context, company string) ([]model.Group, []audit.Issue, error) {
	data, err := c.post(ctx, "groups", groupsRequest(company))
	if err != nil {
		return nil, nil, err
	}
	return parseGroups(data)
}

// Fetch takes a full snapshot of one company: groups, ledgers and the day
// book from..to, requested concurrently. Any request failing fails the
// snapshot; row-level problems come back as issues.
func (c *Client) Fetch(ctx context.Context, company string, from, to time.Time) (model.RawSnapshot, []audit.Issue, error) {
	snap := model.RawSnapshot{Company: company}
	var groupIssues, voucherIssues []audit.Issue

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Groups, groupIssues, err = c.Groups(ctx, company)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Ledgers, err = c.Ledgers(ctx, company)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Vouchers, voucherIssues, err = c.DayBook(ctx, company, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.RawSnapshot{}, nil, fmt.Errorf("fetching %q: %w", company, err)
	}

	snap.FetchedAt = time.Now().UTC()
	issues := append(groupIssues, voucherIssues...)
	c.logger.Info("snapshot fetched",
		log.FieldCompany, company,
		log.FieldGroups, len(snap.Groups),
		log.FieldLedgers, len(snap.Ledgers),
		log.FieldVouchers, len(snap.Vouchers),
		log.FieldIssues, len(issues),
	)
	return snap, issues, nil
}
