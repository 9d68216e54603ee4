package jsonpaged

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ss13community/banwatch/core/errs"
	"github.com/ss13community/banwatch/domain"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
)

// Archiver is the payload-archival surface this adapter depends on. A nil
// Archiver disables archival entirely.
type Archiver interface {
	Archive(ctx context.Context, sourceName string, payload []byte) error
}

// maxConcurrentPages bounds the per-adapter fan-out recommended for
// paginated sources.
const maxConcurrentPages = 6

// Config configures a single upstream source that speaks this contract.
type Config struct {
	// SourceName is the BanSource name this fetch's bans are attributed to.
	SourceName string
	// BaseURL is the upstream root, e.g. "https://example-server.tld".
	BaseURL string
	// PerPage is the page size to request.
	PerPage int
}

type banRecord struct {
	ID            int64    `json:"id"`
	BanApplyTime  string   `json:"banApplyTime"`
	BanExpireTime *string  `json:"banExpireTime"`
	AdminCkey     string   `json:"adminCkey"`
	BannedCkey    string   `json:"bannedCkey"`
	Role          []string `json:"role"`
	Reason        string   `json:"reason"`
}

type pageEnvelope struct {
	Value struct {
		Bans     []banRecord `json:"bans"`
		LastPage int         `json:"lastPage"`
	} `json:"value"`
}

// Adapter fetches bans from one or more sources that expose the paginated
// JSON contract.
type Adapter struct {
	sources  []Config
	client   *retryablehttp.Client
	archiver Archiver
}

// New builds an Adapter over the given sources. All sources share one
// underlying HTTP client and retry policy. archiver may be nil, in which
// case a malformed payload is classified but never archived.
func New(sources []Config, archiver Archiver) *Adapter {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3
	client.HTTPClient.Timeout = 30 * time.Second
	return &Adapter{sources: sources, client: client, archiver: archiver}
}

func (a *Adapter) Name() string { return "jsonpaged" }

func (a *Adapter) Sources() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.SourceName
	}
	return names
}

func (a *Adapter) SupportsBanIDs() bool { return true }

// FetchAll pages through every configured source in full.
func (a *Adapter) FetchAll(ctx context.Context) ([]domain.Ban, error) {
	var all []domain.Ban
	for _, source := range a.sources {
		bans, err := a.fetchSource(ctx, source)
		if err != nil {
			return nil, err
		}
		all = append(all, bans...)
	}
	return all, nil
}

// FetchNew has no incremental cutoff in this contract, so it overshoots by
// returning the full set; the reconciler is idempotent on unchanged input.
func (a *Adapter) FetchNew(ctx context.Context) ([]domain.Ban, error) {
	return a.FetchAll(ctx)
}

func (a *Adapter) fetchSource(ctx context.Context, source Config) ([]domain.Ban, error) {
	first, err := a.fetchPage(ctx, source, 0)
	if err != nil {
		return nil, err
	}

	bans, err := toDomainBans(source.SourceName, first.Value.Bans)
	if err != nil {
		return nil, err
	}

	if first.Value.LastPage <= 0 {
		return bans, nil
	}

	pageResults := make([][]domain.Ban, first.Value.LastPage)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentPages)

	for page := 1; page <= first.Value.LastPage; page++ {
		page := page
		group.Go(func() error {
			envelope, err := a.fetchPage(groupCtx, source, page)
			if err != nil {
				return err
			}
			pageBans, err := toDomainBans(source.SourceName, envelope.Value.Bans)
			if err != nil {
				return err
			}
			pageResults[page-1] = pageBans
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, page := range pageResults {
		bans = append(bans, page...)
	}
	return bans, nil
}

func (a *Adapter) fetchPage(ctx context.Context, source Config, page int) (pageEnvelope, error) {
	url := fmt.Sprintf("%s/bans/%d/%d", source.BaseURL, source.PerPage, page)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pageEnvelope{}, errs.SourceUnavailable(err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return pageEnvelope{}, errs.SourceUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pageEnvelope{}, errs.SourceUnavailable(fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pageEnvelope{}, errs.SourceUnavailable(fmt.Errorf("%s: %w", url, err))
	}

	var envelope pageEnvelope
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&envelope); err != nil {
		a.archivePayload(ctx, source.SourceName, body)
		return pageEnvelope{}, errs.MalformedPayload(fmt.Errorf("%s: %w", url, err))
	}
	return envelope, nil
}

func (a *Adapter) archivePayload(ctx context.Context, sourceName string, payload []byte) {
	if a.archiver == nil {
		return
	}
	_ = a.archiver.Archive(ctx, sourceName, payload)
}

func toDomainBans(sourceName string, records []banRecord) ([]domain.Ban, error) {
	bans := make([]domain.Ban, 0, len(records))
	for _, rec := range records {
		ban, err := toDomainBan(sourceName, rec)
		if err != nil {
			return nil, err
		}
		bans = append(bans, ban)
	}
	return bans, nil
}

func toDomainBan(sourceName string, rec banRecord) (domain.Ban, error) {
	bannedOn, err := time.Parse(time.RFC3339, rec.BanApplyTime)
	if err != nil {
		return domain.Ban{}, errs.MalformedPayload(fmt.Errorf("ban %d: banApplyTime %q: %w", rec.ID, rec.BanApplyTime, err))
	}

	var expires *time.Time
	if rec.BanExpireTime != nil && *rec.BanExpireTime != "" {
		t, err := time.Parse(time.RFC3339, *rec.BanExpireTime)
		if err != nil {
			return domain.Ban{}, errs.MalformedPayload(fmt.Errorf("ban %d: banExpireTime %q: %w", rec.ID, *rec.BanExpireTime, err))
		}
		expiresUTC := t.UTC()
		expires = &expiresUTC
	}

	if len(rec.Role) == 0 {
		return domain.Ban{}, errs.MalformedPayload(fmt.Errorf("ban %d: role list is empty", rec.ID))
	}

	banType := domain.BanTypeJob
	var jobBans []domain.JobBan
	if rec.Role[0] == "Server" {
		banType = domain.BanTypeServer
	} else {
		jobBans = make([]domain.JobBan, len(rec.Role))
		for i, job := range rec.Role {
			jobBans[i] = domain.JobBan{Job: job}
		}
	}

	banID := rec.ID
	return domain.Ban{
		Source:      domain.BanSource{Name: sourceName},
		SourceBanID: &banID,
		Ckey:        rec.BannedCkey,
		BanType:     banType,
		BannedOn:    bannedOn.UTC(),
		BannedBy:    rec.AdminCkey,
		Expires:     expires,
		Reason:      rec.Reason,
		JobBans:     jobBans,
	}, nil
}
