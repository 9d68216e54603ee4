package htmltable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ss13community/banwatch/core/errs"
	"github.com/ss13community/banwatch/domain"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

// Archiver is the payload-archival surface this adapter depends on. A nil
// Archiver disables archival entirely.
type Archiver interface {
	Archive(ctx context.Context, sourceName string, payload []byte) error
}

// expectedColumns is the fixed column count documented in the package doc:
// ckey, banned by, banned on, expires, role, reason.
const expectedColumns = 6

// Config configures a single upstream source rendered as an HTML table.
type Config struct {
	SourceName string
	ListURL    string
}

// Adapter fetches and tokenizes an HTML ban table with no stable per-row
// identifier.
type Adapter struct {
	sources  []Config
	client   *retryablehttp.Client
	archiver Archiver
}

// New builds an Adapter over the given sources. archiver may be nil, in
// which case a malformed table is classified but never archived.
func New(sources []Config, archiver Archiver) *Adapter {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3
	client.HTTPClient.Timeout = 30 * time.Second
	return &Adapter{sources: sources, client: client, archiver: archiver}
}

func (a *Adapter) Name() string { return "htmltable" }

func (a *Adapter) Sources() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.SourceName
	}
	return names
}

func (a *Adapter) SupportsBanIDs() bool { return false }

// FetchAll parses every configured source's table in full; there is no
// cheaper incremental view of an HTML table.
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

// FetchNew has no incremental view for this contract; it returns the full
// table, which is safe because the reconciler is idempotent.
func (a *Adapter) FetchNew(ctx context.Context) ([]domain.Ban, error) {
	return a.FetchAll(ctx)
}

func (a *Adapter) fetchSource(ctx context.Context, source Config) ([]domain.Ban, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, source.ListURL, nil)
	if err != nil {
		return nil, errs.SourceUnavailable(err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errs.SourceUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.SourceUnavailable(fmt.Errorf("%s: unexpected status %d", source.ListURL, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.SourceUnavailable(fmt.Errorf("%s: %w", source.ListURL, err))
	}

	rows, err := parseRows(bytes.NewReader(body))
	if err != nil {
		a.archivePayload(ctx, source.SourceName, body)
		return nil, errs.MalformedPayload(fmt.Errorf("%s: %w", source.ListURL, err))
	}

	bans := make([]domain.Ban, 0, len(rows))
	for _, row := range rows {
		ban, err := row.toDomainBan(source.SourceName)
		if err != nil {
			a.archivePayload(ctx, source.SourceName, body)
			return nil, errs.MalformedPayload(fmt.Errorf("%s: %w", source.ListURL, err))
		}
		bans = append(bans, ban)
	}
	return bans, nil
}

func (a *Adapter) archivePayload(ctx context.Context, sourceName string, payload []byte) {
	if a.archiver == nil {
		return
	}
	_ = a.archiver.Archive(ctx, sourceName, payload)
}

type tableRow struct {
	cells []string
}

// parseRows tokenizes an HTML document and extracts every non-header table
// row as a slice of trimmed cell strings.
func parseRows(r io.Reader) ([]tableRow, error) {
	tokenizer := html.NewTokenizer(r)

	var rows []tableRow
	var current *tableRow
	var cellBuf strings.Builder
	inCell := false
	headerRow := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return nil, err
			}
			return rows, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "tr":
				current = &tableRow{}
				headerRow = false
			case "td":
				inCell = true
				cellBuf.Reset()
			case "th":
				inCell = true
				headerRow = true
				cellBuf.Reset()
			}

		case html.TextToken:
			if inCell {
				cellBuf.WriteString(strings.TrimSpace(string(tokenizer.Text())))
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "td", "th":
				if current != nil {
					current.cells = append(current.cells, strings.TrimSpace(cellBuf.String()))
				}
				inCell = false
			case "tr":
				if current != nil && !headerRow && len(current.cells) > 0 {
					rows = append(rows, *current)
				}
				current = nil
			}
		}
	}
}

func (row tableRow) toDomainBan(sourceName string) (domain.Ban, error) {
	if len(row.cells) != expectedColumns {
		return domain.Ban{}, fmt.Errorf("expected %d columns, got %d", expectedColumns, len(row.cells))
	}

	ckey := row.cells[0]
	bannedBy := row.cells[1]
	bannedOnRaw := row.cells[2]
	expiresRaw := row.cells[3]
	roleRaw := row.cells[4]
	reason := row.cells[5]

	bannedOn, err := time.Parse(time.RFC3339, bannedOnRaw)
	if err != nil {
		return domain.Ban{}, fmt.Errorf("banned on %q: %w", bannedOnRaw, err)
	}

	var expires *time.Time
	if expiresRaw != "" && !strings.EqualFold(expiresRaw, "permanent") {
		t, err := time.Parse(time.RFC3339, expiresRaw)
		if err != nil {
			return domain.Ban{}, fmt.Errorf("expires %q: %w", expiresRaw, err)
		}
		utc := t.UTC()
		expires = &utc
	}

	roles := splitRoles(roleRaw)
	if len(roles) == 0 {
		return domain.Ban{}, fmt.Errorf("role column is empty")
	}

	banType := domain.BanTypeJob
	var jobBans []domain.JobBan
	if roles[0] == "Server" {
		banType = domain.BanTypeServer
	} else {
		jobBans = make([]domain.JobBan, len(roles))
		for i, job := range roles {
			jobBans[i] = domain.JobBan{Job: job}
		}
	}

	return domain.Ban{
		Source:   domain.BanSource{Name: sourceName},
		Ckey:     ckey,
		BanType:  banType,
		BannedOn: bannedOn.UTC(),
		BannedBy: bannedBy,
		Expires:  expires,
		Reason:   reason,
		JobBans:  jobBans,
	}, nil
}

func splitRoles(raw string) []string {
	parts := strings.Split(raw, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}
