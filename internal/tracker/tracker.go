// Package tracker records processed jobs in a Notion database. Tracking is
// best effort: any failure is logged and swallowed so a Notion outage never
// fails a pipeline run.
package tracker

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/logger"
)

// Status is the application-tracking state recorded per job.
type Status string

const (
	// StatusSkipped marks jobs that scored below the fit threshold.
	StatusSkipped Status = "Skipped"
	// StatusWrittenLetter marks jobs a cover letter was generated for.
	StatusWrittenLetter Status = "WrittenLetter"
)

// SkippedLetter is the placeholder recorded instead of a cover letter for
// below-threshold jobs.
const SkippedLetter = "N/A - Job fit score was too low."

// Entry is one tracked job outcome.
type Entry struct {
	JobTitle    string
	Company     string
	JobURL      string
	Status      Status
	FitScore    float64
	Reason      string
	CoverLetter string
}

// API is the slice of the Notion client the tracker needs.
type API interface {
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	AppendBlocks(ctx context.Context, id notionapi.BlockID, req *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error)
}

// notionAPI adapts the real client to API.
type notionAPI struct {
	client *notionapi.Client
}

func (n *notionAPI) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	return n.client.Page.Create(ctx, req)
}

func (n *notionAPI) AppendBlocks(ctx context.Context, id notionapi.BlockID, req *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error) {
	return n.client.Block.AppendChildren(ctx, id, req)
}

// Tracker writes application records to one Notion database.
type Tracker struct {
	api        API
	databaseID string
	log        *zap.Logger
}

// New creates a Tracker for the given integration token and database. It
// returns nil when either is empty, and a nil Tracker is safe to call.
func New(token, databaseID string, log *zap.Logger) *Tracker {
	if token == "" || databaseID == "" {
		return nil
	}
	return &Tracker{
		api:        &notionAPI{client: notionapi.NewClient(notionapi.Token(token))},
		databaseID: databaseID,
		log:        logger.Or(log),
	}
}

// NewWithAPI creates a Tracker over a custom API implementation.
func NewWithAPI(api API, databaseID string, log *zap.Logger) *Tracker {
	return &Tracker{api: api, databaseID: databaseID, log: logger.Or(log)}
}

// Record creates a database page for the entry and, for real letters, appends
// the letter body to the page. It returns the page id, or "" when tracking is
// disabled or any Notion call fails.
func (t *Tracker) Record(ctx context.Context, entry Entry) string {
	if t == nil {
		return ""
	}

	page, err := t.api.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(t.databaseID),
		},
		Properties: t.pageProperties(entry),
	})
	if err != nil {
		t.log.Warn("failed to create tracker page",
			zap.String("job_title", entry.JobTitle),
			zap.Error(err))
		return ""
	}
	pageID := string(page.ID)

	if entry.CoverLetter != "" && entry.CoverLetter != SkippedLetter {
		if err := t.appendLetter(ctx, pageID, entry.CoverLetter); err != nil {
			t.log.Warn("failed to append cover letter to tracker page",
				zap.String("page_id", pageID),
				zap.Error(err))
			// The page itself exists, so the id is still useful.
		}
	}

	t.log.Info("job recorded in tracker",
		zap.String("job_title", entry.JobTitle),
		zap.String("status", string(entry.Status)),
		zap.String("page_id", pageID))
	return pageID
}

func (t *Tracker) pageProperties(entry Entry) notionapi.Properties {
	return notionapi.Properties{
		"Job Title": notionapi.TitleProperty{
			Title: richText(entry.JobTitle),
		},
		"Company": notionapi.RichTextProperty{
			RichText: richText(entry.Company),
		},
		"Link": notionapi.URLProperty{
			URL: entry.JobURL,
		},
		"Status": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(entry.Status)},
		},
		"Fit Score": notionapi.NumberProperty{
			Number: entry.FitScore,
		},
		"Reason": notionapi.RichTextProperty{
			RichText: richText(entry.Reason),
		},
	}
}

// appendLetter writes the letter to the page body as a heading followed by
// one paragraph block per blank-line-separated paragraph.
func (t *Tracker) appendLetter(ctx context.Context, pageID, letter string) error {
	children := []notionapi.Block{
		&notionapi.Heading2Block{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeHeading2,
			},
			Heading2: notionapi.Heading{
				RichText: richText("Generated Cover Letter"),
			},
		},
	}

	for _, para := range strings.Split(letter, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		children = append(children, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: richText(para),
			},
		})
	}

	_, err := t.api.AppendBlocks(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
		Children: children,
	})
	return err
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: content}},
	}
}
