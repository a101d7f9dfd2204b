package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/domestiq/domestiq_api/models"
)

const statementFolder = "domestiq_income_statements"

var statementTemplate = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: Helvetica, Arial, sans-serif; margin: 48px; color: #1f2933; }
h1 { font-size: 22px; margin-bottom: 4px; }
table { border-collapse: collapse; width: 100%; margin-top: 24px; }
td { padding: 8px; border-bottom: 1px solid #e4e7eb; }
.hash { font-family: monospace; font-size: 11px; word-break: break-all; margin-top: 32px; }
</style></head><body>
<h1>DomestIQ income statement</h1>
<p>{{.WorkerName}}, {{.Period}}</p>
<table>
<tr><td>Completed bookings</td><td>{{.Count}}</td></tr>
<tr><td>Gross earnings</td><td>{{.Currency}} {{.Gross}}</td></tr>
<tr><td>Platform fees paid by clients</td><td>{{.Currency}} {{.Fees}}</td></tr>
<tr><td>Generated</td><td>{{.Generated}}</td></tr>
</table>
<p class="hash">Statement {{.ID}}<br>Verification hash {{.Hash}}</p>
</body></html>`))

// ChromeStatementRenderer prints the statement with headless Chrome and uploads it to Cloudinary.
type ChromeStatementRenderer struct {
	cld *cloudinary.Cloudinary
}

func NewChromeStatementRenderer(cloudinaryURL string) (*ChromeStatementRenderer, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &ChromeStatementRenderer{cld: cld}, nil
}

func (r *ChromeStatementRenderer) Render(ctx context.Context, st *models.IncomeStatement, workerName string) (string, error) {
	html, err := statementHTML(st, workerName)
	if err != nil {
		return "", err
	}
	pdf, err := printPDF(ctx, html)
	if err != nil {
		return "", fmt.Errorf("print pdf: %w", err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	res, err := r.cld.Upload.Upload(uploadCtx, bytes.NewReader(pdf), uploader.UploadParams{
		PublicID:     fmt.Sprintf("%s_%s", st.WorkerID, st.Period),
		Folder:       statementFolder,
		ResourceType: "raw",
	})
	if err != nil {
		return "", fmt.Errorf("upload pdf: %w", err)
	}
	return res.SecureURL, nil
}

func statementHTML(st *models.IncomeStatement, workerName string) (string, error) {
	data := struct {
		ID, WorkerName, Period, Currency, Gross, Fees, Generated, Hash string
		Count                                                         int
	}{
		ID:         st.ID.String(),
		WorkerName: workerName,
		Period:     st.PeriodStart.Format("January 2006"),
		Currency:   st.Currency,
		Gross:      st.GrossEarnings.StringFixed(2),
		Fees:       st.PlatformFees.StringFixed(2),
		Generated:  st.GeneratedAt.Format("2 January 2006"),
		Hash:       st.VerificationHash,
		Count:      st.TransactionCount,
	}
	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func printPDF(parent context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
