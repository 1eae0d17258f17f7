package tally

import (
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/normalize"
)

const (
	voucherType   = "Sales"
	voucherAction = "Create"
	requestType   = "Import Data"
	reportName    = "Vouchers"
	narrationHead = "Imported via Tally Connector - Invoice "
)

// Builder renders invoice records as Tally voucher import documents.
// A Builder holds no per-call state and may be shared between goroutines.
type Builder struct {
	dates   *normalize.DateNormalizer
	logger  *zap.Logger
	workers int
}

// Option configures the builder
type Option func(*Builder)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDateNormalizer replaces the date normalizer, mainly to pin the clock in tests
func WithDateNormalizer(dates *normalize.DateNormalizer) Option {
	return func(b *Builder) {
		if dates != nil {
			b.dates = dates
		}
	}
}

// WithWorkers bounds how many records BuildAll renders at once
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// NewBuilder creates a voucher builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:  zap.NewNop(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.dates == nil {
		b.dates = normalize.NewDateNormalizer(normalize.WithDateLogger(b.logger))
	}
	return b
}

// Build renders one record. It never fails; missing fields fall back to
// defaults and a nil record renders as an empty one.
func (b *Builder) Build(rec *model.InvoiceRecord) model.VoucherDocument {
	if rec == nil {
		rec = &model.InvoiceRecord{}
	}
	if err := CheckBalance(rec); err != nil {
		b.logger.Warn("voucher is not balanced",
			zap.String("invoice_number", rec.VoucherNumber()),
			zap.Error(err),
		)
	}

	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true

	envelope := doc.CreateElement("ENVELOPE")
	envelope.CreateElement("HEADER").CreateElement("TALLYREQUEST").SetText(requestType)

	importData := envelope.CreateElement("BODY").CreateElement("IMPORTDATA")
	importData.CreateElement("REQUESTDESC").CreateElement("REPORTNAME").SetText(reportName)

	msg := importData.CreateElement("REQUESTDATA").CreateElement("TALLYMESSAGE")
	b.writeVoucher(msg.CreateElement("VOUCHER"), rec)

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		b.logger.Error("render voucher", zap.String("invoice_number", rec.VoucherNumber()), zap.Error(err))
	}

	return model.VoucherDocument{
		InvoiceNumber: rec.VoucherNumber(),
		XML:           []byte(compact(out)),
	}
}

func (b *Builder) writeVoucher(v *etree.Element, rec *model.InvoiceRecord) {
	v.CreateAttr("VCHTYPE", voucherType)
	v.CreateAttr("ACTION", voucherAction)

	date := b.dates.Normalize(rec.InvoiceDate)
	v.CreateElement("DATE").SetText(date.Numeric)
	v.CreateElement("VOUCHERDATE").SetText(date.Display)
	v.CreateElement("EFFECTIVEDATE").SetText(date.Display)
	v.CreateElement("VOUCHERTYPENAME").SetText(voucherType)
	v.CreateElement("VOUCHERNUMBER").SetText(rec.VoucherNumber())
	v.CreateElement("PARTYLEDGERNAME").SetText(rec.PartyName())
	v.CreateElement("NARRATION").SetText(Narration(rec))

	for _, e := range LedgerEntries(rec) {
		le := v.CreateElement("ALLLEDGERENTRIES.LIST")
		le.CreateElement("LEDGERNAME").SetText(e.Name)
		le.CreateElement("ISDEEMEDPOSITIVE").SetText(yesNo(e.DeemedPositive))
		le.CreateElement("AMOUNT").SetText(money.Format(e.Amount))
	}

	for _, item := range rec.Items {
		ie := v.CreateElement("ALLINVENTORYENTRIES.LIST")
		qty := Quantity(item)
		ie.CreateElement("STOCKITEMNAME").SetText(item.ItemName)
		ie.CreateElement("ACTUALQTY").SetText(qty)
		ie.CreateElement("BILLEDQTY").SetText(qty)
		ie.CreateElement("RATE").SetText(Rate(item))
		ie.CreateElement("AMOUNT").SetText(money.Format(item.Amount))
	}
}

// BuildAll renders every successful result, keyed by invoice number.
// Error-tagged results are logged and skipped. Records are rendered
// concurrently but assembled in input order, so a later duplicate
// invoice number replaces an earlier one.
func (b *Builder) BuildAll(results []model.RecordResult) map[string]model.VoucherDocument {
	docs := make([]*model.VoucherDocument, len(results))

	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, r := range results {
		if r.IsError() {
			b.logger.Warn("skipping record with error", zap.Int("index", i), zap.Error(r.Err))
			continue
		}
		g.Go(func() error {
			doc := b.Build(r.Record)
			docs[i] = &doc
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]model.VoucherDocument, len(results))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if _, dup := out[doc.InvoiceNumber]; dup {
			b.logger.Warn("duplicate invoice number, keeping the later record",
				zap.String("invoice_number", doc.InvoiceNumber))
		}
		out[doc.InvoiceNumber] = *doc
	}
	return out
}

// Narration summarises the invoice number and total for the voucher
func Narration(rec *model.InvoiceRecord) string {
	s := narrationHead + rec.VoucherNumber() + ", Total " + money.Format(rec.TotalAmount)
	if rec.Currency != "" {
		s += " " + rec.Currency
	}
	return s
}

// Quantity formats a line quantity as "<qty> <uom>"
func Quantity(item model.LineItem) string {
	return strings.TrimSpace(money.Trim(item.Quantity) + " " + strings.TrimSpace(item.UOM))
}

// Rate formats a line rate as "<rate>/<uom>", or the bare rate without a unit
func Rate(item model.LineItem) string {
	rate := money.Format(item.Rate)
	if uom := strings.TrimSpace(item.UOM); uom != "" {
		return rate + "/" + uom
	}
	return rate
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// compact drops the XML declaration and blank lines
func compact(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "<?xml") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, "\r"))
	}
	return strings.Join(kept, "\n")
}

// Build renders one record with a default builder
func Build(rec *model.InvoiceRecord) model.VoucherDocument {
	return NewBuilder().Build(rec)
}

// BuildAll renders a batch with a default builder
func BuildAll(results []model.RecordResult) map[string]model.VoucherDocument {
	return NewBuilder().BuildAll(results)
}
