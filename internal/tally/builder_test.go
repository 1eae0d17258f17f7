package tally_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/normalize"
	"github.com/rezonia/tally-connector/internal/tally"
)

func fixedDates() *normalize.DateNormalizer {
	return normalize.NewDateNormalizer(normalize.WithClock(func() time.Time {
		return time.Date(2026, 1, 18, 10, 0, 0, 0, time.UTC)
	}))
}

func sampleRecord() *model.InvoiceRecord {
	return &model.InvoiceRecord{
		InvoiceNumber: "INV-001",
		InvoiceDate:   "15/01/2026",
		CustomerName:  "Sharma Electronics",
		TotalAmount:   money.FromInt(1000),
		Currency:      "INR",
		IGSTAmount:    money.FromInt(100),
		Items: []model.LineItem{
			{ItemName: "Widget", Quantity: money.FromInt(9), UOM: "Nos", Rate: money.FromInt(100), Amount: money.FromInt(900), HSNCode: "8471"},
		},
	}
}

func parseDoc(t *testing.T, doc model.VoucherDocument) *etree.Element {
	t.Helper()
	d := etree.NewDocument()
	require.NoError(t, d.ReadFromBytes(doc.XML))
	v := d.FindElement("/ENVELOPE/BODY/IMPORTDATA/REQUESTDATA/TALLYMESSAGE/VOUCHER")
	require.NotNil(t, v, "voucher element missing:\n%s", doc.String())
	return v
}

func TestBuild_Structure(t *testing.T) {
	b := tally.NewBuilder(tally.WithDateNormalizer(fixedDates()))
	doc := b.Build(sampleRecord())

	assert.Equal(t, "INV-001", doc.InvoiceNumber)

	d := etree.NewDocument()
	require.NoError(t, d.ReadFromBytes(doc.XML))
	assert.Equal(t, "Import Data", d.FindElement("/ENVELOPE/HEADER/TALLYREQUEST").Text())
	assert.Equal(t, "Vouchers", d.FindElement("/ENVELOPE/BODY/IMPORTDATA/REQUESTDESC/REPORTNAME").Text())

	v := parseDoc(t, doc)
	assert.Equal(t, "Sales", v.SelectAttrValue("VCHTYPE", ""))
	assert.Equal(t, "Create", v.SelectAttrValue("ACTION", ""))

	var tags []string
	for _, child := range v.ChildElements()[:7] {
		tags = append(tags, child.Tag)
	}
	assert.Equal(t, []string{
		"DATE", "VOUCHERDATE", "EFFECTIVEDATE", "VOUCHERTYPENAME",
		"VOUCHERNUMBER", "PARTYLEDGERNAME", "NARRATION",
	}, tags)

	assert.Equal(t, "20260115", v.SelectElement("DATE").Text())
	assert.Equal(t, "15 01 2026", v.SelectElement("VOUCHERDATE").Text())
	assert.Equal(t, "15 01 2026", v.SelectElement("EFFECTIVEDATE").Text())
	assert.Equal(t, "Sales", v.SelectElement("VOUCHERTYPENAME").Text())
	assert.Equal(t, "INV-001", v.SelectElement("VOUCHERNUMBER").Text())
	assert.Equal(t, "Sharma Electronics", v.SelectElement("PARTYLEDGERNAME").Text())
	assert.Equal(t, "Imported via Tally Connector - Invoice INV-001, Total 1000.00 INR", v.SelectElement("NARRATION").Text())
}

func TestBuild_NoDeclarationNoBlankLines(t *testing.T) {
	doc := tally.NewBuilder(tally.WithDateNormalizer(fixedDates())).Build(sampleRecord())
	text := doc.String()

	assert.True(t, strings.HasPrefix(text, "<ENVELOPE>"))
	assert.NotContains(t, text, "<?xml")
	for i, line := range strings.Split(text, "\n") {
		assert.NotEmpty(t, strings.TrimSpace(line), "blank line %d", i)
	}
	assert.Contains(t, text, "\n  <HEADER>")
}

func TestBuild_LedgerEntriesBalance(t *testing.T) {
	v := parseDoc(t, tally.Build(sampleRecord()))

	entries := v.SelectElements("ALLLEDGERENTRIES.LIST")
	require.Len(t, entries, 3)

	want := []struct {
		name, positive, amount string
	}{
		{"Sharma Electronics", "Yes", "-1000.00"},
		{"Sales", "No", "900.00"},
		{"IGST", "No", "100.00"},
	}

	sum := money.Zero
	for i, e := range entries {
		assert.Equal(t, want[i].name, e.SelectElement("LEDGERNAME").Text())
		assert.Equal(t, want[i].positive, e.SelectElement("ISDEEMEDPOSITIVE").Text())
		assert.Equal(t, want[i].amount, e.SelectElement("AMOUNT").Text())
		sum = sum.Add(money.MustFromString(e.SelectElement("AMOUNT").Text()))
	}
	assert.True(t, sum.IsZero(), "ledger entries sum to %s", sum)
}

func TestBuild_SplitGST(t *testing.T) {
	rec := &model.InvoiceRecord{
		InvoiceNumber: "INV-002",
		TotalAmount:   money.FromInt(1180),
		CGSTAmount:    money.FromInt(90),
		SGSTAmount:    money.FromInt(90),
		Items:         []model.LineItem{{ItemName: "Service", Quantity: money.FromInt(1), Rate: money.FromInt(1000), Amount: money.FromInt(1000)}},
	}

	v := parseDoc(t, tally.Build(rec))
	var names []string
	for _, e := range v.SelectElements("ALLLEDGERENTRIES.LIST") {
		names = append(names, e.SelectElement("LEDGERNAME").Text())
	}
	assert.Equal(t, []string{model.DefaultCustomerName, "Sales", "CGST", "SGST"}, names)
	assert.Nil(t, tally.CheckBalance(rec))
}

func TestBuild_InventoryEntries(t *testing.T) {
	rec := sampleRecord()
	rec.Items = append(rec.Items, model.LineItem{
		ItemName: "Cable",
		Quantity: money.MustFromString("2.50"),
		Rate:     money.FromInt(40),
		Amount:   money.FromInt(100),
	})

	v := parseDoc(t, tally.Build(rec))
	items := v.SelectElements("ALLINVENTORYENTRIES.LIST")
	require.Len(t, items, 2)

	assert.Equal(t, "Widget", items[0].SelectElement("STOCKITEMNAME").Text())
	assert.Equal(t, "9 Nos", items[0].SelectElement("ACTUALQTY").Text())
	assert.Equal(t, "9 Nos", items[0].SelectElement("BILLEDQTY").Text())
	assert.Equal(t, "100.00/Nos", items[0].SelectElement("RATE").Text())
	assert.Equal(t, "900.00", items[0].SelectElement("AMOUNT").Text())
	assert.Nil(t, items[0].SelectElement("HSNCODE"))

	assert.Equal(t, "2.5", items[1].SelectElement("ACTUALQTY").Text())
	assert.Equal(t, "40.00", items[1].SelectElement("RATE").Text())
}

func TestBuild_Defaults(t *testing.T) {
	v := parseDoc(t, tally.NewBuilder(tally.WithDateNormalizer(fixedDates())).Build(&model.InvoiceRecord{}))

	assert.Equal(t, model.DefaultInvoiceNumber, v.SelectElement("VOUCHERNUMBER").Text())
	assert.Equal(t, model.DefaultCustomerName, v.SelectElement("PARTYLEDGERNAME").Text())
	assert.Equal(t, "20260118", v.SelectElement("DATE").Text())
	assert.Equal(t, "18 01 2026", v.SelectElement("VOUCHERDATE").Text())
	assert.Empty(t, v.SelectElements("ALLINVENTORYENTRIES.LIST"))

	entries := v.SelectElements("ALLLEDGERENTRIES.LIST")
	require.Len(t, entries, 2)
	assert.Equal(t, "0.00", entries[0].SelectElement("AMOUNT").Text())
}

func TestBuild_NilRecordUsesDefaults(t *testing.T) {
	b := tally.NewBuilder(tally.WithDateNormalizer(fixedDates()))

	var doc model.VoucherDocument
	require.NotPanics(t, func() { doc = b.Build(nil) })
	assert.Equal(t, model.DefaultInvoiceNumber, doc.InvoiceNumber)
	assert.Equal(t, b.Build(&model.InvoiceRecord{}).String(), doc.String())
}

func TestBuild_EscapesText(t *testing.T) {
	rec := sampleRecord()
	rec.CustomerName = "Tom & Jerry's <Traders>"

	doc := tally.Build(rec)
	assert.Contains(t, doc.String(), "Tom &amp; Jerry")
	assert.Contains(t, doc.String(), "&lt;Traders")
	assert.Equal(t, rec.CustomerName, parseDoc(t, doc).SelectElement("PARTYLEDGERNAME").Text())
}

func TestBuild_UnbalancedStillEmitted(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := tally.NewBuilder(tally.WithLogger(zap.New(core)), tally.WithDateNormalizer(fixedDates()))

	rec := sampleRecord()
	rec.TotalAmount = money.FromInt(1500)

	doc := b.Build(rec)
	assert.NotEmpty(t, doc.XML)
	assert.Equal(t, 1, logs.FilterMessage("voucher is not balanced").Len())
}

func TestBuild_Deterministic(t *testing.T) {
	b := tally.NewBuilder(tally.WithDateNormalizer(fixedDates()))
	assert.Equal(t, b.Build(sampleRecord()).String(), b.Build(sampleRecord()).String())
}

func TestBuildAll_SkipsErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := tally.NewBuilder(tally.WithLogger(zap.New(core)))

	results := []model.RecordResult{
		{Err: model.NewParseError(model.ReasonNoStructure, "garbage", nil)},
		{Record: sampleRecord()},
	}

	docs := b.BuildAll(results)
	require.Len(t, docs, 1)
	assert.Contains(t, docs, "INV-001")
	assert.Equal(t, 1, logs.FilterMessage("skipping record with error").Len())
}

func TestBuildAll_LastWriteWins(t *testing.T) {
	first := sampleRecord()
	second := sampleRecord()
	second.CustomerName = "Later Customer"

	docs := tally.BuildAll([]model.RecordResult{{Record: first}, {Record: second}})
	require.Len(t, docs, 1)
	assert.Contains(t, docs["INV-001"].String(), "Later Customer")
}

func TestBuildAll_ManyRecords(t *testing.T) {
	var results []model.RecordResult
	for i := 0; i < 50; i++ {
		rec := sampleRecord()
		rec.InvoiceNumber = fmt.Sprintf("INV-%03d", i)
		results = append(results, model.RecordResult{Record: rec})
	}

	docs := tally.NewBuilder(tally.WithWorkers(8)).BuildAll(results)
	require.Len(t, docs, 50)
	for i := 0; i < 50; i++ {
		num := fmt.Sprintf("INV-%03d", i)
		assert.Equal(t, num, docs[num].InvoiceNumber)
	}
}

func TestBuildAll_Empty(t *testing.T) {
	assert.Empty(t, tally.BuildAll(nil))
}

func TestQuantityAndRate(t *testing.T) {
	tests := []struct {
		name     string
		item     model.LineItem
		wantQty  string
		wantRate string
	}{
		{"with unit", model.LineItem{Quantity: money.FromInt(3), UOM: "Nos", Rate: money.MustFromString("99")}, "3 Nos", "99.00/Nos"},
		{"without unit", model.LineItem{Quantity: money.FromInt(3), Rate: money.MustFromString("99")}, "3", "99.00"},
		{"padded unit", model.LineItem{Quantity: money.MustFromString("1.5"), UOM: " kg ", Rate: money.FromInt(10)}, "1.5 kg", "10.00/kg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantQty, tally.Quantity(tt.item))
			assert.Equal(t, tt.wantRate, tally.Rate(tt.item))
		})
	}
}

func BenchmarkBuild(b *testing.B) {
	builder := tally.NewBuilder(tally.WithDateNormalizer(fixedDates()))
	rec := sampleRecord()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.Build(rec)
	}
}
