package processor

import (
	"errors"

	"go.uber.org/zap"

	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/tally"
)

// Conversion is the offline result of turning model text or records into vouchers
type Conversion struct {
	Records    []model.InvoiceRecord
	Documents  map[string]model.VoucherDocument
	Skipped    []error
	Unbalanced []*model.ValidationError
}

// ConvertText salvages records from raw model output and builds their vouchers.
// Nothing is written to disk.
func (p *Pipeline) ConvertText(raw string) *Conversion {
	outcome := p.parser.Parse(raw)
	conv := p.convert(outcome.Results())
	conv.Records = outcome.Records
	return conv
}

// ConvertRecords builds vouchers for already structured records
func (p *Pipeline) ConvertRecords(records []model.InvoiceRecord) *Conversion {
	results := make([]model.RecordResult, len(records))
	for i := range records {
		results[i] = model.RecordResult{Record: &records[i]}
	}
	conv := p.convert(results)
	conv.Records = records
	return conv
}

func (p *Pipeline) convert(results []model.RecordResult) *Conversion {
	conv := &Conversion{}
	for _, r := range results {
		if r.IsError() {
			err := r.Err
			if err == nil {
				err = errors.New("empty record")
			}
			conv.Skipped = append(conv.Skipped, err)
			continue
		}
		if verr := tally.CheckBalance(r.Record); verr != nil {
			conv.Unbalanced = append(conv.Unbalanced, verr)
		}
	}
	conv.Documents = p.builder.BuildAll(results)

	p.logger.Debug("converted records",
		zap.Int("documents", len(conv.Documents)),
		zap.Int("skipped", len(conv.Skipped)),
	)
	return conv
}

// Save writes the conversion's documents under the pipeline's xml directory
func (p *Pipeline) Save(conv *Conversion) ([]string, error) {
	return p.SaveDocuments(conv.Documents)
}
