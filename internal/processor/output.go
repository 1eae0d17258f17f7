package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rezonia/tally-connector/internal/model"
)

// SaveRecords writes records as indented JSON to <out>/json/<stem>_extracted.json
func (p *Pipeline) SaveRecords(stem string, records []model.InvoiceRecord) (string, error) {
	if err := os.MkdirAll(p.JSONDir(), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}

	path := filepath.Join(p.JSONDir(), SafeFileName(stem)+"_extracted.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// SaveDocuments writes each document to <out>/xml/voucher_<invoice_number>.xml
// and returns the paths in invoice number order. Distinct invoice numbers that
// sanitise to the same file name are written with a _2, _3, ... suffix.
func (p *Pipeline) SaveDocuments(docs map[string]model.VoucherDocument) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(p.XMLDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paths := make([]string, 0, len(keys))
	used := make(map[string]string, len(keys))
	for _, k := range keys {
		name := VoucherFileName(k)
		if prev, taken := used[name]; taken {
			unique := uniqueFileName(name, used)
			p.logger.Warn("voucher file name collision, writing under a suffixed name",
				zap.String("invoice_number", k),
				zap.String("colliding_invoice_number", prev),
				zap.String("file", unique),
			)
			name = unique
		}
		used[name] = k

		path := filepath.Join(p.XMLDir(), name)
		if err := os.WriteFile(path, docs[k].XML, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// uniqueFileName appends _2, _3, ... to name until it is not in used
func uniqueFileName(name string, used map[string]string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// VoucherFileName returns the file name used for an invoice's voucher
func VoucherFileName(invoiceNumber string) string {
	return "voucher_" + SafeFileName(invoiceNumber) + ".xml"
}
