package processor

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rezonia/tally-connector/internal/llm"
)

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PDFPageCount returns the number of pages in a PDF document
func PDFPageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("read PDF: %w", err)
	}
	return n, nil
}

// PDFPages returns the embedded JPEG/PNG images of a scanned PDF in page
// order. When the document embeds no usable images it is returned as one
// application/pdf part so the model can still read it.
func PDFPages(data []byte) ([]llm.Image, error) {
	pages, err := api.ExtractImagesRaw(bytes.NewReader(data), nil, pdfConfig())
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}

	var images []llm.Image
	for _, page := range pages {
		objNrs := make([]int, 0, len(page))
		for nr := range page {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)

		for _, nr := range objNrs {
			img := page[nr]
			mime := mimeForFileType(img.FileType)
			if mime == "" || img.Reader == nil {
				continue
			}
			buf, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read image on page %d: %w", img.PageNr, err)
			}
			images = append(images, llm.Image{Data: buf, MIMEType: mime})
		}
	}

	if len(images) == 0 {
		return []llm.Image{{Data: data, MIMEType: "application/pdf"}}, nil
	}
	return images, nil
}

func mimeForFileType(ft string) string {
	switch strings.ToLower(strings.TrimPrefix(ft, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return ""
	}
}
