package ocr

import (
	"bytes"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfPageImages lifts the embedded raster images out of each PDF page.
// Scanned documents carry one full-page image per page, which is exactly
// what the recognition engines want. Everything stays in memory; no temp
// files to clean up on error paths.
func pdfPageImages(data []byte) (int, []PageImage, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	rs := bytes.NewReader(data)
	pageCount, err := api.PageCount(rs, conf)
	if err != nil {
		return 0, nil, err
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, nil, err
	}

	raw, err := api.ExtractImagesRaw(rs, nil, conf)
	if err != nil {
		return 0, nil, err
	}

	var images []PageImage
	for _, pageImages := range raw {
		for _, img := range pageImages {
			buf, err := io.ReadAll(img)
			if err != nil {
				continue
			}
			images = append(images, PageImage{Page: img.PageNr, Data: buf})
		}
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Page < images[j].Page })
	return pageCount, images, nil
}
