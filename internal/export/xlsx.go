// Package export writes enriched records to spreadsheet files for manual
// review, keeping the same column order the JSON output uses.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/hugo98-py/KMZtoJSON/internal/model"
)

// WriteXLSX writes records to an XLSX workbook at path. layerFields holds
// the configured layer output keys, in order, so the header matches even
// when records is empty.
func WriteXLSX(path string, layerFields []string, records []model.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("records")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{"Name", "lon", "lat", "xx", "yy", "UTM_zone"} {
		header.AddCell().SetString(name)
	}
	for _, name := range layerFields {
		header.AddCell().SetString(name)
	}
	header.AddCell().SetString("responsible")

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetFloat(r.Lon)
		row.AddCell().SetFloat(r.Lat)
		row.AddCell().SetFloat(r.Easting)
		row.AddCell().SetFloat(r.Northing)
		row.AddCell().SetString(r.Zone)
		for _, key := range layerFields {
			value, _ := r.Layer(key)
			row.AddCell().SetString(value)
		}
		row.AddCell().SetString(r.Responsible)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
