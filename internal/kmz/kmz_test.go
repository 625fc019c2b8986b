package kmz

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildKMZ assembles an in-memory KMZ archive from entry name → content.
func buildKMZ(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func kmlDoc(placemarks string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>` + placemarks + `</Document></kml>`
}

const santiagoPlacemark = `<Placemark><name>Punto 1</name><Point><coordinates>-70.65,-33.45,0</coordinates></Point></Placemark>`

func TestExtract_SingleDocument(t *testing.T) {
	archive := buildKMZ(t, map[string]string{
		"doc.kml": kmlDoc(santiagoPlacemark +
			`<Placemark><name>Punto 2</name><Point><coordinates>-70.60,-33.40</coordinates></Point></Placemark>`),
	})

	points, err := Extract(context.Background(), archive)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "Punto 1", points[0].Name)
	assert.InDelta(t, -70.65, points[0].Lon, 1e-9)
	assert.InDelta(t, -33.45, points[0].Lat, 1e-9)
	assert.Equal(t, "Punto 2", points[1].Name)
}

func TestExtract_MultipleDocumentsInDiscoveryOrder(t *testing.T) {
	archive := buildKMZ(t, map[string]string{
		"a.kml": kmlDoc(`<Placemark><name>A</name><Point><coordinates>1,1</coordinates></Point></Placemark>`),
		"b.kml": kmlDoc(`<Placemark><name>B1</name><Point><coordinates>2,2</coordinates></Point></Placemark>` +
			`<Placemark><name>B2</name><Point><coordinates>3,3</coordinates></Point></Placemark>`),
	})

	points, err := Extract(context.Background(), archive)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "A", points[0].Name)
	assert.Equal(t, "B1", points[1].Name)
	assert.Equal(t, "B2", points[2].Name)
}

func TestExtract_NestedFolderAndUppercaseExtension(t *testing.T) {
	archive := buildKMZ(t, map[string]string{
		"files/DOC.KML": kmlDoc(santiagoPlacemark),
	})

	points, err := Extract(context.Background(), archive)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestExtract_NoKML(t *testing.T) {
	archive := buildKMZ(t, map[string]string{
		"readme.txt": "nothing here",
	})

	_, err := Extract(context.Background(), archive)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoKML))
	assert.True(t, IsBadInput(err))
}

func TestExtract_NotAZip(t *testing.T) {
	_, err := Extract(context.Background(), []byte("plain text, not an archive"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrParse))
	assert.True(t, IsBadInput(err))
}

func TestExtract_PlacemarkWithoutPointFails(t *testing.T) {
	archive := buildKMZ(t, map[string]string{
		"doc.kml": kmlDoc(`<Placemark><name>Ruta</name><LineString><coordinates>1,1 2,2</coordinates></LineString></Placemark>`),
	})

	_, err := Extract(context.Background(), archive)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "no point geometry")
}

func TestExtract_MalformedCoordinatesFail(t *testing.T) {
	archive := buildKMZ(t, map[string]string{
		"doc.kml": kmlDoc(`<Placemark><name>Malo</name><Point><coordinates>not,numbers</coordinates></Point></Placemark>`),
	})

	_, err := Extract(context.Background(), archive)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrParse))
}

func TestParsePlacemarks_NestedFolders(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<kml><Document><Folder><Folder>` + santiagoPlacemark + `</Folder></Folder></Document></kml>`

	points, err := ParsePlacemarks(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "Punto 1", points[0].Name)
}

func TestParsePlacemarks_MultipleTuplesRejected(t *testing.T) {
	doc := kmlDoc(`<Placemark><name>X</name><Point><coordinates>1,1 2,2</coordinates></Point></Placemark>`)

	_, err := ParsePlacemarks(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrParse))
}

func TestParsePlacemarks_TruncatedDocument(t *testing.T) {
	doc := `<?xml version="1.0"?><kml><Document><Placemark><name>X`

	_, err := ParsePlacemarks(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrParse))
}

func TestParsePlacemarks_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParsePlacemarks(ctx, strings.NewReader(kmlDoc(santiagoPlacemark)))
	require.Error(t, err)
	assert.True(t, eris.Is(err, context.Canceled))
}
